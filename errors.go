package billing

import (
	"errors"
	"fmt"

	"github.com/nellaimart/billing/payment"
)

// Sentinel errors for common failure scenarios. Every failure leaves the
// prior consistent state intact; callers may correct the input and retry.
var (
	// General errors
	ErrNotFound      = errors.New("billing: not found")
	ErrAlreadyExists = errors.New("billing: already exists")
	ErrInvalidInput  = errors.New("billing: invalid input")

	// Customer errors
	ErrCustomerNotFound = errors.New("billing: customer not found")
	ErrEmailExists      = errors.New("billing: email already registered")
	ErrInvalidEmail     = errors.New("billing: invalid email address")
	ErrInvalidPhone     = errors.New("billing: invalid phone number")

	// Catalog errors
	ErrProductNotFound   = errors.New("billing: product not found")
	ErrProductExists     = errors.New("billing: product name already in catalog")
	ErrInvalidPrice      = errors.New("billing: invalid price")
	ErrInvalidRate       = errors.New("billing: rate must be between zero and price")
	ErrInvalidStock      = errors.New("billing: stock must not be negative")
	ErrInsufficientStock = errors.New("billing: insufficient stock")
	ErrCurrencyMismatch  = errors.New("billing: currency mismatch")

	// Bill errors
	ErrBillNotFound    = errors.New("billing: bill not found")
	ErrBillNotOpen     = errors.New("billing: bill is not open")
	ErrItemNotFound    = errors.New("billing: bill item not found")
	ErrInvalidQuantity = errors.New("billing: quantity must be at least one")

	// Payment errors
	ErrAuthorizationDeclined = payment.ErrDeclined
	ErrReceiptNotFound       = errors.New("billing: receipt not found")

	// Feedback errors
	ErrInvalidRating     = errors.New("billing: rating must be between 1 and 5")
	ErrNoSettledPurchase = errors.New("billing: feedback requires a paid bill")

	// Store errors
	ErrStoreNotReady     = errors.New("billing: store not ready")
	ErrStoreClosed       = errors.New("billing: store is closed")
	ErrTransactionFailed = errors.New("billing: transaction failed")
	ErrMigrationFailed   = errors.New("billing: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("billing: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "billing: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("billing: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrReceiptNotFound)
}

// IsConflict returns true if the error is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrProductExists)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrCurrencyMismatch)
}

// IsInsufficientStock returns true if stock could not cover a request.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsInvalidState returns true if the operation hit a lifecycle violation.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrBillNotOpen) ||
		errors.Is(err, ErrNoSettledPurchase)
}

// IsDeclined returns true if a payment authorization was declined.
func IsDeclined(err error) bool {
	return errors.Is(err, payment.ErrDeclined)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
