// Package payment defines tender methods and the dummy authorization flow.
//
// A payment walks AwaitingMethod → Authorizing → Settled or Failed.
// Failure is recoverable: the bill stays open and a fresh attempt may use
// any method.
package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/types"
)

// ErrDeclined is the root cause of every authorization failure.
var ErrDeclined = errors.New("payment: authorization declined")

// Status tracks a payment attempt through its lifecycle.
type Status string

const (
	StatusAwaitingMethod Status = "awaiting_method"
	StatusAuthorizing    Status = "authorizing"
	StatusSettled        Status = "settled"
	StatusFailed         Status = "failed"
)

// Kind names a tender method.
type Kind string

const (
	KindCash Kind = "cash"
	KindCard Kind = "credit_card"
	KindUPI  Kind = "upi"
)

// Method is a tender presented against a bill total. Authorize performs
// the (dummy) authorization and returns the tender details on success.
// Every failure wraps ErrDeclined and leaves no side effects.
type Method interface {
	Kind() Kind
	Authorize(total types.Money) (*Authorization, error)
}

// Authorization is the successful outcome of Method.Authorize.
type Authorization struct {
	Reference string      // gateway or tender reference
	Tendered  types.Money // cash only
	Change    types.Money // cash only
}

// Receipt records a settled payment.
type Receipt struct {
	ID         id.PaymentID  `json:"id"`
	BillID     id.BillID     `json:"bill_id"`
	CustomerID id.CustomerID `json:"customer_id"`
	Method     Kind          `json:"method"`
	Status     Status        `json:"status"`
	Total      types.Money   `json:"total"`
	Tendered   types.Money   `json:"tendered,omitempty"`
	Change     types.Money   `json:"change,omitempty"`
	Reference  string        `json:"reference,omitempty"`
	SettledAt  time.Time     `json:"settled_at"`
}

// ──────────────────────────────────────────────────
// Cash
// ──────────────────────────────────────────────────

// Cash settles a bill with physical tender. Declined when the tendered
// amount does not cover the total; change is returned on the receipt.
type Cash struct {
	Tendered types.Money
}

func (c Cash) Kind() Kind { return KindCash }

func (c Cash) Authorize(total types.Money) (*Authorization, error) {
	if c.Tendered.IsNegative() {
		return nil, fmt.Errorf("%w: negative tender %s", ErrDeclined, c.Tendered)
	}
	if c.Tendered.LessThan(total) {
		return nil, fmt.Errorf("%w: tendered %s below total %s", ErrDeclined, c.Tendered, total)
	}

	return &Authorization{
		Reference: newReference("cash"),
		Tendered:  c.Tendered,
		Change:    c.Tendered.Subtract(total),
	}, nil
}

// ──────────────────────────────────────────────────
// Card
// ──────────────────────────────────────────────────

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
	cardCVVPattern    = regexp.MustCompile(`^[0-9]{3}$`)
)

// Card is a dummy card authorization. Number must be 16 digits and CVV
// 3 digits; no real gateway is involved.
type Card struct {
	Number string
	Holder string
	CVV    string
}

func (c Card) Kind() Kind { return KindCard }

func (c Card) Authorize(types.Money) (*Authorization, error) {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if !cardNumberPattern.MatchString(digits) {
		return nil, fmt.Errorf("%w: card number must be 16 digits", ErrDeclined)
	}
	if !cardCVVPattern.MatchString(c.CVV) {
		return nil, fmt.Errorf("%w: cvv must be 3 digits", ErrDeclined)
	}

	return &Authorization{Reference: newReference("card")}, nil
}

// ──────────────────────────────────────────────────
// UPI
// ──────────────────────────────────────────────────

// UPI authorizes against a virtual payment address and transaction
// reference supplied by the customer's UPI app.
type UPI struct {
	VPA         string // e.g. "name@bank"
	ReferenceNo string
}

func (u UPI) Kind() Kind { return KindUPI }

func (u UPI) Authorize(types.Money) (*Authorization, error) {
	if !strings.Contains(u.VPA, "@") || strings.TrimSpace(u.VPA) == "" {
		return nil, fmt.Errorf("%w: invalid upi id %q", ErrDeclined, u.VPA)
	}
	if strings.TrimSpace(u.ReferenceNo) == "" {
		return nil, fmt.Errorf("%w: missing upi reference", ErrDeclined)
	}

	return &Authorization{Reference: u.ReferenceNo}, nil
}

// newReference mints an opaque authorization reference.
func newReference(scheme string) string {
	return scheme + "_" + uuid.NewString()
}
