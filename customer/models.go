// Package customer defines registered shop customers.
package customer

import (
	"regexp"

	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/types"
)

type Customer struct {
	types.Entity
	ID      id.CustomerID `json:"id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone,omitempty"`
	Address string        `json:"address,omitempty"`
}

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidEmail reports whether s is an acceptable email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s is a 10-digit phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}
