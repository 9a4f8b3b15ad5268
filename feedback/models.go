// Package feedback defines post-purchase customer feedback.
package feedback

import (
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	types.Entity
	ID         id.FeedbackID `json:"id"`
	CustomerID id.CustomerID `json:"customer_id"`
	Rating     int           `json:"rating"` // MinRating..MaxRating
	Comments   string        `json:"comments,omitempty"`
}
