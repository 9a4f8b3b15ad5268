package feedback

import (
	"context"

	"github.com/nellaimart/billing/id"
)

type Store interface {
	Create(ctx context.Context, f *Feedback) error
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*Feedback, error)
}
