package bill

import (
	"context"

	"github.com/nellaimart/billing/id"
)

type Store interface {
	Create(ctx context.Context, b *Bill) error
	Get(ctx context.Context, billID id.BillID) (*Bill, error)
	// GetForCustomer retrieves a bill only when it belongs to the given
	// customer. A mismatched pair behaves exactly like a missing bill.
	GetForCustomer(ctx context.Context, billID id.BillID, customerID id.CustomerID) (*Bill, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID, opts ListOpts) ([]*Bill, error)
	Update(ctx context.Context, b *Bill) error

	// Line items. PutItem inserts or replaces the single line keyed by
	// (bill, product).
	PutItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, billID id.BillID, productID id.ProductID) (*Item, error)
	DeleteItem(ctx context.Context, billID id.BillID, productID id.ProductID) error
	ListItems(ctx context.Context, billID id.BillID) ([]*Item, error)
	ListItemsByProduct(ctx context.Context, productID id.ProductID) ([]*Item, error)

	// ReservedQuantity sums the quantity of the product across line items
	// of all OPEN bills, skipping excludeBill. Used for stock netting.
	ReservedQuantity(ctx context.Context, productID id.ProductID, excludeBill id.BillID) (int64, error)
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
