package product

import (
	"context"

	"github.com/nellaimart/billing/id"
)

type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, productID id.ProductID) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	List(ctx context.Context, opts ListOpts) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ProductID) error

	// AdjustStock atomically adds delta (which may be negative) to the
	// product's stock. A result below zero fails without modifying the row.
	AdjustStock(ctx context.Context, productID id.ProductID, delta int64) error
}

type ListOpts struct {
	Limit  int
	Offset int
}
