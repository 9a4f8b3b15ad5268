// Package product defines catalog products.
package product

import (
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/types"
)

// Product is a catalog entry. Price is the marked retail price (MRP);
// Rate is the selling rate actually charged, never above Price.
type Product struct {
	types.Entity
	ID    id.ProductID `json:"id"`
	Name  string       `json:"name"`
	Price types.Money  `json:"price"`
	Rate  types.Money  `json:"rate"`
	Stock int64        `json:"stock"`
}

// InStock reports whether at least qty units are on hand.
func (p *Product) InStock(qty int64) bool {
	return p.Stock >= qty
}
