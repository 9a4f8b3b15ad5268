// Package bill defines bills and their line items.
package bill

import (
	"time"

	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/types"
)

type Status string

const (
	// StatusOpen accepts item mutations and payment attempts.
	StatusOpen Status = "open"
	// StatusPaid is terminal. No further mutation of any kind.
	StatusPaid Status = "paid"
)

// Bill is a purchase ledger entry for one customer visit. Totals are
// derived from the line items and rewritten on every item mutation.
type Bill struct {
	types.Entity
	ID            id.BillID     `json:"id"`
	CustomerID    id.CustomerID `json:"customer_id"`
	Status        Status        `json:"status"`
	PaymentMethod payment.Kind  `json:"payment_method,omitempty"`
	TotalQuantity int64         `json:"total_quantity"`
	TotalAmount   types.Money   `json:"total_amount"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// Item is one line of a bill. Rate is captured from the product at the
// time the line is written and does not follow later catalog changes.
// A bill holds at most one line per product.
type Item struct {
	types.Entity
	ID        id.ItemID    `json:"id"`
	BillID    id.BillID    `json:"bill_id"`
	ProductID id.ProductID `json:"product_id"`
	Quantity  int64        `json:"quantity"`
	Rate      types.Money  `json:"rate"`
}

// Amount returns the line total (quantity × captured rate).
func (it *Item) Amount() types.Money {
	return it.Rate.Multiply(it.Quantity)
}

// Recalculate rewrites the bill totals from the full line set.
func (b *Bill) Recalculate(items []*Item) {
	var qty int64
	total := types.Zero(b.TotalAmount.Currency)
	for _, it := range items {
		qty += it.Quantity
		total = total.Add(it.Amount())
	}
	b.TotalQuantity = qty
	b.TotalAmount = total
}

// View is a bill joined with its lines for presentation.
type View struct {
	Bill  *Bill   `json:"bill"`
	Items []*Item `json:"items"`
}
