// Package report defines analytics result types computed by the engine.
package report

import (
	"time"

	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/product"
	"github.com/nellaimart/billing/types"
)

// Customer summarizes one customer's purchase history across PAID bills.
type Customer struct {
	Customer            *customer.Customer `json:"customer"`
	BillCount           int                `json:"bill_count"`
	TotalSpend          types.Money        `json:"total_spend"`
	AverageSpend        types.Money        `json:"average_spend"`
	AverageMonthlySpend types.Money        `json:"average_monthly_spend"`
	PurchaseDates       []time.Time        `json:"purchase_dates"`
}

// Product summarizes a product's sales across ALL bill items, settled
// or still open. Revenue uses each line's captured rate.
type Product struct {
	Product      *product.Product `json:"product"`
	QuantitySold int64            `json:"quantity_sold"`
	Revenue      types.Money      `json:"revenue"`
}
