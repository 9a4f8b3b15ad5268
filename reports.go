package billing

import (
	"context"
	"time"

	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/product"
	"github.com/nellaimart/billing/report"
	"github.com/nellaimart/billing/types"
)

// ──────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────

// CustomerReport summarizes one customer's purchase history. Only PAID
// bills count; open carts are invisible to spend figures.
func (e *Engine) CustomerReport(ctx context.Context, customerID id.CustomerID) (*report.Customer, error) {
	c, err := e.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	bills, err := e.store.ListBillsByCustomer(ctx, customerID, bill.ListOpts{Status: bill.StatusPaid})
	if err != nil {
		return nil, err
	}

	total := types.Zero(e.currency)
	dates := make([]time.Time, 0, len(bills))
	months := make(map[string]struct{})

	for _, b := range bills {
		total = total.Add(b.TotalAmount)
		dates = append(dates, b.CreatedAt)
		months[b.CreatedAt.Format("2006-01")] = struct{}{}
	}

	r := &report.Customer{
		Customer:            c,
		BillCount:           len(bills),
		TotalSpend:          total,
		AverageSpend:        types.Zero(e.currency),
		AverageMonthlySpend: types.Zero(e.currency),
		PurchaseDates:       dates,
	}
	if len(bills) > 0 {
		r.AverageSpend = total.Divide(int64(len(bills)))
	}
	if len(months) > 0 {
		r.AverageMonthlySpend = total.Divide(int64(len(months)))
	}

	return r, nil
}

// AllCustomerReports builds a report for every registered customer.
func (e *Engine) AllCustomerReports(ctx context.Context) ([]*report.Customer, error) {
	customers, err := e.store.ListCustomers(ctx, customer.ListOpts{})
	if err != nil {
		return nil, err
	}

	reports := make([]*report.Customer, 0, len(customers))
	for _, c := range customers {
		r, err := e.CustomerReport(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	return reports, nil
}

// ProductReport summarizes a product's movement across ALL bill items,
// settled and still open alike. Revenue is priced at each line's
// captured rate, so later catalog changes never rewrite history.
func (e *Engine) ProductReport(ctx context.Context, productID id.ProductID) (*report.Product, error) {
	p, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	items, err := e.store.ListItemsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var qty int64
	revenue := types.Zero(e.currency)
	for _, it := range items {
		qty += it.Quantity
		revenue = revenue.Add(it.Amount())
	}

	return &report.Product{
		Product:      p,
		QuantitySold: qty,
		Revenue:      revenue,
	}, nil
}

// AllProductReports builds a report for every catalog product.
func (e *Engine) AllProductReports(ctx context.Context) ([]*report.Product, error) {
	products, err := e.store.ListProducts(ctx, product.ListOpts{})
	if err != nil {
		return nil, err
	}

	reports := make([]*report.Product, 0, len(products))
	for _, p := range products {
		r, err := e.ProductReport(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	return reports, nil
}
