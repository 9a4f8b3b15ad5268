package store

import (
	"context"

	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/feedback"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/product"
)

// Store is the unified storage interface for all billing entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Customer methods
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error)
	ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error)
	UpdateCustomer(ctx context.Context, c *customer.Customer) error
	DeleteCustomer(ctx context.Context, customerID id.CustomerID) error

	// Product methods
	CreateProduct(ctx context.Context, p *product.Product) error
	GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error)
	GetProductByName(ctx context.Context, name string) (*product.Product, error)
	ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error)
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, productID id.ProductID) error
	AdjustStock(ctx context.Context, productID id.ProductID, delta int64) error

	// Bill methods
	CreateBill(ctx context.Context, b *bill.Bill) error
	GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error)
	GetBillForCustomer(ctx context.Context, billID id.BillID, customerID id.CustomerID) (*bill.Bill, error)
	ListBillsByCustomer(ctx context.Context, customerID id.CustomerID, opts bill.ListOpts) ([]*bill.Bill, error)
	UpdateBill(ctx context.Context, b *bill.Bill) error

	// Bill item methods
	PutItem(ctx context.Context, it *bill.Item) error
	GetItem(ctx context.Context, billID id.BillID, productID id.ProductID) (*bill.Item, error)
	DeleteItem(ctx context.Context, billID id.BillID, productID id.ProductID) error
	ListItems(ctx context.Context, billID id.BillID) ([]*bill.Item, error)
	ListItemsByProduct(ctx context.Context, productID id.ProductID) ([]*bill.Item, error)
	ReservedQuantity(ctx context.Context, productID id.ProductID, excludeBill id.BillID) (int64, error)

	// Receipt methods
	CreateReceipt(ctx context.Context, r *payment.Receipt) error
	GetReceiptByBill(ctx context.Context, billID id.BillID) (*payment.Receipt, error)

	// Feedback methods
	CreateFeedback(ctx context.Context, f *feedback.Feedback) error
	ListFeedbackByCustomer(ctx context.Context, customerID id.CustomerID) ([]*feedback.Feedback, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
