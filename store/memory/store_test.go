package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nellaimart/billing"
	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/feedback"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/product"
	"github.com/nellaimart/billing/types"
)

func newCustomer(name, email string) *customer.Customer {
	return &customer.Customer{
		Entity: types.NewEntity(),
		ID:     id.NewCustomerID(),
		Name:   name,
		Email:  email,
		Phone:  "9876543210",
	}
}

func newProduct(name string, price, rate types.Money, stock int64) *product.Product {
	return &product.Product{
		Entity: types.NewEntity(),
		ID:     id.NewProductID(),
		Name:   name,
		Price:  price,
		Rate:   rate,
		Stock:  stock,
	}
}

func newBill(customerID id.CustomerID) *bill.Bill {
	return &bill.Bill{
		Entity:      types.NewEntity(),
		ID:          id.NewBillID(),
		CustomerID:  customerID,
		Status:      bill.StatusOpen,
		TotalAmount: types.Zero("inr"),
	}
}

func newItem(billID id.BillID, productID id.ProductID, qty int64, rate types.Money) *bill.Item {
	return &bill.Item{
		Entity:    types.NewEntity(),
		ID:        id.NewItemID(),
		BillID:    billID,
		ProductID: productID,
		Quantity:  qty,
		Rate:      rate,
	}
}

func TestCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newCustomer("Meena", "meena@example.com")
	require.NoError(t, s.CreateCustomer(ctx, c))

	got, err := s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meena", got.Name)

	got, err = s.GetCustomerByEmail(ctx, "meena@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = s.GetCustomer(ctx, id.NewCustomerID())
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestCustomerEmailUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateCustomer(ctx, newCustomer("Meena", "meena@example.com")))

	err := s.CreateCustomer(ctx, newCustomer("Other Meena", "meena@example.com"))
	assert.ErrorIs(t, err, billing.ErrEmailExists)
}

func TestListCustomersWindow(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.CreateCustomer(ctx, newCustomer(name, name+"@example.com")))
	}

	all, err := s.ListCustomers(ctx, customer.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	// Creation order via K-sortable IDs.
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "d", all[3].Name)

	page, err := s.ListCustomers(ctx, customer.ListOpts{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Name)
	assert.Equal(t, "c", page[1].Name)
}

func TestProductNameUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	price := types.INR(5000)
	require.NoError(t, s.CreateProduct(ctx, newProduct("Soap", price, price, 10)))

	err := s.CreateProduct(ctx, newProduct("Soap", price, price, 3))
	assert.ErrorIs(t, err, billing.ErrProductExists)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := newProduct("Soap", types.INR(5000), types.INR(4500), 10)
	require.NoError(t, s.CreateProduct(ctx, p))

	require.NoError(t, s.AdjustStock(ctx, p.ID, -4))
	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Stock)

	// A decrement past zero must fail and leave stock untouched.
	err = s.AdjustStock(ctx, p.ID, -7)
	assert.ErrorIs(t, err, billing.ErrInsufficientStock)
	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Stock)

	err = s.AdjustStock(ctx, id.NewProductID(), -1)
	assert.ErrorIs(t, err, billing.ErrProductNotFound)
}

func TestGetBillForCustomer(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newCustomer("Meena", "meena@example.com")
	require.NoError(t, s.CreateCustomer(ctx, c))

	b := newBill(c.ID)
	require.NoError(t, s.CreateBill(ctx, b))

	got, err := s.GetBillForCustomer(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	// A mismatched customer looks like a missing bill.
	_, err = s.GetBillForCustomer(ctx, b.ID, id.NewCustomerID())
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
}

func TestListBillsByCustomerStatusFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newCustomer("Meena", "meena@example.com")
	require.NoError(t, s.CreateCustomer(ctx, c))

	open := newBill(c.ID)
	require.NoError(t, s.CreateBill(ctx, open))

	paid := newBill(c.ID)
	paid.Status = bill.StatusPaid
	require.NoError(t, s.CreateBill(ctx, paid))

	all, err := s.ListBillsByCustomer(ctx, c.ID, bill.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	settled, err := s.ListBillsByCustomer(ctx, c.ID, bill.ListOpts{Status: bill.StatusPaid})
	require.NoError(t, err)
	require.Len(t, settled, 1)
	assert.Equal(t, paid.ID, settled[0].ID)
}

func TestPutItemReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()

	billID := id.NewBillID()
	productID := id.NewProductID()

	require.NoError(t, s.PutItem(ctx, newItem(billID, productID, 2, types.INR(4500))))
	require.NoError(t, s.PutItem(ctx, newItem(billID, productID, 5, types.INR(4000))))

	got, err := s.GetItem(ctx, billID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
	assert.Equal(t, int64(4000), got.Rate.Amount)

	items, err := s.ListItems(ctx, billID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	s := New()

	billID := id.NewBillID()
	productID := id.NewProductID()

	err := s.DeleteItem(ctx, billID, productID)
	assert.ErrorIs(t, err, billing.ErrItemNotFound)

	require.NoError(t, s.PutItem(ctx, newItem(billID, productID, 2, types.INR(4500))))
	require.NoError(t, s.DeleteItem(ctx, billID, productID))

	_, err = s.GetItem(ctx, billID, productID)
	assert.ErrorIs(t, err, billing.ErrItemNotFound)
}

func TestReservedQuantity(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newCustomer("Meena", "meena@example.com")
	require.NoError(t, s.CreateCustomer(ctx, c))

	p := newProduct("Soap", types.INR(5000), types.INR(4500), 100)
	require.NoError(t, s.CreateProduct(ctx, p))

	openA := newBill(c.ID)
	openB := newBill(c.ID)
	settled := newBill(c.ID)
	settled.Status = bill.StatusPaid
	for _, b := range []*bill.Bill{openA, openB, settled} {
		require.NoError(t, s.CreateBill(ctx, b))
	}

	require.NoError(t, s.PutItem(ctx, newItem(openA.ID, p.ID, 3, p.Rate)))
	require.NoError(t, s.PutItem(ctx, newItem(openB.ID, p.ID, 4, p.Rate)))
	require.NoError(t, s.PutItem(ctx, newItem(settled.ID, p.ID, 9, p.Rate)))

	// Only other open bills count. Settled lines are already out of stock.
	reserved, err := s.ReservedQuantity(ctx, p.ID, openA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), reserved)

	reserved, err = s.ReservedQuantity(ctx, p.ID, id.NewBillID())
	require.NoError(t, err)
	assert.Equal(t, int64(7), reserved)
}

func TestReceiptRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	billID := id.NewBillID()

	_, err := s.GetReceiptByBill(ctx, billID)
	assert.ErrorIs(t, err, billing.ErrReceiptNotFound)
}

func TestFeedbackByCustomer(t *testing.T) {
	ctx := context.Background()
	s := New()

	customerID := id.NewCustomerID()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateFeedback(ctx, &feedback.Feedback{
			Entity:     types.NewEntity(),
			ID:         id.NewFeedbackID(),
			CustomerID: customerID,
			Rating:     5,
		}))
	}

	entries, err := s.ListFeedbackByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = s.ListFeedbackByCustomer(ctx, id.NewCustomerID())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Reads must hand out snapshots, like the SQL and document backends do.
// Mutating a returned row before Update* is called must not leak into
// stored state.
func TestReadsReturnSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := newProduct("Soap", types.INR(4000), types.INR(3500), 10)
	require.NoError(t, s.CreateProduct(ctx, p))

	// The caller's pointer is detached on write.
	p.Stock = 99
	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)

	// And each read is detached from stored state.
	got.Stock = 0
	again, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Stock)

	c := newCustomer("Meena", "meena@example.com")
	require.NoError(t, s.CreateCustomer(ctx, c))
	b := newBill(c.ID)
	require.NoError(t, s.CreateBill(ctx, b))

	gotBill, err := s.GetBill(ctx, b.ID)
	require.NoError(t, err)
	gotBill.Status = bill.StatusPaid
	againBill, err := s.GetBillForCustomer(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusOpen, againBill.Status)

	it := newItem(b.ID, p.ID, 2, types.INR(3500))
	require.NoError(t, s.PutItem(ctx, it))
	gotItem, err := s.GetItem(ctx, b.ID, p.ID)
	require.NoError(t, err)
	gotItem.Quantity = 100
	againItem, err := s.GetItem(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), againItem.Quantity)

	listed, err := s.ListProducts(ctx, product.ListOpts{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Stock = 0
	final, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), final.Stock)
}
