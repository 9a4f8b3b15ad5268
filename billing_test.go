package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/nellaimart/billing"
	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/product"
	"github.com/nellaimart/billing/store/memory"
	"github.com/nellaimart/billing/types"
)

func newEngine(t *testing.T) (*billing.Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	return billing.New(s), s
}

func seedCustomer(t *testing.T, e *billing.Engine, name, email string) *customer.Customer {
	t.Helper()
	c, err := e.RegisterCustomer(context.Background(), name, email, "9876543210", "12 Bazaar St")
	require.NoError(t, err)
	return c
}

func TestRegisterCustomerValidation(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.RegisterCustomer(ctx, "", "a@b.com", "", "")
	assert.True(t, billing.IsValidation(err))

	_, err = e.RegisterCustomer(ctx, "Mani", "not-an-email", "", "")
	assert.ErrorIs(t, err, billing.ErrInvalidEmail)

	_, err = e.RegisterCustomer(ctx, "Mani", "mani@shop.in", "12345", "")
	assert.ErrorIs(t, err, billing.ErrInvalidPhone)

	_, err = e.RegisterCustomer(ctx, "Mani", "mani@shop.in", "9876543210", "")
	require.NoError(t, err)

	// Same email again, different name.
	_, err = e.RegisterCustomer(ctx, "Other Mani", "mani@shop.in", "", "")
	assert.ErrorIs(t, err, billing.ErrEmailExists)

	got, err := e.FindCustomerByEmail(ctx, "mani@shop.in")
	require.NoError(t, err)
	assert.Equal(t, "Mani", got.Name)
}

func TestAddProductValidation(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.AddProduct(ctx, "Soap", types.INR(0), types.INR(0), 10)
	assert.ErrorIs(t, err, billing.ErrInvalidPrice)

	// Rate above marked price.
	_, err = e.AddProduct(ctx, "Soap", types.INR(4000), types.INR(4500), 10)
	assert.ErrorIs(t, err, billing.ErrInvalidRate)

	_, err = e.AddProduct(ctx, "Soap", types.INR(4000), types.INR(-1), 10)
	assert.ErrorIs(t, err, billing.ErrInvalidRate)

	_, err = e.AddProduct(ctx, "Soap", types.INR(4000), types.INR(3500), -1)
	assert.ErrorIs(t, err, billing.ErrInvalidStock)

	_, err = e.AddProduct(ctx, "Soap", types.USD(4000), types.USD(3500), 10)
	assert.ErrorIs(t, err, billing.ErrCurrencyMismatch)

	p, err := e.AddProduct(ctx, "Soap", types.INR(4000), types.INR(3500), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)

	// Discounted rate equal to price is fine; duplicate name is not.
	_, err = e.AddProduct(ctx, "Soap", types.INR(4000), types.INR(4000), 5)
	assert.ErrorIs(t, err, billing.ErrProductExists)
}

func TestBillLifecycle(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Kavitha", "kavitha@shop.in")
	rice, err := e.AddProduct(ctx, "Rice 5kg", types.INR(45000), types.INR(42000), 20)
	require.NoError(t, err)
	oil, err := e.AddProduct(ctx, "Oil 1L", types.INR(18000), types.INR(18000), 8)
	require.NoError(t, err)

	b, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusOpen, b.Status)
	assert.True(t, b.TotalAmount.IsZero())

	b, err = e.AddItem(ctx, b.ID, c.ID, rice.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, types.INR(84000), b.TotalAmount)

	b, err = e.AddItem(ctx, b.ID, c.ID, oil.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, types.INR(84000+54000), b.TotalAmount)

	// Adding the same product again replaces the quantity, it does not add.
	b, err = e.AddItem(ctx, b.ID, c.ID, rice.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, types.INR(42000+54000), b.TotalAmount)

	view, err := e.GetBill(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)

	b, err = e.UpdateItem(ctx, b.ID, c.ID, oil.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, types.INR(42000+18000), b.TotalAmount)

	b, err = e.RemoveItem(ctx, b.ID, c.ID, oil.ID)
	require.NoError(t, err)
	assert.Equal(t, types.INR(42000), b.TotalAmount)

	// Settle with cash above the total and get change back.
	receipt, err := e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(50000)})
	require.NoError(t, err)
	assert.Equal(t, payment.KindCash, receipt.Method)
	assert.Equal(t, types.INR(42000), receipt.Total)
	assert.Equal(t, types.INR(8000), receipt.Change)

	got, err := e.GetReceipt(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, got.ID)

	// Stock moves only at settlement, only for surviving lines.
	rice, err = e.GetProduct(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(19), rice.Stock)
	oil, err = e.GetProduct(ctx, oil.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), oil.Stock)
}

func TestUpdateItemRequiresExistingLine(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Raju", "raju@shop.in")
	p, err := e.AddProduct(ctx, "Salt", types.INR(2000), types.INR(2000), 5)
	require.NoError(t, err)
	b, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)

	_, err = e.UpdateItem(ctx, b.ID, c.ID, p.ID, 2)
	assert.ErrorIs(t, err, billing.ErrItemNotFound)

	_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, 0)
	assert.ErrorIs(t, err, billing.ErrInvalidQuantity)

	_, err = e.RemoveItem(ctx, b.ID, c.ID, p.ID)
	assert.ErrorIs(t, err, billing.ErrItemNotFound)
}

func TestBillScopedToCustomer(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	alice := seedCustomer(t, e, "Alice", "alice@shop.in")
	bala, err := e.RegisterCustomer(ctx, "Bala", "bala@shop.in", "", "")
	require.NoError(t, err)

	b, err := e.OpenBill(ctx, alice.ID)
	require.NoError(t, err)

	// Another customer cannot see, amend, or settle the bill.
	_, err = e.GetBill(ctx, b.ID, bala.ID)
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
	_, err = e.Pay(ctx, b.ID, bala.ID, payment.Cash{Tendered: types.INR(0)})
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
}

func TestReservationAcrossOpenBills(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Devi", "devi@shop.in")
	p, err := e.AddProduct(ctx, "Sugar", types.INR(5000), types.INR(5000), 10)
	require.NoError(t, err)

	first, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	second, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)

	_, err = e.AddItem(ctx, first.ID, c.ID, p.ID, 7)
	require.NoError(t, err)

	// Seven units are promised to the first bill; only three remain.
	_, err = e.AddItem(ctx, second.ID, c.ID, p.ID, 5)
	assert.ErrorIs(t, err, billing.ErrInsufficientStock)

	_, err = e.AddItem(ctx, second.ID, c.ID, p.ID, 3)
	require.NoError(t, err)

	// Shrinking the first bill's line frees units for the second.
	_, err = e.UpdateItem(ctx, first.ID, c.ID, p.ID, 2)
	require.NoError(t, err)
	_, err = e.UpdateItem(ctx, second.ID, c.ID, p.ID, 8)
	require.NoError(t, err)
}

func TestDeclinedPaymentLeavesBillOpen(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Ezhil", "ezhil@shop.in")
	p, err := e.AddProduct(ctx, "Tea", types.INR(12000), types.INR(12000), 4)
	require.NoError(t, err)
	b, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, 2)
	require.NoError(t, err)

	// Short cash tender.
	_, err = e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(10000)})
	assert.True(t, billing.IsDeclined(err))

	// Bad card number.
	_, err = e.Pay(ctx, b.ID, c.ID, payment.Card{Number: "1234", Holder: "Ezhil", CVV: "123"})
	assert.True(t, billing.IsDeclined(err))

	// UPI without a reference.
	_, err = e.Pay(ctx, b.ID, c.ID, payment.UPI{VPA: "ezhil@bank"})
	assert.True(t, billing.IsDeclined(err))

	// The bill stayed open with stock untouched; a fresh attempt settles it.
	view, err := e.GetBill(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusOpen, view.Bill.Status)
	p, err = e.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Stock)

	receipt, err := e.Pay(ctx, b.ID, c.ID, payment.UPI{VPA: "ezhil@bank", ReferenceNo: "UPI123456"})
	require.NoError(t, err)
	assert.Equal(t, "UPI123456", receipt.Reference)
}

func TestPaidBillIsTerminal(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Farid", "farid@shop.in")
	p, err := e.AddProduct(ctx, "Dates", types.INR(30000), types.INR(27000), 6)
	require.NoError(t, err)
	b, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, 1)
	require.NoError(t, err)
	_, err = e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(27000)})
	require.NoError(t, err)

	_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, 2)
	assert.ErrorIs(t, err, billing.ErrBillNotOpen)
	_, err = e.RemoveItem(ctx, b.ID, c.ID, p.ID)
	assert.ErrorIs(t, err, billing.ErrBillNotOpen)
	_, err = e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(27000)})
	assert.ErrorIs(t, err, billing.ErrBillNotOpen)

	bills, err := e.ListBills(ctx, c.ID, bill.ListOpts{Status: bill.StatusPaid})
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

func TestSettlementStockShortfall(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Gita", "gita@shop.in")
	p, err := e.AddProduct(ctx, "Ghee", types.INR(60000), types.INR(60000), 5)
	require.NoError(t, err)
	b, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, 3)
	require.NoError(t, err)

	// Stock drains out-of-band (shrinkage, a manual correction) after the
	// line was reserved.
	require.NoError(t, s.AdjustStock(ctx, p.ID, -4))

	_, err = e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(180000)})
	assert.ErrorIs(t, err, billing.ErrInsufficientStock)

	// Nothing moved: the bill is still open and the remaining unit intact.
	view, err := e.GetBill(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusOpen, view.Bill.Status)
	p, err = e.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Stock)
}

func TestRestock(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	p, err := e.AddProduct(ctx, "Atta", types.INR(25000), types.INR(24000), 2)
	require.NoError(t, err)

	p, err = e.Restock(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.Stock)

	_, err = e.Restock(ctx, p.ID, -1)
	assert.True(t, billing.IsValidation(err))
}

func TestFeedbackRequiresPaidBill(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Hari", "hari@shop.in")

	_, err := e.RecordFeedback(ctx, c.ID, 0, "")
	assert.ErrorIs(t, err, billing.ErrInvalidRating)
	_, err = e.RecordFeedback(ctx, c.ID, 6, "")
	assert.ErrorIs(t, err, billing.ErrInvalidRating)

	// No settled purchase yet.
	_, err = e.RecordFeedback(ctx, c.ID, 4, "good shop")
	assert.ErrorIs(t, err, billing.ErrNoSettledPurchase)

	p, err := e.AddProduct(ctx, "Milk", types.INR(2800), types.INR(2800), 10)
	require.NoError(t, err)
	b, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, 1)
	require.NoError(t, err)
	_, err = e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(2800)})
	require.NoError(t, err)

	f, err := e.RecordFeedback(ctx, c.ID, 4, "good shop")
	require.NoError(t, err)
	assert.Equal(t, 4, f.Rating)

	list, err := e.ListFeedback(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCustomerReport(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Indira", "indira@shop.in")
	p, err := e.AddProduct(ctx, "Jaggery", types.INR(8000), types.INR(8000), 50)
	require.NoError(t, err)

	settle := func(qty int64) {
		b, err := e.OpenBill(ctx, c.ID)
		require.NoError(t, err)
		_, err = e.AddItem(ctx, b.ID, c.ID, p.ID, qty)
		require.NoError(t, err)
		_, err = e.Pay(ctx, b.ID, c.ID, payment.Cash{Tendered: types.INR(8000 * qty)})
		require.NoError(t, err)
	}
	settle(2)
	settle(4)

	// An open cart must not count toward spend.
	open, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, open.ID, c.ID, p.ID, 10)
	require.NoError(t, err)

	r, err := e.CustomerReport(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, r.BillCount)
	assert.Equal(t, types.INR(48000), r.TotalSpend)
	assert.Equal(t, types.INR(24000), r.AverageSpend)
	assert.Len(t, r.PurchaseDates, 2)

	all, err := e.AllCustomerReports(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductReport(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c := seedCustomer(t, e, "Joseph", "joseph@shop.in")
	p, err := e.AddProduct(ctx, "Candles", types.INR(1500), types.INR(1200), 100)
	require.NoError(t, err)

	b1, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, b1.ID, c.ID, p.ID, 5)
	require.NoError(t, err)
	_, err = e.Pay(ctx, b1.ID, c.ID, payment.Cash{Tendered: types.INR(6000)})
	require.NoError(t, err)

	// Open bills count toward movement too.
	b2, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, b2.ID, c.ID, p.ID, 3)
	require.NoError(t, err)

	r, err := e.ProductReport(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), r.QuantitySold)
	assert.Equal(t, types.INR(9600), r.Revenue)

	all, err := e.AllProductReports(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// settleOnRead runs a callback the first time a product is read after
// arming, so a test can interleave a competing operation into the middle
// of an item write.
type settleOnRead struct {
	*memory.Store

	mu     sync.Mutex
	onRead func()
}

func (s *settleOnRead) arm(fn func()) {
	s.mu.Lock()
	s.onRead = fn
	s.mu.Unlock()
}

func (s *settleOnRead) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	p, err := s.Store.GetProduct(ctx, productID)
	s.mu.Lock()
	fn := s.onRead
	s.onRead = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return p, err
}

func TestSettlementDuringItemWriteCannotOverpromise(t *testing.T) {
	ctx := context.Background()
	s := &settleOnRead{Store: memory.New()}
	e := billing.New(s)

	c := seedCustomer(t, e, "Leela", "leela@shop.in")
	p, err := e.AddProduct(ctx, "Sugar", types.INR(5000), types.INR(5000), 10)
	require.NoError(t, err)

	first, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, first.ID, c.ID, p.ID, 7)
	require.NoError(t, err)

	second, err := e.OpenBill(ctx, c.ID)
	require.NoError(t, err)

	// The first bill tries to settle its seven units right as the second
	// bill's item write reads the product. The write holds the product
	// lock across read and feasibility check, so the settlement must wait
	// and the check must count the first bill's reservation.
	var payErr error
	settled := make(chan struct{})
	s.arm(func() {
		go func() {
			_, payErr = e.Pay(ctx, first.ID, c.ID, payment.Cash{Tendered: types.INR(35000)})
			close(settled)
		}()
		select {
		case <-settled:
		case <-time.After(200 * time.Millisecond):
		}
	})

	_, err = e.AddItem(ctx, second.ID, c.ID, p.ID, 10)
	assert.ErrorIs(t, err, billing.ErrInsufficientStock)

	<-settled
	require.NoError(t, payErr)

	// Seven units left the shelf; the second bill can claim the rest.
	p, err = e.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Stock)
	_, err = e.AddItem(ctx, second.ID, c.ID, p.ID, 3)
	require.NoError(t, err)
}
