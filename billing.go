package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/feedback"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/plugin"
	"github.com/nellaimart/billing/product"
	"github.com/nellaimart/billing/store"
	"github.com/nellaimart/billing/types"
)

// Engine is the main retail billing engine.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	// Logical locks. Bills have a single writer; product locks serialize
	// stock check-then-act sequences.
	bills    *keyedMutex
	products *keyedMutex

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	currency          string
	lowStockThreshold int64
	lowStockInterval  time.Duration
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:            s,
		plugins:          plugin.NewRegistry(),
		logger:           slog.Default(),
		bills:            newKeyedMutex(),
		products:         newKeyedMutex(),
		stopChan:         make(chan struct{}),
		currency:         "inr",
		lowStockInterval: time.Minute,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCurrency sets the currency all bills are totaled in (default "inr").
func WithCurrency(currency string) Option {
	return func(e *Engine) {
		e.currency = strings.ToLower(currency)
	}
}

// WithLowStockThreshold enables the low-stock watcher. A product at or
// below the threshold triggers OnLowStock plugin events.
func WithLowStockThreshold(threshold int64) Option {
	return func(e *Engine) {
		e.lowStockThreshold = threshold
	}
}

// WithLowStockInterval sets how often the low-stock watcher scans.
func WithLowStockInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.lowStockInterval = interval
	}
}

// Start migrates the store and begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	// Start low-stock watcher
	if e.lowStockThreshold > 0 {
		e.wg.Add(1)
		go e.lowStockWatcher(ctx)
	}

	e.logger.Info("billing engine started",
		"currency", e.currency,
		"low_stock_threshold", e.lowStockThreshold,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Customer Management
// ──────────────────────────────────────────────────

// RegisterCustomer registers a new customer. The email must be unique
// across the shop.
func (e *Engine) RegisterCustomer(ctx context.Context, name, email, phone, address string) (*customer.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !customer.ValidEmail(email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if phone != "" && !customer.ValidPhone(phone) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	c := &customer.Customer{
		Entity:  types.NewEntity(),
		ID:      id.NewCustomerID(),
		Name:    name,
		Email:   email,
		Phone:   phone,
		Address: address,
	}

	if err := e.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	e.plugins.EmitCustomerCreated(ctx, c)
	return c, nil
}

// GetCustomer retrieves a customer by ID.
func (e *Engine) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	return e.store.GetCustomer(ctx, customerID)
}

// FindCustomerByEmail retrieves a customer by email address.
func (e *Engine) FindCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return e.store.GetCustomerByEmail(ctx, email)
}

// ListCustomers lists registered customers.
func (e *Engine) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	return e.store.ListCustomers(ctx, opts)
}

// ──────────────────────────────────────────────────
// Catalog Management
// ──────────────────────────────────────────────────

// AddProduct adds a product to the catalog. Price is the marked retail
// price; rate is what customers are charged and may not exceed it.
func (e *Engine) AddProduct(ctx context.Context, name string, price, rate types.Money, stock int64) (*product.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if price.Currency != e.currency || rate.Currency != e.currency {
		return nil, fmt.Errorf("%w: engine currency is %q", ErrCurrencyMismatch, e.currency)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}
	if rate.IsNegative() || rate.GreaterThan(price) {
		return nil, fmt.Errorf("%w: rate %s, price %s", ErrInvalidRate, rate, price)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStock, stock)
	}

	p := &product.Product{
		Entity: types.NewEntity(),
		ID:     id.NewProductID(),
		Name:   name,
		Price:  price,
		Rate:   rate,
		Stock:  stock,
	}

	if err := e.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	e.plugins.EmitProductAdded(ctx, p)
	return p, nil
}

// GetProduct retrieves a product by ID.
func (e *Engine) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	return e.store.GetProduct(ctx, productID)
}

// FindProductByName retrieves a product by its exact name.
func (e *Engine) FindProductByName(ctx context.Context, name string) (*product.Product, error) {
	return e.store.GetProductByName(ctx, name)
}

// ListProducts lists catalog products.
func (e *Engine) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	return e.store.ListProducts(ctx, opts)
}

// Restock increases a product's stock by qty.
func (e *Engine) Restock(ctx context.Context, productID id.ProductID, qty int64) (*product.Product, error) {
	if qty < 0 {
		return nil, ValidationError{Field: "quantity", Message: "restock quantity must not be negative"}
	}

	unlock := e.products.lock(productID.String())
	defer unlock()

	if err := e.store.AdjustStock(ctx, productID, qty); err != nil {
		return nil, err
	}

	p, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	e.plugins.EmitStockAdjusted(ctx, productID.String(), qty, p.Stock)
	return p, nil
}

// ──────────────────────────────────────────────────
// Bill Management
// ──────────────────────────────────────────────────

// OpenBill opens a fresh bill for a customer. A customer may hold any
// number of open bills at once.
func (e *Engine) OpenBill(ctx context.Context, customerID id.CustomerID) (*bill.Bill, error) {
	if _, err := e.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	b := &bill.Bill{
		Entity:      types.NewEntity(),
		ID:          id.NewBillID(),
		CustomerID:  customerID,
		Status:      bill.StatusOpen,
		TotalAmount: types.Zero(e.currency),
	}

	if err := e.store.CreateBill(ctx, b); err != nil {
		return nil, err
	}

	e.plugins.EmitBillOpened(ctx, b)
	return b, nil
}

// AddItem writes a line item onto an open bill. If the bill already has a
// line for the product, its quantity is replaced and the rate re-captured
// from the current catalog rate.
func (e *Engine) AddItem(ctx context.Context, billID id.BillID, customerID id.CustomerID, productID id.ProductID, qty int64) (*bill.Bill, error) {
	return e.writeItem(ctx, billID, customerID, productID, qty, false)
}

// UpdateItem replaces the quantity of an existing line item. Unlike
// AddItem it fails when the bill has no line for the product.
func (e *Engine) UpdateItem(ctx context.Context, billID id.BillID, customerID id.CustomerID, productID id.ProductID, qty int64) (*bill.Bill, error) {
	return e.writeItem(ctx, billID, customerID, productID, qty, true)
}

// writeItem is the shared add/update path. Stock is netted against the
// reserved quantity across every other open bill, so two open bills
// cannot jointly promise more units than exist.
func (e *Engine) writeItem(ctx context.Context, billID id.BillID, customerID id.CustomerID, productID id.ProductID, qty int64, requireExisting bool) (*bill.Bill, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	unlockBill := e.bills.lock(billID.String())
	defer unlockBill()

	b, err := e.store.GetBillForCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}
	if b.Status != bill.StatusOpen {
		return nil, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}

	unlockProduct := e.products.lock(productID.String())
	defer unlockProduct()

	// Stock must be read under the product lock: a settlement racing this
	// write could otherwise decrement between the read and the feasibility
	// check below.
	p, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := e.store.GetItem(ctx, billID, productID)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}
	if requireExisting && existing == nil {
		return nil, fmt.Errorf("%w: product %s on bill %s", ErrItemNotFound, productID, billID)
	}

	// Net availability against every other open bill. This bill's own
	// line is excluded because it is being replaced wholesale.
	reserved, err := e.store.ReservedQuantity(ctx, productID, billID)
	if err != nil {
		return nil, err
	}
	available := p.Stock - reserved
	if available < qty {
		return nil, fmt.Errorf("%w: %d of %q available, %d requested", ErrInsufficientStock, available, p.Name, qty)
	}

	it := existing
	if it == nil {
		it = &bill.Item{
			Entity:    types.NewEntity(),
			ID:        id.NewItemID(),
			BillID:    billID,
			ProductID: productID,
		}
	} else {
		it.Touch()
	}
	it.Quantity = qty
	it.Rate = p.Rate

	if err := e.store.PutItem(ctx, it); err != nil {
		return nil, err
	}

	return e.recalculate(ctx, b)
}

// RemoveItem deletes a line item from an open bill.
func (e *Engine) RemoveItem(ctx context.Context, billID id.BillID, customerID id.CustomerID, productID id.ProductID) (*bill.Bill, error) {
	unlockBill := e.bills.lock(billID.String())
	defer unlockBill()

	b, err := e.store.GetBillForCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}
	if b.Status != bill.StatusOpen {
		return nil, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}

	if _, err := e.store.GetItem(ctx, billID, productID); err != nil {
		return nil, err
	}
	if err := e.store.DeleteItem(ctx, billID, productID); err != nil {
		return nil, err
	}

	return e.recalculate(ctx, b)
}

// recalculate rewrites bill totals from the full line set and persists.
// Callers hold the bill lock.
func (e *Engine) recalculate(ctx context.Context, b *bill.Bill) (*bill.Bill, error) {
	items, err := e.store.ListItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	b.Recalculate(items)
	b.Touch()

	if err := e.store.UpdateBill(ctx, b); err != nil {
		return nil, err
	}

	e.plugins.EmitBillAmended(ctx, b)
	return b, nil
}

// GetBill retrieves a bill with its line items, scoped to a customer.
func (e *Engine) GetBill(ctx context.Context, billID id.BillID, customerID id.CustomerID) (*bill.View, error) {
	b, err := e.store.GetBillForCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}

	items, err := e.store.ListItems(ctx, billID)
	if err != nil {
		return nil, err
	}

	return &bill.View{Bill: b, Items: items}, nil
}

// ListBills lists a customer's bills, optionally filtered by status.
func (e *Engine) ListBills(ctx context.Context, customerID id.CustomerID, opts bill.ListOpts) ([]*bill.Bill, error) {
	return e.store.ListBillsByCustomer(ctx, customerID, opts)
}

// ──────────────────────────────────────────────────
// Payment
// ──────────────────────────────────────────────────

// Pay settles an open bill with the given tender method. On success the
// bill becomes paid (terminal) and stock is decremented for every line,
// all-or-nothing. Any failure leaves the bill open with stock untouched;
// the caller may retry with the same or a different method.
func (e *Engine) Pay(ctx context.Context, billID id.BillID, customerID id.CustomerID, method payment.Method) (*payment.Receipt, error) {
	unlockBill := e.bills.lock(billID.String())
	defer unlockBill()

	b, err := e.store.GetBillForCustomer(ctx, billID, customerID)
	if err != nil {
		return nil, err
	}
	if b.Status != bill.StatusOpen {
		return nil, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}

	items, err := e.store.ListItems(ctx, billID)
	if err != nil {
		return nil, err
	}

	auth, err := method.Authorize(b.TotalAmount)
	if err != nil {
		e.plugins.EmitPaymentDeclined(ctx, billID.String(), err)
		e.logger.Info("payment declined",
			"bill_id", billID.String(),
			"method", method.Kind(),
			"error", err,
		)
		return nil, err
	}

	// Take product locks in sorted order so concurrent settlements of
	// overlapping carts cannot deadlock.
	productIDs := make([]string, 0, len(items))
	for _, it := range items {
		productIDs = append(productIDs, it.ProductID.String())
	}
	sort.Strings(productIDs)
	for _, pid := range productIDs {
		unlock := e.products.lock(pid)
		defer unlock()
	}

	// Pre-check every decrement before touching any row.
	stockAfter := make(map[string]int64, len(items))
	for _, it := range items {
		p, err := e.store.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.InStock(it.Quantity) {
			declineErr := fmt.Errorf("%w: %d of %q on hand, %d on bill", ErrInsufficientStock, p.Stock, p.Name, it.Quantity)
			e.plugins.EmitPaymentDeclined(ctx, billID.String(), declineErr)
			return nil, declineErr
		}
		stockAfter[it.ProductID.String()] = p.Stock - it.Quantity
	}

	// Apply decrements, compensating on any unexpected failure.
	applied := make([]*bill.Item, 0, len(items))
	for _, it := range items {
		if err := e.store.AdjustStock(ctx, it.ProductID, -it.Quantity); err != nil {
			e.rollbackStock(ctx, applied)
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
		applied = append(applied, it)
	}

	now := time.Now().UTC()
	b.Status = bill.StatusPaid
	b.PaymentMethod = method.Kind()
	b.PaidAt = &now
	b.Touch()

	if err := e.store.UpdateBill(ctx, b); err != nil {
		e.rollbackStock(ctx, applied)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	receipt := &payment.Receipt{
		ID:         id.NewPaymentID(),
		BillID:     billID,
		CustomerID: customerID,
		Method:     method.Kind(),
		Status:     payment.StatusSettled,
		Total:      b.TotalAmount,
		Tendered:   auth.Tendered,
		Change:     auth.Change,
		Reference:  auth.Reference,
		SettledAt:  now,
	}

	if err := e.store.CreateReceipt(ctx, receipt); err != nil {
		// The bill is settled; a lost receipt row must not fail the sale.
		e.logger.Error("failed to persist receipt",
			"bill_id", billID.String(),
			"error", err,
		)
	}

	for _, it := range items {
		e.plugins.EmitStockAdjusted(ctx, it.ProductID.String(), -it.Quantity, stockAfter[it.ProductID.String()])
	}
	e.plugins.EmitBillSettled(ctx, b, receipt)

	e.logger.Info("bill settled",
		"bill_id", billID.String(),
		"method", method.Kind(),
		"total", b.TotalAmount.String(),
	)

	return receipt, nil
}

// rollbackStock restores decrements applied before a settlement failure.
func (e *Engine) rollbackStock(ctx context.Context, applied []*bill.Item) {
	for _, it := range applied {
		if err := e.store.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
			e.logger.Error("failed to roll back stock decrement",
				"product_id", it.ProductID.String(),
				"quantity", it.Quantity,
				"error", err,
			)
		}
	}
}

// GetReceipt retrieves the receipt for a settled bill.
func (e *Engine) GetReceipt(ctx context.Context, billID id.BillID) (*payment.Receipt, error) {
	return e.store.GetReceiptByBill(ctx, billID)
}

// ──────────────────────────────────────────────────
// Feedback
// ──────────────────────────────────────────────────

// RecordFeedback stores a 1..5 rating from a customer who has completed
// at least one purchase.
func (e *Engine) RecordFeedback(ctx context.Context, customerID id.CustomerID, rating int, comments string) (*feedback.Feedback, error) {
	if rating < feedback.MinRating || rating > feedback.MaxRating {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	if _, err := e.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	paid, err := e.store.ListBillsByCustomer(ctx, customerID, bill.ListOpts{Status: bill.StatusPaid, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(paid) == 0 {
		return nil, ErrNoSettledPurchase
	}

	f := &feedback.Feedback{
		Entity:     types.NewEntity(),
		ID:         id.NewFeedbackID(),
		CustomerID: customerID,
		Rating:     rating,
		Comments:   comments,
	}

	if err := e.store.CreateFeedback(ctx, f); err != nil {
		return nil, err
	}

	e.plugins.EmitFeedbackRecorded(ctx, f)
	return f, nil
}

// ListFeedback lists a customer's feedback entries.
func (e *Engine) ListFeedback(ctx context.Context, customerID id.CustomerID) ([]*feedback.Feedback, error) {
	return e.store.ListFeedbackByCustomer(ctx, customerID)
}

// ──────────────────────────────────────────────────
// Background workers
// ──────────────────────────────────────────────────

// lowStockWatcher periodically scans the catalog and raises OnLowStock
// once per product per observed stock level.
func (e *Engine) lowStockWatcher(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.lowStockInterval)
	defer ticker.Stop()

	alerted := make(map[string]int64)

	for {
		select {
		case <-e.stopChan:
			return

		case <-ticker.C:
			products, err := e.store.ListProducts(ctx, product.ListOpts{})
			if err != nil {
				e.logger.Error("low-stock scan failed", "error", err)
				continue
			}

			for _, p := range products {
				key := p.ID.String()
				if p.Stock > e.lowStockThreshold {
					delete(alerted, key)
					continue
				}
				if last, ok := alerted[key]; ok && last == p.Stock {
					continue
				}
				alerted[key] = p.Stock
				e.plugins.EmitLowStock(ctx, key, p.Name, p.Stock)
				e.logger.Warn("product low on stock",
					"product_id", key,
					"name", p.Name,
					"stock", p.Stock,
				)
			}
		}
	}
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// keyedMutex hands out one mutex per string key with reference counting
// so idle entries do not accumulate.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*lockEntry)}
}

// lock acquires the mutex for key and returns its release func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
