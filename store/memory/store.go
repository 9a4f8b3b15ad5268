// Package memory provides an in-memory Store for tests and small shops.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nellaimart/billing"
	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/feedback"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/product"
)

type Store struct {
	mu sync.RWMutex

	// Customer storage
	customers map[string]*customer.Customer

	// Product storage
	products map[string]*product.Product

	// Bill storage
	bills map[string]*bill.Bill
	items map[string]*bill.Item // keyed billID + "/" + productID

	// Receipt storage, keyed by bill
	receipts map[string]*payment.Receipt

	// Feedback storage
	feedback map[string][]*feedback.Feedback
}

func New() *Store {
	return &Store{
		customers: make(map[string]*customer.Customer),
		products:  make(map[string]*product.Product),
		bills:     make(map[string]*bill.Bill),
		items:     make(map[string]*bill.Item),
		receipts:  make(map[string]*payment.Receipt),
		feedback:  make(map[string][]*feedback.Feedback),
	}
}

func itemKey(billID id.BillID, productID id.ProductID) string {
	return billID.String() + "/" + productID.String()
}

// clone detaches a row from live store state. The SQL and document
// backends hand out per-read snapshots; the memory store must read and
// write with the same semantics or callers see uncommitted mutations.
func clone[T any](v *T) *T {
	cp := *v
	return &cp
}

// Customer Store implementation
func (s *Store) CreateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	for _, existing := range s.customers {
		if existing.Email == c.Email {
			return billing.ErrEmailExists
		}
	}
	s.customers[c.ID.String()] = clone(c)
	return nil
}

func (s *Store) GetCustomer(_ context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.customers[customerID.String()]; ok {
		return clone(c), nil
	}
	return nil, billing.ErrCustomerNotFound
}

func (s *Store) GetCustomerByEmail(_ context.Context, email string) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.Email == email {
			return clone(c), nil
		}
	}
	return nil, billing.ErrCustomerNotFound
}

func (s *Store) ListCustomers(_ context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*customer.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		result = append(result, clone(c))
	}
	// TypeIDs are K-sortable, so ID order is creation order.
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return window(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.ID.String()]; !exists {
		return billing.ErrCustomerNotFound
	}
	s.customers[c.ID.String()] = clone(c)
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, customerID id.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.customers, customerID.String())
	return nil
}

// Product Store implementation
func (s *Store) CreateProduct(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	for _, existing := range s.products {
		if existing.Name == p.Name {
			return billing.ErrProductExists
		}
	}
	s.products[p.ID.String()] = clone(p)
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID id.ProductID) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.products[productID.String()]; ok {
		return clone(p), nil
	}
	return nil, billing.ErrProductNotFound
}

func (s *Store) GetProductByName(_ context.Context, name string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Name == name {
			return clone(p), nil
		}
	}
	return nil, billing.ErrProductNotFound
}

func (s *Store) ListProducts(_ context.Context, opts product.ListOpts) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*product.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, clone(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return window(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateProduct(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID.String()]; !exists {
		return billing.ErrProductNotFound
	}
	s.products[p.ID.String()] = clone(p)
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, productID.String())
	return nil
}

func (s *Store) AdjustStock(_ context.Context, productID id.ProductID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID.String()]
	if !ok {
		return billing.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return billing.ErrInsufficientStock
	}
	p.Stock += delta
	p.Touch()
	return nil
}

// Bill Store implementation
func (s *Store) CreateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[b.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	s.bills[b.ID.String()] = clone(b)
	return nil
}

func (s *Store) GetBill(_ context.Context, billID id.BillID) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.bills[billID.String()]; ok {
		return clone(b), nil
	}
	return nil, billing.ErrBillNotFound
}

func (s *Store) GetBillForCustomer(_ context.Context, billID id.BillID, customerID id.CustomerID) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// A wrong-customer lookup is indistinguishable from a missing bill.
	if b, ok := s.bills[billID.String()]; ok && b.CustomerID.String() == customerID.String() {
		return clone(b), nil
	}
	return nil, billing.ErrBillNotFound
}

func (s *Store) ListBillsByCustomer(_ context.Context, customerID id.CustomerID, opts bill.ListOpts) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if b.CustomerID.String() == customerID.String() {
			if opts.Status == "" || b.Status == opts.Status {
				result = append(result, clone(b))
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return window(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[b.ID.String()]; !exists {
		return billing.ErrBillNotFound
	}
	s.bills[b.ID.String()] = clone(b)
	return nil
}

// Bill item Store implementation
func (s *Store) PutItem(_ context.Context, it *bill.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[itemKey(it.BillID, it.ProductID)] = clone(it)
	return nil
}

func (s *Store) GetItem(_ context.Context, billID id.BillID, productID id.ProductID) (*bill.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if it, ok := s.items[itemKey(billID, productID)]; ok {
		return clone(it), nil
	}
	return nil, billing.ErrItemNotFound
}

func (s *Store) DeleteItem(_ context.Context, billID id.BillID, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey(billID, productID)
	if _, ok := s.items[key]; !ok {
		return billing.ErrItemNotFound
	}
	delete(s.items, key)
	return nil
}

func (s *Store) ListItems(_ context.Context, billID id.BillID) ([]*bill.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Item, 0)
	for _, it := range s.items {
		if it.BillID.String() == billID.String() {
			result = append(result, clone(it))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) ListItemsByProduct(_ context.Context, productID id.ProductID) ([]*bill.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Item, 0)
	for _, it := range s.items {
		if it.ProductID.String() == productID.String() {
			result = append(result, clone(it))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) ReservedQuantity(_ context.Context, productID id.ProductID, excludeBill id.BillID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, it := range s.items {
		if it.ProductID.String() != productID.String() {
			continue
		}
		if it.BillID.String() == excludeBill.String() {
			continue
		}
		if b, ok := s.bills[it.BillID.String()]; ok && b.Status == bill.StatusOpen {
			total += it.Quantity
		}
	}
	return total, nil
}

// Receipt Store implementation
func (s *Store) CreateReceipt(_ context.Context, r *payment.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts[r.BillID.String()] = clone(r)
	return nil
}

func (s *Store) GetReceiptByBill(_ context.Context, billID id.BillID) (*payment.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.receipts[billID.String()]; ok {
		return clone(r), nil
	}
	return nil, billing.ErrReceiptNotFound
}

// Feedback Store implementation
func (s *Store) CreateFeedback(_ context.Context, f *feedback.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := f.CustomerID.String()
	s.feedback[key] = append(s.feedback[key], clone(f))
	return nil
}

func (s *Store) ListFeedbackByCustomer(_ context.Context, customerID id.CustomerID) ([]*feedback.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.feedback[customerID.String()]
	result := make([]*feedback.Feedback, 0, len(entries))
	for _, f := range entries {
		result = append(result, clone(f))
	}
	return result, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// window applies offset/limit to a sorted result set.
func window[T any](result []T, offset, limit int) []T {
	start := offset
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end]
}
