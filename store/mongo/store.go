package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	billing "github.com/nellaimart/billing"
	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/feedback"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/product"
	billingstore "github.com/nellaimart/billing/store"
)

// Collection name constants.
const (
	colCustomers = "billing_customers"
	colProducts  = "billing_products"
	colBills     = "billing_bills"
	colItems     = "billing_bill_items"
	colReceipts  = "billing_receipts"
	colFeedback  = "billing_feedback"
)

// compile-time interface check
var _ billingstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all billing collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("billing/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Customer Store ====================

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	var existing customerModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"email": c.Email}).
		Scan(ctx)
	if err == nil {
		return billing.ErrEmailExists
	}
	if !isNoDocuments(err) {
		return fmt.Errorf("billing/mongo: check customer email: %w", err)
	}

	m := toCustomerModel(c)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: create customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	var m customerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": customerID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get customer: %w", err)
	}
	return fromCustomerModel(&m)
}

func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var m customerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": email}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get customer by email: %w", err)
	}
	return fromCustomerModel(&m)
}

func (s *Store) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	var models []customerModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("billing/mongo: list customers: %w", err)
	}

	result := make([]*customer.Customer, len(models))
	for i := range models {
		c, err := fromCustomerModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	m := toCustomerModel(c)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: update customer: %w", err)
	}
	if res.MatchedCount() == 0 {
		return billing.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, customerID id.CustomerID) error {
	_, err := s.mdb.NewDelete((*customerModel)(nil)).
		Filter(bson.M{"_id": customerID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: delete customer: %w", err)
	}
	return nil
}

// ==================== Product Store ====================

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	var existing productModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"name": p.Name}).
		Scan(ctx)
	if err == nil {
		return billing.ErrProductExists
	}
	if !isNoDocuments(err) {
		return fmt.Errorf("billing/mongo: check product name: %w", err)
	}

	m := toProductModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: create product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	var m productModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": productID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrProductNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get product: %w", err)
	}
	return fromProductModel(&m)
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*product.Product, error) {
	var m productModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrProductNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get product by name: %w", err)
	}
	return fromProductModel(&m)
}

func (s *Store) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	var models []productModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("billing/mongo: list products: %w", err)
	}

	result := make([]*product.Product, len(models))
	for i := range models {
		p, err := fromProductModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	m := toProductModel(p)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: update product: %w", err)
	}
	if res.MatchedCount() == 0 {
		return billing.ErrProductNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	_, err := s.mdb.NewDelete((*productModel)(nil)).
		Filter(bson.M{"_id": productID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: delete product: %w", err)
	}
	return nil
}

func (s *Store) AdjustStock(ctx context.Context, productID id.ProductID, delta int64) error {
	// The filter guard makes the adjustment atomic: the document only
	// matches while the resulting stock stays non-negative.
	filter := bson.M{"_id": productID.String()}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}

	res, err := s.mdb.Collection(colProducts).UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updated_at": now()},
	})
	if err != nil {
		return fmt.Errorf("billing/mongo: adjust stock: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetProduct(ctx, productID); err != nil {
			return err
		}
		return billing.ErrInsufficientStock
	}
	return nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	m := toBillModel(b)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: create bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": billID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrBillNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get bill: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) GetBillForCustomer(ctx context.Context, billID id.BillID, customerID id.CustomerID) (*bill.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": billID.String(), "customer_id": customerID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrBillNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get bill for customer: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) ListBillsByCustomer(ctx context.Context, customerID id.CustomerID, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel

	filter := bson.M{"customer_id": customerID.String()}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("billing/mongo: list bills: %w", err)
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	m := toBillModel(b)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: update bill: %w", err)
	}
	if res.MatchedCount() == 0 {
		return billing.ErrBillNotFound
	}
	return nil
}

// ==================== Bill item Store ====================

func (s *Store) PutItem(ctx context.Context, it *bill.Item) error {
	m := toItemModel(it)
	m.UpdatedAt = now()

	opts := options.Replace().SetUpsert(true)
	_, err := s.mdb.Collection(colItems).ReplaceOne(ctx,
		bson.M{"bill_id": m.BillID, "product_id": m.ProductID}, m, opts)
	if err != nil {
		return fmt.Errorf("billing/mongo: put item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, billID id.BillID, productID id.ProductID) (*bill.Item, error) {
	var m itemModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"bill_id": billID.String(), "product_id": productID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrItemNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get item: %w", err)
	}
	return fromItemModel(&m)
}

func (s *Store) DeleteItem(ctx context.Context, billID id.BillID, productID id.ProductID) error {
	res, err := s.mdb.NewDelete((*itemModel)(nil)).
		Filter(bson.M{"bill_id": billID.String(), "product_id": productID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: delete item: %w", err)
	}
	if res.DeletedCount() == 0 {
		return billing.ErrItemNotFound
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context, billID id.BillID) ([]*bill.Item, error) {
	var models []itemModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"bill_id": billID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("billing/mongo: list items: %w", err)
	}

	result := make([]*bill.Item, len(models))
	for i := range models {
		it, err := fromItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = it
	}
	return result, nil
}

func (s *Store) ListItemsByProduct(ctx context.Context, productID id.ProductID) ([]*bill.Item, error) {
	var models []itemModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"product_id": productID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("billing/mongo: list items by product: %w", err)
	}

	result := make([]*bill.Item, len(models))
	for i := range models {
		it, err := fromItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = it
	}
	return result, nil
}

func (s *Store) ReservedQuantity(ctx context.Context, productID id.ProductID, excludeBill id.BillID) (int64, error) {
	var items []itemModel
	err := s.mdb.NewFind(&items).
		Filter(bson.M{
			"product_id": productID.String(),
			"bill_id":    bson.M{"$ne": excludeBill.String()},
		}).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("billing/mongo: reserved quantity: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	billIDs := make([]string, len(items))
	for i := range items {
		billIDs[i] = items[i].BillID
	}

	var openBills []billModel
	err = s.mdb.NewFind(&openBills).
		Filter(bson.M{
			"_id":    bson.M{"$in": billIDs},
			"status": string(bill.StatusOpen),
		}).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("billing/mongo: reserved quantity: %w", err)
	}

	open := make(map[string]bool, len(openBills))
	for i := range openBills {
		open[openBills[i].ID] = true
	}

	var total int64
	for i := range items {
		if open[items[i].BillID] {
			total += items[i].Quantity
		}
	}
	return total, nil
}

// ==================== Receipt Store ====================

func (s *Store) CreateReceipt(ctx context.Context, r *payment.Receipt) error {
	m := toReceiptModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: create receipt: %w", err)
	}
	return nil
}

func (s *Store) GetReceiptByBill(ctx context.Context, billID id.BillID) (*payment.Receipt, error) {
	var m receiptModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"bill_id": billID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, billing.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("billing/mongo: get receipt: %w", err)
	}
	return fromReceiptModel(&m)
}

// ==================== Feedback Store ====================

func (s *Store) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	m := toFeedbackModel(f)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: create feedback: %w", err)
	}
	return nil
}

func (s *Store) ListFeedbackByCustomer(ctx context.Context, customerID id.CustomerID) ([]*feedback.Feedback, error) {
	var models []feedbackModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"customer_id": customerID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("billing/mongo: list feedback: %w", err)
	}

	result := make([]*feedback.Feedback, len(models))
	for i := range models {
		f, err := fromFeedbackModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = f
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all billing collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCustomers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		colProducts: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		colBills: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colItems: {
			{
				Keys:    bson.D{{Key: "bill_id", Value: 1}, {Key: "product_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "product_id", Value: 1}}},
		},
		colReceipts: {
			{
				Keys:    bson.D{{Key: "bill_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		},
		colFeedback: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
}
