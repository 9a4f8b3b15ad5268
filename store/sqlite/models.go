package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/nellaimart/billing/bill"
	"github.com/nellaimart/billing/customer"
	"github.com/nellaimart/billing/feedback"
	"github.com/nellaimart/billing/id"
	"github.com/nellaimart/billing/payment"
	"github.com/nellaimart/billing/product"
	"github.com/nellaimart/billing/types"
)

// ==================== Customer models ====================

type customerModel struct {
	grove.BaseModel `grove:"table:billing_customers"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	Email     string    `grove:"email"`
	Phone     string    `grove:"phone"`
	Address   string    `grove:"address"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toCustomerModel(c *customer.Customer) *customerModel {
	return &customerModel{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromCustomerModel(m *customerModel) (*customer.Customer, error) {
	customerID, err := id.ParseCustomerID(m.ID)
	if err != nil {
		return nil, err
	}

	return &customer.Customer{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:      customerID,
		Name:    m.Name,
		Email:   m.Email,
		Phone:   m.Phone,
		Address: m.Address,
	}, nil
}

// ==================== Product models ====================

type productModel struct {
	grove.BaseModel `grove:"table:billing_products"`

	ID            string    `grove:"id,pk"`
	Name          string    `grove:"name"`
	PriceAmount   int64     `grove:"price_amount"`
	PriceCurrency string    `grove:"price_currency"`
	RateAmount    int64     `grove:"rate_amount"`
	RateCurrency  string    `grove:"rate_currency"`
	Stock         int64     `grove:"stock"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toProductModel(p *product.Product) *productModel {
	return &productModel{
		ID:            p.ID.String(),
		Name:          p.Name,
		PriceAmount:   p.Price.Amount,
		PriceCurrency: p.Price.Currency,
		RateAmount:    p.Rate.Amount,
		RateCurrency:  p.Rate.Currency,
		Stock:         p.Stock,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromProductModel(m *productModel) (*product.Product, error) {
	productID, err := id.ParseProductID(m.ID)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:    productID,
		Name:  m.Name,
		Price: types.Money{Amount: m.PriceAmount, Currency: m.PriceCurrency},
		Rate:  types.Money{Amount: m.RateAmount, Currency: m.RateCurrency},
		Stock: m.Stock,
	}, nil
}

// ==================== Bill models ====================

type billModel struct {
	grove.BaseModel `grove:"table:billing_bills"`

	ID            string     `grove:"id,pk"`
	CustomerID    string     `grove:"customer_id"`
	Status        string     `grove:"status"`
	PaymentMethod string     `grove:"payment_method"`
	TotalQuantity int64      `grove:"total_quantity"`
	TotalAmount   int64      `grove:"total_amount"`
	TotalCurrency string     `grove:"total_currency"`
	PaidAt        *time.Time `grove:"paid_at"`
	CreatedAt     time.Time  `grove:"created_at"`
	UpdatedAt     time.Time  `grove:"updated_at"`
}

func toBillModel(b *bill.Bill) *billModel {
	return &billModel{
		ID:            b.ID.String(),
		CustomerID:    b.CustomerID.String(),
		Status:        string(b.Status),
		PaymentMethod: string(b.PaymentMethod),
		TotalQuantity: b.TotalQuantity,
		TotalAmount:   b.TotalAmount.Amount,
		TotalCurrency: b.TotalAmount.Currency,
		PaidAt:        b.PaidAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func fromBillModel(m *billModel) (*bill.Bill, error) {
	billID, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := id.ParseCustomerID(m.CustomerID)
	if err != nil {
		return nil, err
	}

	return &bill.Bill{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            billID,
		CustomerID:    customerID,
		Status:        bill.Status(m.Status),
		PaymentMethod: payment.Kind(m.PaymentMethod),
		TotalQuantity: m.TotalQuantity,
		TotalAmount:   types.Money{Amount: m.TotalAmount, Currency: m.TotalCurrency},
		PaidAt:        m.PaidAt,
	}, nil
}

// ==================== Bill item models ====================

type itemModel struct {
	grove.BaseModel `grove:"table:billing_bill_items"`

	ID           string    `grove:"id,pk"`
	BillID       string    `grove:"bill_id"`
	ProductID    string    `grove:"product_id"`
	Quantity     int64     `grove:"quantity"`
	RateAmount   int64     `grove:"rate_amount"`
	RateCurrency string    `grove:"rate_currency"`
	CreatedAt    time.Time `grove:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"`
}

func toItemModel(it *bill.Item) *itemModel {
	return &itemModel{
		ID:           it.ID.String(),
		BillID:       it.BillID.String(),
		ProductID:    it.ProductID.String(),
		Quantity:     it.Quantity,
		RateAmount:   it.Rate.Amount,
		RateCurrency: it.Rate.Currency,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}

func fromItemModel(m *itemModel) (*bill.Item, error) {
	itemID, err := id.ParseItemID(m.ID)
	if err != nil {
		return nil, err
	}
	billID, err := id.ParseBillID(m.BillID)
	if err != nil {
		return nil, err
	}
	productID, err := id.ParseProductID(m.ProductID)
	if err != nil {
		return nil, err
	}

	return &bill.Item{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        itemID,
		BillID:    billID,
		ProductID: productID,
		Quantity:  m.Quantity,
		Rate:      types.Money{Amount: m.RateAmount, Currency: m.RateCurrency},
	}, nil
}

// ==================== Receipt models ====================

type receiptModel struct {
	grove.BaseModel `grove:"table:billing_receipts"`

	ID               string    `grove:"id,pk"`
	BillID           string    `grove:"bill_id"`
	CustomerID       string    `grove:"customer_id"`
	Method           string    `grove:"method"`
	Status           string    `grove:"status"`
	TotalAmount      int64     `grove:"total_amount"`
	TotalCurrency    string    `grove:"total_currency"`
	TenderedAmount   int64     `grove:"tendered_amount"`
	TenderedCurrency string    `grove:"tendered_currency"`
	ChangeAmount     int64     `grove:"change_amount"`
	ChangeCurrency   string    `grove:"change_currency"`
	Reference        string    `grove:"reference"`
	SettledAt        time.Time `grove:"settled_at"`
}

func toReceiptModel(r *payment.Receipt) *receiptModel {
	return &receiptModel{
		ID:               r.ID.String(),
		BillID:           r.BillID.String(),
		CustomerID:       r.CustomerID.String(),
		Method:           string(r.Method),
		Status:           string(r.Status),
		TotalAmount:      r.Total.Amount,
		TotalCurrency:    r.Total.Currency,
		TenderedAmount:   r.Tendered.Amount,
		TenderedCurrency: r.Tendered.Currency,
		ChangeAmount:     r.Change.Amount,
		ChangeCurrency:   r.Change.Currency,
		Reference:        r.Reference,
		SettledAt:        r.SettledAt,
	}
}

func fromReceiptModel(m *receiptModel) (*payment.Receipt, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	billID, err := id.ParseBillID(m.BillID)
	if err != nil {
		return nil, err
	}
	customerID, err := id.ParseCustomerID(m.CustomerID)
	if err != nil {
		return nil, err
	}

	return &payment.Receipt{
		ID:         paymentID,
		BillID:     billID,
		CustomerID: customerID,
		Method:     payment.Kind(m.Method),
		Status:     payment.Status(m.Status),
		Total:      types.Money{Amount: m.TotalAmount, Currency: m.TotalCurrency},
		Tendered:   types.Money{Amount: m.TenderedAmount, Currency: m.TenderedCurrency},
		Change:     types.Money{Amount: m.ChangeAmount, Currency: m.ChangeCurrency},
		Reference:  m.Reference,
		SettledAt:  m.SettledAt,
	}, nil
}

// ==================== Feedback models ====================

type feedbackModel struct {
	grove.BaseModel `grove:"table:billing_feedback"`

	ID         string    `grove:"id,pk"`
	CustomerID string    `grove:"customer_id"`
	Rating     int       `grove:"rating"`
	Comments   string    `grove:"comments"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toFeedbackModel(f *feedback.Feedback) *feedbackModel {
	return &feedbackModel{
		ID:         f.ID.String(),
		CustomerID: f.CustomerID.String(),
		Rating:     f.Rating,
		Comments:   f.Comments,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func fromFeedbackModel(m *feedbackModel) (*feedback.Feedback, error) {
	feedbackID, err := id.ParseFeedbackID(m.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := id.ParseCustomerID(m.CustomerID)
	if err != nil {
		return nil, err
	}

	return &feedback.Feedback{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         feedbackID,
		CustomerID: customerID,
		Rating:     m.Rating,
		Comments:   m.Comments,
	}, nil
}
