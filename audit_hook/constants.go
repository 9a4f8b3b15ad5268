package audithook

// Action constants for audit events.
const (
	// Customer actions
	ActionCustomerCreated = "customer.created"

	// Catalog actions
	ActionProductAdded  = "product.added"
	ActionStockAdjusted = "stock.adjusted"
	ActionLowStock      = "stock.low"

	// Bill actions
	ActionBillOpened  = "bill.opened"
	ActionBillAmended = "bill.amended"
	ActionBillSettled = "bill.settled"

	// Payment actions
	ActionPaymentDeclined = "payment.declined"

	// Feedback actions
	ActionFeedbackRecorded = "feedback.recorded"
)

// Resource constants for audit events.
const (
	ResourceCustomer = "customer"
	ResourceProduct  = "product"
	ResourceBill     = "bill"
	ResourcePayment  = "payment"
	ResourceFeedback = "feedback"
)

// Category constants for audit events.
const (
	CategoryCustomer = "customer"
	CategoryCatalog  = "catalog"
	CategoryBilling  = "billing"
	CategoryPayment  = "payment"
	CategoryFeedback = "feedback"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
