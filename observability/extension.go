// Package observability provides a metrics extension for the billing engine
// that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/nellaimart/billing/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnCustomerCreated  = (*MetricsExtension)(nil)
	_ plugin.OnProductAdded     = (*MetricsExtension)(nil)
	_ plugin.OnStockAdjusted    = (*MetricsExtension)(nil)
	_ plugin.OnLowStock         = (*MetricsExtension)(nil)
	_ plugin.OnBillOpened       = (*MetricsExtension)(nil)
	_ plugin.OnBillAmended      = (*MetricsExtension)(nil)
	_ plugin.OnBillSettled      = (*MetricsExtension)(nil)
	_ plugin.OnPaymentDeclined  = (*MetricsExtension)(nil)
	_ plugin.OnFeedbackRecorded = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a billing plugin to automatically track shop metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Customer metrics
	CustomerCreated Counter

	// Catalog metrics
	ProductAdded    Counter
	StockAdjusted   Counter
	LowStockAlerts  Counter
	StockAdjustSize Histogram

	// Bill metrics
	BillOpened  Counter
	BillAmended Counter
	BillSettled Counter
	BillTotal   Histogram

	// Payment metrics
	PaymentDeclined Counter

	// Feedback metrics
	FeedbackRecorded Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Customer metrics
		CustomerCreated: factory.Counter("billing.customer.created"),

		// Catalog metrics
		ProductAdded:    factory.Counter("billing.product.added"),
		StockAdjusted:   factory.Counter("billing.stock.adjusted"),
		LowStockAlerts:  factory.Counter("billing.stock.low_alerts"),
		StockAdjustSize: factory.Histogram("billing.stock.adjust_size"),

		// Bill metrics
		BillOpened:  factory.Counter("billing.bill.opened"),
		BillAmended: factory.Counter("billing.bill.amended"),
		BillSettled: factory.Counter("billing.bill.settled"),
		BillTotal:   factory.Histogram("billing.bill.total_amount"),

		// Payment metrics
		PaymentDeclined: factory.Counter("billing.payment.declined"),

		// Feedback metrics
		FeedbackRecorded: factory.Counter("billing.feedback.recorded"),

		// Error metrics
		StoreErrors:  factory.Counter("billing.store.errors"),
		PluginErrors: factory.Counter("billing.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated implements plugin.OnCustomerCreated.
func (m *MetricsExtension) OnCustomerCreated(_ context.Context, _ interface{}) error {
	m.CustomerCreated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnProductAdded implements plugin.OnProductAdded.
func (m *MetricsExtension) OnProductAdded(_ context.Context, _ interface{}) error {
	m.ProductAdded.Inc()
	return nil
}

// OnStockAdjusted implements plugin.OnStockAdjusted.
func (m *MetricsExtension) OnStockAdjusted(_ context.Context, _ string, delta, _ int64) error {
	m.StockAdjusted.Inc()
	m.StockAdjustSize.Observe(float64(delta))
	return nil
}

// OnLowStock implements plugin.OnLowStock.
func (m *MetricsExtension) OnLowStock(_ context.Context, _, _ string, _ int64) error {
	m.LowStockAlerts.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillOpened implements plugin.OnBillOpened.
func (m *MetricsExtension) OnBillOpened(_ context.Context, _ interface{}) error {
	m.BillOpened.Inc()
	return nil
}

// OnBillAmended implements plugin.OnBillAmended.
func (m *MetricsExtension) OnBillAmended(_ context.Context, _ interface{}) error {
	m.BillAmended.Inc()
	return nil
}

// OnBillSettled implements plugin.OnBillSettled.
func (m *MetricsExtension) OnBillSettled(_ context.Context, _ interface{}, _ interface{}) error {
	m.BillSettled.Inc()
	// Would need to inspect the receipt to observe the settled amount
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentDeclined implements plugin.OnPaymentDeclined.
func (m *MetricsExtension) OnPaymentDeclined(_ context.Context, _ string, _ error) error {
	m.PaymentDeclined.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Feedback hooks
// ──────────────────────────────────────────────────

// OnFeedbackRecorded implements plugin.OnFeedbackRecorded.
func (m *MetricsExtension) OnFeedbackRecorded(_ context.Context, _ interface{}) error {
	m.FeedbackRecorded.Inc()
	return nil
}
