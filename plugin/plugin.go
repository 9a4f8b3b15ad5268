// Package plugin provides an extensible plugin system for the billing engine.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated is called when a new customer is registered.
type OnCustomerCreated interface {
	Plugin
	OnCustomerCreated(ctx context.Context, cust interface{}) error
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnProductAdded is called when a product enters the catalog.
type OnProductAdded interface {
	Plugin
	OnProductAdded(ctx context.Context, prod interface{}) error
}

// OnStockAdjusted is called after a restock or settlement decrement.
type OnStockAdjusted interface {
	Plugin
	OnStockAdjusted(ctx context.Context, productID string, delta, newStock int64) error
}

// OnLowStock is called when the watcher finds a product at or below
// the configured threshold.
type OnLowStock interface {
	Plugin
	OnLowStock(ctx context.Context, productID, name string, stock int64) error
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillOpened is called when a new bill is opened.
type OnBillOpened interface {
	Plugin
	OnBillOpened(ctx context.Context, b interface{}) error
}

// OnBillAmended is called after any line item mutation.
type OnBillAmended interface {
	Plugin
	OnBillAmended(ctx context.Context, b interface{}) error
}

// OnBillSettled is called when a bill is paid.
type OnBillSettled interface {
	Plugin
	OnBillSettled(ctx context.Context, b interface{}, receipt interface{}) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentDeclined is called when an authorization or settlement fails.
// The bill remains open.
type OnPaymentDeclined interface {
	Plugin
	OnPaymentDeclined(ctx context.Context, billID string, err error) error
}

// ──────────────────────────────────────────────────
// Feedback hooks
// ──────────────────────────────────────────────────

// OnFeedbackRecorded is called when a customer leaves feedback.
type OnFeedbackRecorded interface {
	Plugin
	OnFeedbackRecorded(ctx context.Context, fb interface{}) error
}

// ──────────────────────────────────────────────────
// Receipt formatters
// ──────────────────────────────────────────────────

// ReceiptFormatter formats settled receipts for export.
type ReceiptFormatter interface {
	Plugin
	Format() string                                                       // "text", "html", "csv", etc.
	Render(ctx context.Context, receipt interface{}, w interface{}) error // w is io.Writer
}
