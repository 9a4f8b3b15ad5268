// Package audithook bridges billing lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nellaimart/billing/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnCustomerCreated  = (*Extension)(nil)
	_ plugin.OnProductAdded     = (*Extension)(nil)
	_ plugin.OnStockAdjusted    = (*Extension)(nil)
	_ plugin.OnLowStock         = (*Extension)(nil)
	_ plugin.OnBillOpened       = (*Extension)(nil)
	_ plugin.OnBillAmended      = (*Extension)(nil)
	_ plugin.OnBillSettled      = (*Extension)(nil)
	_ plugin.OnPaymentDeclined  = (*Extension)(nil)
	_ plugin.OnFeedbackRecorded = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not import a
// concrete audit module — callers inject the backend at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges billing lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated implements plugin.OnCustomerCreated.
func (e *Extension) OnCustomerCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionCustomerCreated, SeverityInfo, OutcomeSuccess,
		ResourceCustomer, "", CategoryCustomer, nil,
		"event", "customer_created",
	)
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnProductAdded implements plugin.OnProductAdded.
func (e *Extension) OnProductAdded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionProductAdded, SeverityInfo, OutcomeSuccess,
		ResourceProduct, "", CategoryCatalog, nil,
		"event", "product_added",
	)
}

// OnStockAdjusted implements plugin.OnStockAdjusted.
func (e *Extension) OnStockAdjusted(ctx context.Context, productID string, delta, newStock int64) error {
	return e.record(ctx, ActionStockAdjusted, SeverityInfo, OutcomeSuccess,
		ResourceProduct, productID, CategoryCatalog, nil,
		"product_id", productID,
		"delta", delta,
		"stock", newStock,
	)
}

// OnLowStock implements plugin.OnLowStock.
func (e *Extension) OnLowStock(ctx context.Context, productID, name string, stock int64) error {
	return e.record(ctx, ActionLowStock, SeverityWarning, OutcomePartial,
		ResourceProduct, productID, CategoryCatalog, nil,
		"product_id", productID,
		"name", name,
		"stock", stock,
	)
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillOpened implements plugin.OnBillOpened.
func (e *Extension) OnBillOpened(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillOpened, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_opened",
	)
}

// OnBillAmended implements plugin.OnBillAmended.
func (e *Extension) OnBillAmended(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillAmended, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_amended",
	)
}

// OnBillSettled implements plugin.OnBillSettled.
func (e *Extension) OnBillSettled(ctx context.Context, _ interface{}, _ interface{}) error {
	return e.record(ctx, ActionBillSettled, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryPayment, nil,
		"event", "bill_settled",
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentDeclined implements plugin.OnPaymentDeclined.
func (e *Extension) OnPaymentDeclined(ctx context.Context, billID string, err error) error {
	return e.record(ctx, ActionPaymentDeclined, SeverityWarning, OutcomeFailure,
		ResourcePayment, billID, CategoryPayment, err,
		"bill_id", billID,
	)
}

// ──────────────────────────────────────────────────
// Feedback hooks
// ──────────────────────────────────────────────────

// OnFeedbackRecorded implements plugin.OnFeedbackRecorded.
func (e *Extension) OnFeedbackRecorded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionFeedbackRecorded, SeverityInfo, OutcomeSuccess,
		ResourceFeedback, "", CategoryFeedback, nil,
		"event", "feedback_recorded",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
