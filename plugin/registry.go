package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onCustomerCreated  []OnCustomerCreated
	onProductAdded     []OnProductAdded
	onStockAdjusted    []OnStockAdjusted
	onLowStock         []OnLowStock
	onBillOpened       []OnBillOpened
	onBillAmended      []OnBillAmended
	onBillSettled      []OnBillSettled
	onPaymentDeclined  []OnPaymentDeclined
	onFeedbackRecorded []OnFeedbackRecorded
	receiptFormatters  map[string]ReceiptFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:            slog.Default(),
		receiptFormatters: make(map[string]ReceiptFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCustomerCreated); ok {
		r.onCustomerCreated = append(r.onCustomerCreated, v)
	}
	if v, ok := p.(OnProductAdded); ok {
		r.onProductAdded = append(r.onProductAdded, v)
	}
	if v, ok := p.(OnStockAdjusted); ok {
		r.onStockAdjusted = append(r.onStockAdjusted, v)
	}
	if v, ok := p.(OnLowStock); ok {
		r.onLowStock = append(r.onLowStock, v)
	}
	if v, ok := p.(OnBillOpened); ok {
		r.onBillOpened = append(r.onBillOpened, v)
	}
	if v, ok := p.(OnBillAmended); ok {
		r.onBillAmended = append(r.onBillAmended, v)
	}
	if v, ok := p.(OnBillSettled); ok {
		r.onBillSettled = append(r.onBillSettled, v)
	}
	if v, ok := p.(OnPaymentDeclined); ok {
		r.onPaymentDeclined = append(r.onPaymentDeclined, v)
	}
	if v, ok := p.(OnFeedbackRecorded); ok {
		r.onFeedbackRecorded = append(r.onFeedbackRecorded, v)
	}
	if v, ok := p.(ReceiptFormatter); ok {
		r.receiptFormatters[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCustomerCreated)(nil)).Elem(), "OnCustomerCreated")
	checkInterface(reflect.TypeOf((*OnProductAdded)(nil)).Elem(), "OnProductAdded")
	checkInterface(reflect.TypeOf((*OnStockAdjusted)(nil)).Elem(), "OnStockAdjusted")
	checkInterface(reflect.TypeOf((*OnLowStock)(nil)).Elem(), "OnLowStock")
	checkInterface(reflect.TypeOf((*OnBillOpened)(nil)).Elem(), "OnBillOpened")
	checkInterface(reflect.TypeOf((*OnBillAmended)(nil)).Elem(), "OnBillAmended")
	checkInterface(reflect.TypeOf((*OnBillSettled)(nil)).Elem(), "OnBillSettled")
	checkInterface(reflect.TypeOf((*OnPaymentDeclined)(nil)).Elem(), "OnPaymentDeclined")
	checkInterface(reflect.TypeOf((*OnFeedbackRecorded)(nil)).Elem(), "OnFeedbackRecorded")
	checkInterface(reflect.TypeOf((*ReceiptFormatter)(nil)).Elem(), "ReceiptFormatter")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// GetReceiptFormatter returns a receipt formatter by format name.
func (r *Registry) GetReceiptFormatter(format string) ReceiptFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.receiptFormatters[format]
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerCreated emits a customer created event.
func (r *Registry) EmitCustomerCreated(ctx context.Context, cust interface{}) {
	r.mu.RLock()
	plugins := r.onCustomerCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerCreated(ctx, cust)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProductAdded emits a product added event.
func (r *Registry) EmitProductAdded(ctx context.Context, prod interface{}) {
	r.mu.RLock()
	plugins := r.onProductAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProductAdded(ctx, prod)
		}); err != nil {
			r.logger.Warn("plugin OnProductAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitStockAdjusted emits a stock adjusted event.
func (r *Registry) EmitStockAdjusted(ctx context.Context, productID string, delta, newStock int64) {
	r.mu.RLock()
	plugins := r.onStockAdjusted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStockAdjusted(ctx, productID, delta, newStock)
		}); err != nil {
			r.logger.Warn("plugin OnStockAdjusted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLowStock emits a low stock event.
func (r *Registry) EmitLowStock(ctx context.Context, productID, name string, stock int64) {
	r.mu.RLock()
	plugins := r.onLowStock
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLowStock(ctx, productID, name, stock)
		}); err != nil {
			r.logger.Warn("plugin OnLowStock failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillOpened emits a bill opened event.
func (r *Registry) EmitBillOpened(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillOpened
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillOpened(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillOpened failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillAmended emits a bill amended event.
func (r *Registry) EmitBillAmended(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillAmended
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillAmended(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillAmended failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillSettled emits a bill settled event.
func (r *Registry) EmitBillSettled(ctx context.Context, b interface{}, receipt interface{}) {
	r.mu.RLock()
	plugins := r.onBillSettled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillSettled(ctx, b, receipt)
		}); err != nil {
			r.logger.Warn("plugin OnBillSettled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentDeclined emits a payment declined event.
func (r *Registry) EmitPaymentDeclined(ctx context.Context, billID string, declineErr error) {
	r.mu.RLock()
	plugins := r.onPaymentDeclined
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentDeclined(ctx, billID, declineErr)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentDeclined failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeedbackRecorded emits a feedback recorded event.
func (r *Registry) EmitFeedbackRecorded(ctx context.Context, fb interface{}) {
	r.mu.RLock()
	plugins := r.onFeedbackRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeedbackRecorded(ctx, fb)
		}); err != nil {
			r.logger.Warn("plugin OnFeedbackRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the billing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
