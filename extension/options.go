package extension

import (
	"time"

	billing "github.com/nellaimart/billing"
	"github.com/nellaimart/billing/plugin"
	"github.com/nellaimart/billing/store"
)

// Option configures the billing Forge extension.
type Option func(*Extension)

// WithStore sets the store for the billing engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a billing.Option through to the underlying engine.
func WithEngineOption(opt billing.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a billing plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, billing.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for billing routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithCurrency sets the shop currency code for catalog prices and bill totals.
func WithCurrency(code string) Option {
	return func(e *Extension) { e.config.Currency = code }
}

// WithLowStockThreshold turns on the low-stock watcher: products at or
// below this level raise alerts.
func WithLowStockThreshold(n int64) Option {
	return func(e *Extension) { e.config.LowStockThreshold = n }
}

// WithLowStockInterval sets how frequently the low-stock watcher scans the catalog.
func WithLowStockInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.LowStockInterval = d }
}
