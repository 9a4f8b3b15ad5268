package extension

import "time"

// Config holds the billing extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.billing" or "billing" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for billing routes (default: "/billing").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Currency is the shop currency code for catalog prices and bill
	// totals (default: "inr").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// LowStockThreshold turns on the low-stock watcher when positive:
	// products at or below this level raise alerts (default: off).
	LowStockThreshold int64 `json:"low_stock_threshold" mapstructure:"low_stock_threshold" yaml:"low_stock_threshold"`

	// LowStockInterval is how frequently the low-stock watcher scans
	// the catalog (default: 1m).
	LowStockInterval time.Duration `json:"low_stock_interval" mapstructure:"low_stock_interval" yaml:"low_stock_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Currency:         "inr",
		LowStockInterval: time.Minute,
	}
}
