package extension

import (
	billing "github.com/xraph/billing"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/psp"
	"github.com/xraph/billing/store"
)

// Option configures the Billing Forge extension.
type Option func(*Extension)

// WithStore sets the store for the billing engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithBillingOption passes a billing.Option through to the underlying engine.
func WithBillingOption(opt billing.Option) Option {
	return func(e *Extension) {
		e.billingOpts = append(e.billingOpts, opt)
	}
}

// WithPlugin registers a billing plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.billingOpts = append(e.billingOpts, billing.WithPlugin(p))
	}
}

// WithPSPRegistry sets the payment gateway registry for the engine.
func WithPSPRegistry(r *psp.Registry) Option {
	return func(e *Extension) {
		e.billingOpts = append(e.billingOpts, billing.WithPSPRegistry(r))
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

// WithDueDays sets the default invoice due-date offset in days.
func WithDueDays(days int) Option {
	return func(e *Extension) { e.config.DueDays = days }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
