package billing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/psp"
	"github.com/xraph/billing/store"
)

// Billing is the main billing engine. It owns the ledger arithmetic and
// the invoicing, fund-matching, card-payment, and delinquency
// workflows, delegating persistence to a store.Store and external money
// movement to a psp.Registry.
type Billing struct {
	store   store.Store
	psps    *psp.Registry
	plugins *plugin.Registry
	logger  *slog.Logger

	// invoiceLocks serializes the read-modify-write sequences that
	// mutate one invoice's status or assigned funds.
	invoiceLocks keyedMutex
}

// New creates a new Billing instance.
func New(s store.Store, opts ...Option) *Billing {
	b := &Billing{
		store:   s,
		psps:    psp.NewRegistry(),
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Option configures a Billing instance.
type Option func(*Billing)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Billing) {
		b.logger = logger
		b.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(b *Billing) {
		_ = b.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPSPRegistry injects a pre-populated payment gateway registry.
func WithPSPRegistry(r *psp.Registry) Option {
	return func(b *Billing) {
		b.psps = r
	}
}

// PSP returns the engine's payment gateway registry, for registering
// and unregistering providers at runtime.
func (b *Billing) PSP() *psp.Registry { return b.psps }

// Start migrates the store and initializes plugins.
func (b *Billing) Start(ctx context.Context) error {
	if err := b.store.Migrate(ctx); err != nil {
		return err
	}

	b.plugins.EmitInit(ctx, b)

	b.logger.Info("billing started")

	return nil
}

// Stop shuts down the engine.
func (b *Billing) Stop() error {
	b.plugins.EmitShutdown(context.Background())

	return b.store.Close()
}

// keyedMutex provides one mutex per string key. Keys are never removed;
// the set of hot invoices is small and short-lived relative to process
// lifetime.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
