package psp

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/billing/types"
)

// Registry maps URI schemes to gateway implementations. It is an
// explicit object injected into the engine rather than process-global
// state, so tests can build isolated registries and multiple providers
// can coexist. Registration and unregistration are safe at runtime.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]Gateway)}
}

// Register installs a gateway for the given scheme, replacing any
// previous registration.
func (r *Registry) Register(scheme string, gw Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[scheme] = gw
}

// Unregister removes the gateway for the given scheme. It returns
// ErrNotRegistered if no gateway is installed.
func (r *Registry) Unregister(scheme string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gateways[scheme]; !ok {
		return fmt.Errorf("%w: %q", ErrNotRegistered, scheme)
	}
	delete(r.gateways, scheme)
	return nil
}

// Gateway returns the gateway registered for the given scheme.
func (r *Registry) Gateway(scheme string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gw, ok := r.gateways[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, scheme)
	}
	return gw, nil
}

// ChargeCard resolves the card reference's scheme and charges the card
// through the matching gateway. The returned payment reference carries
// the same scheme. Non-positive amounts fail before any gateway call.
func (r *Registry) ChargeCard(ctx context.Context, cardURI string, amount types.Money, clientRef string) (bool, string, error) {
	if !amount.IsPositive() {
		return false, "", fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}
	scheme, cardPath, err := ParseURI(cardURI)
	if err != nil {
		return false, "", err
	}
	gw, err := r.Gateway(scheme)
	if err != nil {
		return false, "", err
	}
	success, paymentPath, err := gw.ChargeCard(ctx, cardPath, amount, clientRef)
	if err != nil {
		return false, "", err
	}
	return success, BuildURI(scheme, paymentPath), nil
}

// RefundPayment resolves the payment reference's scheme and refunds
// through the matching gateway. Non-positive amounts fail before any
// gateway call.
func (r *Registry) RefundPayment(ctx context.Context, paymentURI string, amount types.Money, clientRef string) (bool, string, error) {
	if !amount.IsPositive() {
		return false, "", fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}
	scheme, paymentPath, err := ParseURI(paymentURI)
	if err != nil {
		return false, "", err
	}
	gw, err := r.Gateway(scheme)
	if err != nil {
		return false, "", err
	}
	success, refundPath, err := gw.RefundPayment(ctx, paymentPath, amount, clientRef)
	if err != nil {
		return false, "", err
	}
	return success, BuildURI(scheme, refundPath), nil
}
