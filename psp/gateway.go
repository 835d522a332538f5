// Package psp abstracts the payment service providers that move money
// outside the ledger.
//
// Provider-side objects (cards, payments, refunds) are referenced by a
// URI of the form "scheme:path". The scheme selects the Gateway
// implementation through a Registry; the path is opaque to the core and
// meaningful only to that provider.
package psp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/billing/types"
)

var (
	// ErrNotRegistered indicates no gateway is registered for a scheme.
	// This is a configuration error and is propagated to the caller.
	ErrNotRegistered = errors.New("psp: no gateway registered for scheme")

	// ErrNonPositiveAmount rejects a charge or refund of zero or
	// negative money before any gateway is invoked.
	ErrNonPositiveAmount = errors.New("psp: amount must be positive")

	// ErrMalformedURI indicates a provider reference without the
	// "scheme:path" shape.
	ErrMalformedURI = errors.New("psp: malformed reference")
)

// Gateway is the interface each payment provider implements. Paths are
// provider-local; the Registry handles the scheme prefix.
type Gateway interface {
	// ChargeCard charges the referenced card. The client reference
	// appears on the customer's card statement. It returns whether the
	// charge succeeded and the provider path of the payment object
	// created for the attempt.
	ChargeCard(ctx context.Context, cardPath string, amount types.Money, clientRef string) (bool, string, error)

	// RefundPayment refunds (part of) a prior payment. It returns
	// whether the refund succeeded and the provider path of the refund
	// object.
	RefundPayment(ctx context.Context, paymentPath string, amount types.Money, clientRef string) (bool, string, error)
}

// ParseURI splits a provider reference into scheme and path.
func ParseURI(uri string) (scheme, path string, err error) {
	scheme, path, ok := strings.Cut(uri, ":")
	if !ok || scheme == "" || path == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedURI, uri)
	}
	return scheme, path, nil
}

// BuildURI joins a scheme and a provider path into a reference.
func BuildURI(scheme, path string) string {
	return scheme + ":" + path
}
