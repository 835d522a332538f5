package psp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/billing/psp"
	"github.com/xraph/billing/types"
)

// fakeGateway records the last call it received and answers with a
// canned result.
type fakeGateway struct {
	success   bool
	path      string
	err       error
	lastPath  string
	lastRef   string
	lastMoney types.Money
	calls     int
}

func (g *fakeGateway) ChargeCard(ctx context.Context, cardPath string, amount types.Money, clientRef string) (bool, string, error) {
	g.calls++
	g.lastPath = cardPath
	g.lastMoney = amount
	g.lastRef = clientRef
	return g.success, g.path, g.err
}

func (g *fakeGateway) RefundPayment(ctx context.Context, paymentPath string, amount types.Money, clientRef string) (bool, string, error) {
	g.calls++
	g.lastPath = paymentPath
	g.lastMoney = amount
	g.lastRef = clientRef
	return g.success, g.path, g.err
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		scheme  string
		path    string
		wantErr bool
	}{
		{"fake:card-42", "fake", "card-42", false},
		{"stripe:pm_123:extra", "stripe", "pm_123:extra", false},
		{"nocolon", "", "", true},
		{":path", "", "", true},
		{"scheme:", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		scheme, path, err := psp.ParseURI(tt.uri)
		if tt.wantErr {
			if !errors.Is(err, psp.ErrMalformedURI) {
				t.Errorf("ParseURI(%q) error = %v, want ErrMalformedURI", tt.uri, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseURI(%q) unexpected error: %v", tt.uri, err)
			continue
		}
		if scheme != tt.scheme || path != tt.path {
			t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)", tt.uri, scheme, path, tt.scheme, tt.path)
		}
	}
}

func TestBuildURIRoundTrip(t *testing.T) {
	uri := psp.BuildURI("fake", "payment-7")
	if uri != "fake:payment-7" {
		t.Errorf("BuildURI = %q, want %q", uri, "fake:payment-7")
	}
	scheme, path, err := psp.ParseURI(uri)
	if err != nil {
		t.Fatalf("ParseURI: %v", err)
	}
	if scheme != "fake" || path != "payment-7" {
		t.Errorf("round trip = (%q, %q), want (fake, payment-7)", scheme, path)
	}
}

func TestRegistryGateway(t *testing.T) {
	r := psp.NewRegistry()
	if _, err := r.Gateway("fake"); !errors.Is(err, psp.ErrNotRegistered) {
		t.Errorf("Gateway on empty registry error = %v, want ErrNotRegistered", err)
	}

	first := &fakeGateway{}
	second := &fakeGateway{}
	r.Register("fake", first)
	r.Register("fake", second)
	gw, err := r.Gateway("fake")
	if err != nil {
		t.Fatalf("Gateway: %v", err)
	}
	if gw != psp.Gateway(second) {
		t.Error("Register did not replace the existing gateway")
	}

	if err := r.Unregister("fake"); err != nil {
		t.Errorf("Unregister: %v", err)
	}
	if err := r.Unregister("fake"); !errors.Is(err, psp.ErrNotRegistered) {
		t.Errorf("Unregister twice error = %v, want ErrNotRegistered", err)
	}
}

func TestRegistryChargeCard(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{success: true, path: "payment-123"}
	r := psp.NewRegistry()
	r.Register("fake", gw)

	success, ref, err := r.ChargeCard(ctx, "fake:card-42", types.CHF("40.00"), "inv_abc")
	if err != nil {
		t.Fatalf("ChargeCard: %v", err)
	}
	if !success {
		t.Error("ChargeCard success = false, want true")
	}
	if ref != "fake:payment-123" {
		t.Errorf("ChargeCard ref = %q, want %q", ref, "fake:payment-123")
	}
	if gw.lastPath != "card-42" {
		t.Errorf("gateway received path %q, want %q", gw.lastPath, "card-42")
	}
	if gw.lastRef != "inv_abc" {
		t.Errorf("gateway received clientRef %q, want %q", gw.lastRef, "inv_abc")
	}
	if !gw.lastMoney.Equal(types.CHF("40.00")) {
		t.Errorf("gateway received amount %s, want 40.00 CHF", gw.lastMoney)
	}
}

func TestRegistryChargeCardErrors(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{success: true, path: "payment-123"}
	r := psp.NewRegistry()
	r.Register("fake", gw)

	tests := []struct {
		name    string
		uri     string
		amount  types.Money
		wantErr error
	}{
		{"zero amount", "fake:card-42", types.ZeroMoney("CHF"), psp.ErrNonPositiveAmount},
		{"negative amount", "fake:card-42", types.CHF("-5.00"), psp.ErrNonPositiveAmount},
		{"malformed uri", "card-42", types.CHF("5.00"), psp.ErrMalformedURI},
		{"unknown scheme", "other:card-42", types.CHF("5.00"), psp.ErrNotRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := r.ChargeCard(ctx, tt.uri, tt.amount, "ref")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ChargeCard error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if gw.calls != 0 {
		t.Errorf("gateway was called %d times on failing inputs, want 0", gw.calls)
	}
}

func TestRegistryChargeCardGatewayError(t *testing.T) {
	gwErr := errors.New("network down")
	gw := &fakeGateway{err: gwErr}
	r := psp.NewRegistry()
	r.Register("fake", gw)

	_, ref, err := r.ChargeCard(context.Background(), "fake:card-42", types.CHF("5.00"), "ref")
	if !errors.Is(err, gwErr) {
		t.Errorf("ChargeCard error = %v, want %v", err, gwErr)
	}
	if ref != "" {
		t.Errorf("ChargeCard ref = %q, want empty on error", ref)
	}
}

func TestRegistryRefundPayment(t *testing.T) {
	gw := &fakeGateway{success: true, path: "refund-9"}
	r := psp.NewRegistry()
	r.Register("fake", gw)

	success, ref, err := r.RefundPayment(context.Background(), "fake:payment-123", types.EUR("10.00"), "chrg_x")
	if err != nil {
		t.Fatalf("RefundPayment: %v", err)
	}
	if !success || ref != "fake:refund-9" {
		t.Errorf("RefundPayment = (%v, %q), want (true, %q)", success, ref, "fake:refund-9")
	}
	if gw.lastPath != "payment-123" {
		t.Errorf("gateway received path %q, want %q", gw.lastPath, "payment-123")
	}

	if _, _, err := r.RefundPayment(context.Background(), "fake:payment-123", types.ZeroMoney("EUR"), "x"); !errors.Is(err, psp.ErrNonPositiveAmount) {
		t.Errorf("RefundPayment zero amount error = %v, want ErrNonPositiveAmount", err)
	}
}
