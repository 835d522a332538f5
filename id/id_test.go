package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/billing/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"AccountID", id.NewAccountID, "acct_"},
		{"ChargeID", id.NewChargeID, "chrg_"},
		{"InvoiceID", id.NewInvoiceID, "inv_"},
		{"TransactionID", id.NewTransactionID, "txn_"},
		{"CardID", id.NewCardID, "card_"},
		{"EventID", id.NewEventID, "evt_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixAccount)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixAccount {
		t.Errorf("expected prefix %q, got %q", id.PrefixAccount, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := id.NewInvoiceID()
	parsed, err := id.Parse(original.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round trip: got %q, want %q", parsed.String(), original.String())
	}
}

func TestParseWithPrefix(t *testing.T) {
	acct := id.NewAccountID()

	if _, err := id.ParseAccountID(acct.String()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := id.ParseChargeID(acct.String()); err == nil {
		t.Error("expected prefix mismatch error")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "not a typeid"},
		{"bad suffix", "acct_!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should be nil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil string: got %q, want empty", id.Nil.String())
	}
	if id.Nil.Prefix() != "" {
		t.Errorf("Nil prefix: got %q, want empty", id.Nil.Prefix())
	}
}

func TestTextMarshaling(t *testing.T) {
	original := id.NewCardID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round trip: got %q, want %q", decoded.String(), original.String())
	}

	var empty id.ID
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if !empty.IsNil() {
		t.Error("unmarshaling empty text should give Nil")
	}
}

func TestSQLValueScan(t *testing.T) {
	original := id.NewTransactionID()

	v, err := original.Value()
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected string value, got %T", v)
	}

	var scanned id.ID
	if err := scanned.Scan(s); err != nil {
		t.Fatal(err)
	}
	if scanned.String() != original.String() {
		t.Errorf("round trip: got %q, want %q", scanned.String(), original.String())
	}

	nilValue, err := id.Nil.Value()
	if err != nil {
		t.Fatal(err)
	}
	if nilValue != nil {
		t.Errorf("Nil.Value: got %v, want nil", nilValue)
	}

	var fromNull id.ID
	if err := fromNull.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if !fromNull.IsNil() {
		t.Error("scanning NULL should give Nil")
	}
}
