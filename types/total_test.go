package types

import (
	"encoding/json"
	"testing"
)

func TestNewTotalRejectsDuplicateCurrency(t *testing.T) {
	if _, err := NewTotal(CHF("10"), CHF("20")); err == nil {
		t.Error("expected error for duplicate currency")
	}
	if _, err := NewTotal(CHF("10"), EUR("20")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSumTotalMergesDuplicates(t *testing.T) {
	total := SumTotal(CHF("10"), CHF("20"), EUR("5"))
	if got := total.Get("CHF"); !got.Equal(CHF("30")) {
		t.Errorf("CHF: got %v, want 30", got)
	}
	if got := total.Get("EUR"); !got.Equal(EUR("5")) {
		t.Errorf("EUR: got %v, want 5", got)
	}
}

func TestTotalGetMissingCurrency(t *testing.T) {
	total := MustTotal(CHF("10"))
	got := total.Get("EUR")
	if !got.IsZero() || got.Currency != "EUR" {
		t.Errorf("missing currency: got %v, want 0 EUR", got)
	}
}

func TestTotalArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Total
		expected Total
	}{
		{
			"Add union",
			func() Total { return MustTotal(CHF("10")).Add(MustTotal(EUR("5"))) },
			MustTotal(CHF("10"), EUR("5")),
		},
		{
			"Add shared currency",
			func() Total { return MustTotal(CHF("10")).Add(MustTotal(CHF("5"))) },
			MustTotal(CHF("15")),
		},
		{
			"Subtract to zero",
			func() Total { return MustTotal(CHF("10")).Subtract(MustTotal(CHF("10"))) },
			Total{},
		},
		{
			"Subtract missing currency",
			func() Total { return MustTotal(CHF("10")).Subtract(MustTotal(EUR("5"))) },
			MustTotal(CHF("10"), EUR("-5")),
		},
		{
			"Negate",
			func() Total { return MustTotal(CHF("10"), EUR("-5")).Negate() },
			MustTotal(CHF("-10"), EUR("5")),
		},
		{
			"Abs",
			func() Total { return MustTotal(CHF("-10"), EUR("5")).Abs() },
			MustTotal(CHF("10"), EUR("5")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestTotalEqualTreatsMissingAsZero(t *testing.T) {
	zeroEntry := MustTotal(ZeroMoney("CHF"))
	empty := Total{}
	if !zeroEntry.Equal(empty) {
		t.Error("a zero entry should equal the empty total")
	}
	if !empty.Equal(zeroEntry) {
		t.Error("equality should be symmetric")
	}
	if MustTotal(CHF("1")).Equal(empty) {
		t.Error("nonzero total should not equal the empty total")
	}
}

func TestTotalIsZero(t *testing.T) {
	if !(Total{}).IsZero() {
		t.Error("empty total should be zero")
	}
	if !MustTotal(ZeroMoney("CHF"), ZeroMoney("EUR")).IsZero() {
		t.Error("all-zero total should be zero")
	}
	if MustTotal(CHF("0.01")).IsZero() {
		t.Error("nonzero total should not be zero")
	}
}

func TestTotalMonies(t *testing.T) {
	total := MustTotal(NOK("7"), CHF("10"), ZeroMoney("EUR"))

	monies := total.Monies()
	if len(monies) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(monies))
	}
	// Sorted by currency code.
	if monies[0].Currency != "CHF" || monies[1].Currency != "EUR" || monies[2].Currency != "NOK" {
		t.Errorf("unexpected order: %v", monies)
	}

	nonzero := total.NonzeroMonies()
	if len(nonzero) != 2 {
		t.Fatalf("expected 2 nonzero entries, got %d", len(nonzero))
	}

	currencies := total.Currencies()
	if len(currencies) != 2 || currencies[0] != "CHF" || currencies[1] != "NOK" {
		t.Errorf("unexpected currencies: %v", currencies)
	}
}

func TestTotalString(t *testing.T) {
	if got := (Total{}).String(); got != "no values" {
		t.Errorf("empty total: got %q", got)
	}
	if got := MustTotal(EUR("10.00"), CHF("40.00")).String(); got != "40.00 CHF, 10.00 EUR" {
		t.Errorf("got %q", got)
	}
}

func TestTotalJSONRoundTrip(t *testing.T) {
	original := MustTotal(CHF("40.05"), EUR("-3"))
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Total
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round trip: got %v, want %v", decoded, original)
	}
}
