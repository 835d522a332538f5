package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   string
		currency string
		display  string
	}{
		{"CHF", CHF("40.00"), "40", "CHF", "40.00 CHF"},
		{"EUR", EUR("10.50"), "10.5", "EUR", "10.50 EUR"},
		{"NOK", NOK("100"), "100", "NOK", "100 NOK"},
		{"USD", USD("-3.25"), "-3.25", "USD", "-3.25 USD"},
		{"Zero CHF", ZeroMoney("CHF"), "0", "CHF", "0 CHF"},
		{"Lowercase currency", MustMoney("5", "chf"), "5", "CHF", "5 CHF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.money.Amount.Equal(MustMoney(tt.amount, tt.currency).Amount) {
				t.Errorf("Amount: got %s, want %s", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("12.50", "eur")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(EUR("12.50")) {
		t.Errorf("got %v, want 12.50 EUR", m)
	}

	if _, err := ParseMoney("not-a-number", "EUR"); err == nil {
		t.Error("expected error for malformed amount")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return CHF("10").Add(CHF("20")) }, CHF("30")},
		{"Subtract", func() Money { return CHF("50").Subtract(CHF("20")) }, CHF("30")},
		{"Negate", func() Money { return CHF("10").Negate() }, CHF("-10")},
		{"Abs positive", func() Money { return CHF("10").Abs() }, CHF("10")},
		{"Abs negative", func() Money { return CHF("-10").Abs() }, CHF("10")},
		{"Exact decimals", func() Money {
			return CHF("0.10").Add(CHF("0.20"))
		}, CHF("0.30")},
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

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = CHF("10").Add(EUR("10"))
}

func TestMoneyComparisons(t *testing.T) {
	if !CHF("10").Equal(CHF("10.00")) {
		t.Error("10 CHF should equal 10.00 CHF")
	}
	if CHF("10").Equal(EUR("10")) {
		t.Error("10 CHF should not equal 10 EUR")
	}
	if !CHF("5").LessThan(CHF("10")) {
		t.Error("5 CHF should be less than 10 CHF")
	}
	if !CHF("10").GreaterThan(CHF("5")) {
		t.Error("10 CHF should be greater than 5 CHF")
	}
	if !ZeroMoney("CHF").IsZero() {
		t.Error("zero money should be zero")
	}
	if !CHF("1").IsPositive() || CHF("1").IsNegative() {
		t.Error("1 CHF should be positive")
	}
	if !CHF("-1").IsNegative() || CHF("-1").IsPositive() {
		t.Error("-1 CHF should be negative")
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	original := CHF("40.05")
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Money
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round trip: got %v, want %v", decoded, original)
	}
}
