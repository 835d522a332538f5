// Package types provides common value types used across Billing.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents an exact decimal amount in a single currency.
// Amounts are arbitrary-precision decimals — never floating point.
//
// The sign carries meaning throughout the ledger: a positive Charge
// amount is money owed, a negative one is a credit; a positive
// Transaction amount is a payment, a negative one is a refund.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"` // ISO 4217 uppercase: "CHF", "EUR", "NOK"
}

// NewMoney creates a Money value from a decimal amount and a currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}
}

// ParseMoney parses a decimal string ("12.50") into a Money value.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", amount, err)
	}
	return NewMoney(d, currency), nil
}

// MustMoney is like ParseMoney but panics on a malformed amount.
// Use for hardcoded values and tests.
func MustMoney(amount, currency string) Money {
	return NewMoney(decimal.RequireFromString(amount), currency)
}

// Common currency constructors

// CHF creates a Money value in Swiss Francs.
func CHF(amount string) Money { return MustMoney(amount, "CHF") }

// EUR creates a Money value in Euros.
func EUR(amount string) Money { return MustMoney(amount, "EUR") }

// NOK creates a Money value in Norwegian Kroner.
func NOK(amount string) Money { return MustMoney(amount, "NOK") }

// USD creates a Money value in US Dollars.
func USD(amount string) Money { return MustMoney(amount, "USD") }

// ZeroMoney returns a zero Money value in the specified currency.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// Arithmetic operations

// Add adds two Money values. Panics if currencies don't match.
func (m Money) Add(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

// Subtract subtracts another Money value. Panics if currencies don't match.
func (m Money) Subtract(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	return Money{Amount: m.Amount.Abs(), Currency: m.Currency}
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal returns true if both Money values have the same currency and
// numerically equal amounts ("10" equals "10.00").
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// LessThan returns true if this Money is less than other. Panics if currencies don't match.
func (m Money) LessThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount.LessThan(other.Amount)
}

// GreaterThan returns true if this Money is greater than other. Panics if currencies don't match.
func (m Money) GreaterThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount.GreaterThan(other.Amount)
}

// String returns "<amount> <currency>", e.g. "40.00 CHF". The amount
// keeps the scale it was created with.
func (m Money) String() string {
	amount := m.Amount.String()
	if exp := m.Amount.Exponent(); exp < 0 {
		amount = m.Amount.StringFixed(-exp)
	}
	return amount + " " + m.Currency
}

// MarshalJSON implements json.Marshaler. Amounts are serialized as
// decimal strings to keep them exact on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{
		Amount:   m.Amount.String(),
		Currency: m.Currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// assertSameCurrency panics if currencies don't match.
func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.Currency, other.Currency))
	}
}
