package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Total is an immutable multi-currency aggregate. It holds at most one
// Money entry per currency and supports arithmetic that unions the
// currencies of both operands, keeping zero results.
//
// The zero value is a valid empty Total.
type Total struct {
	byCurrency map[string]Money
}

// NewTotal creates a Total from the given Money values. It returns an
// error if two values share a currency; use SumTotal to merge instead.
func NewTotal(monies ...Money) (Total, error) {
	byCurrency := make(map[string]Money, len(monies))
	for _, m := range monies {
		if _, exists := byCurrency[m.Currency]; exists {
			return Total{}, fmt.Errorf("total: duplicate currency %s", m.Currency)
		}
		byCurrency[m.Currency] = m
	}
	return Total{byCurrency: byCurrency}, nil
}

// MustTotal is like NewTotal but panics on duplicate currencies.
// Use for hardcoded values and tests.
func MustTotal(monies ...Money) Total {
	t, err := NewTotal(monies...)
	if err != nil {
		panic(err)
	}
	return t
}

// SumTotal creates a Total by summing the given Money values, merging
// entries that share a currency.
func SumTotal(monies ...Money) Total {
	byCurrency := make(map[string]Money, len(monies))
	for _, m := range monies {
		byCurrency[m.Currency] = byCurrency[m.Currency].add(m)
	}
	return Total{byCurrency: byCurrency}
}

// add is like Add but treats a zero-value receiver as zero in the
// argument's currency.
func (m Money) add(other Money) Money {
	if m.Currency == "" {
		return other
	}
	return m.Add(other)
}

// Get returns the Money entry for the given currency, or a zero Money
// in that currency when the Total has no entry for it.
func (t Total) Get(currency string) Money {
	currency = strings.ToUpper(currency)
	if m, ok := t.byCurrency[currency]; ok {
		return m
	}
	return ZeroMoney(currency)
}

// Add returns a new Total containing the union of both operands'
// currencies, with shared currencies summed. Zero results are kept.
func (t Total) Add(other Total) Total {
	byCurrency := make(map[string]Money, len(t.byCurrency)+len(other.byCurrency))
	for currency, m := range t.byCurrency {
		byCurrency[currency] = m
	}
	for currency, m := range other.byCurrency {
		byCurrency[currency] = byCurrency[currency].add(m)
	}
	return Total{byCurrency: byCurrency}
}

// Subtract returns t + (-other).
func (t Total) Subtract(other Total) Total {
	return t.Add(other.Negate())
}

// Negate returns a new Total with every entry negated.
func (t Total) Negate() Total {
	byCurrency := make(map[string]Money, len(t.byCurrency))
	for currency, m := range t.byCurrency {
		byCurrency[currency] = m.Negate()
	}
	return Total{byCurrency: byCurrency}
}

// Abs returns a new Total with every entry replaced by its absolute value.
func (t Total) Abs() Total {
	byCurrency := make(map[string]Money, len(t.byCurrency))
	for currency, m := range t.byCurrency {
		byCurrency[currency] = m.Abs()
	}
	return Total{byCurrency: byCurrency}
}

// IsZero returns true if every entry is zero. An empty Total is zero.
func (t Total) IsZero() bool {
	for _, m := range t.byCurrency {
		if !m.IsZero() {
			return false
		}
	}
	return true
}

// Equal compares per currency, treating a missing currency as zero:
// Total{0 CHF} equals the empty Total.
func (t Total) Equal(other Total) bool {
	return t.Subtract(other).IsZero()
}

// Monies returns the underlying Money entries sorted by currency code.
// Currencies are unique; zero entries are included.
func (t Total) Monies() []Money {
	monies := make([]Money, 0, len(t.byCurrency))
	for _, m := range t.byCurrency {
		monies = append(monies, m)
	}
	sort.Slice(monies, func(i, j int) bool {
		return monies[i].Currency < monies[j].Currency
	})
	return monies
}

// NonzeroMonies returns the nonzero Money entries sorted by currency code.
func (t Total) NonzeroMonies() []Money {
	monies := make([]Money, 0, len(t.byCurrency))
	for _, m := range t.byCurrency {
		if !m.IsZero() {
			monies = append(monies, m)
		}
	}
	sort.Slice(monies, func(i, j int) bool {
		return monies[i].Currency < monies[j].Currency
	})
	return monies
}

// Currencies returns the currency codes of all nonzero entries, sorted.
func (t Total) Currencies() []string {
	currencies := make([]string, 0, len(t.byCurrency))
	for currency, m := range t.byCurrency {
		if !m.IsZero() {
			currencies = append(currencies, currency)
		}
	}
	sort.Strings(currencies)
	return currencies
}

// String renders the entries sorted by currency, e.g. "40.00 CHF, 10.00 EUR".
// An empty Total renders as "no values".
func (t Total) String() string {
	monies := t.Monies()
	if len(monies) == 0 {
		return "no values"
	}
	parts := make([]string, len(monies))
	for i, m := range monies {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON serializes the Total as a sorted list of Money entries.
func (t Total) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Monies())
}

// UnmarshalJSON deserializes a list of Money entries, merging duplicates.
func (t *Total) UnmarshalJSON(data []byte) error {
	var monies []Money
	if err := json.Unmarshal(data, &monies); err != nil {
		return err
	}
	*t = SumTotal(monies...)
	return nil
}
