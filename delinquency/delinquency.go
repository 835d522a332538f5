// Package delinquency evaluates whether accounts meet the configured
// payment-health criteria.
//
// Evaluation is a pure function over an account snapshot: it computes
// the list of reasons an account violates its criteria, without
// touching storage. Flipping the delinquent flag and writing the audit
// trail is a separate, explicit step driven by the engine, so callers
// can dry-run an evaluation before committing it.
package delinquency

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// InvoiceInfo is the slice of invoice state evaluation needs.
type InvoiceInfo struct {
	ID        id.InvoiceID
	CreatedAt time.Time
	DueDate   time.Time
}

// AccountSnapshot is everything the criteria read about one account.
type AccountSnapshot struct {
	AccountID  id.AccountID
	Delinquent bool

	// PendingInvoices holds the account's unpaid invoices ordered by
	// due date ascending.
	PendingInvoices []InvoiceInfo

	// HasValidCard reports whether an unexpired card is on file,
	// regardless of its active flag.
	HasValidCard bool

	// Balance is successful transactions minus charges, per currency.
	// A negative component means the account owes money.
	Balance types.Total

	// AsOf anchors time-based criteria. Zero means now.
	AsOf time.Time
}

// Criteria computes the reasons an account violates payment-health
// rules. An empty result means the account is compliant.
type Criteria interface {
	Evaluate(s AccountSnapshot) []string
}

// Simple is the workflow criterion: an account is delinquent when it
// has pending invoices and no usable credit card on file.
type Simple struct{}

func (Simple) Evaluate(s AccountSnapshot) []string {
	var reasons []string
	if len(s.PendingInvoices) > 0 {
		reasons = append(reasons, "account has pending invoices")
	}
	if !s.HasValidCard {
		reasons = append(reasons, "account has no valid credit card registered")
	}
	return reasons
}

// Thresholds is the configurable criterion. Each threshold is optional;
// a nil threshold is not checked. An account is delinquent as soon as
// any configured threshold is breached.
type Thresholds struct {
	// UnpaidInvoices flags accounts with at least this many pending
	// invoices.
	UnpaidInvoices *int

	// DaysSinceLastUnpaid flags accounts whose most recent pending
	// invoice has been open for at least this many days.
	DaysSinceLastUnpaid *int

	// AmountThresholds flags accounts owing more than the given amount
	// in the named currency.
	AmountThresholds map[string]decimal.Decimal
}

func (t Thresholds) Evaluate(s AccountSnapshot) []string {
	var reasons []string

	if t.UnpaidInvoices != nil && len(s.PendingInvoices) >= *t.UnpaidInvoices {
		reasons = append(reasons, fmt.Sprintf(
			"account has %d pending invoices (threshold %d)",
			len(s.PendingInvoices), *t.UnpaidInvoices))
	}

	if t.DaysSinceLastUnpaid != nil && len(s.PendingInvoices) > 0 {
		asOf := s.AsOf
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}
		last := s.PendingInvoices[len(s.PendingInvoices)-1]
		days := int(asOf.Sub(last.CreatedAt).Hours() / 24)
		if days >= *t.DaysSinceLastUnpaid {
			reasons = append(reasons, fmt.Sprintf(
				"last unpaid invoice is %d days old (threshold %d)",
				days, *t.DaysSinceLastUnpaid))
		}
	}

	for currency, threshold := range t.AmountThresholds {
		balance := s.Balance.Get(currency)
		debt := balance.Amount.Neg()
		if debt.GreaterThan(threshold) {
			reasons = append(reasons, fmt.Sprintf(
				"account owes %s %s (threshold %s)",
				debt, currency, threshold))
		}
	}

	return reasons
}

// Report lists the accounts whose delinquent flag should change.
// Accounts that do not cross either edge appear in neither list.
type Report struct {
	// NewDelinquent maps accounts eligible to flip to delinquent to
	// the reasons they violate the criteria.
	NewDelinquent map[id.AccountID][]string

	// NewCompliant lists currently-delinquent accounts with zero
	// violation reasons.
	NewCompliant []id.AccountID
}

// Evaluate applies the criteria to each snapshot and buckets the
// accounts eligible for a status flip.
func Evaluate(criteria Criteria, snapshots []AccountSnapshot) Report {
	report := Report{NewDelinquent: make(map[id.AccountID][]string)}
	for _, s := range snapshots {
		reasons := criteria.Evaluate(s)
		switch {
		case len(reasons) > 0 && !s.Delinquent:
			report.NewDelinquent[s.AccountID] = reasons
		case len(reasons) == 0 && s.Delinquent:
			report.NewCompliant = append(report.NewCompliant, s.AccountID)
		}
	}
	return report
}
