package billing

import (
	"context"
	"strings"
	"time"

	"github.com/xraph/billing/delinquency"
	"github.com/xraph/billing/id"
)

// EvaluateDelinquency applies the given criteria to each account and
// reports which ones are eligible for a delinquency flip: accounts
// violating the criteria while flagged compliant, and accounts with
// zero violations while flagged delinquent. Evaluation is read-only;
// use UpdateDelinquencyStatus to commit a report.
func (b *Billing) EvaluateDelinquency(ctx context.Context, accountIDs []id.AccountID, criteria delinquency.Criteria) (delinquency.Report, error) {
	snapshots := make([]delinquency.AccountSnapshot, 0, len(accountIDs))
	for _, accountID := range accountIDs {
		s, err := b.accountSnapshot(ctx, accountID)
		if err != nil {
			return delinquency.Report{}, err
		}
		snapshots = append(snapshots, s)
	}

	report := delinquency.Evaluate(criteria, snapshots)

	b.logger.Info("evaluated delinquency",
		"accounts", len(accountIDs),
		"new_delinquent", len(report.NewDelinquent),
		"new_compliant", len(report.NewCompliant),
	)

	return report, nil
}

// UpdateDelinquencyStatus commits an evaluation report: it flips each
// listed account's delinquent flag and writes the audit trail entries.
func (b *Billing) UpdateDelinquencyStatus(ctx context.Context, report delinquency.Report) error {
	for accountID, reasons := range report.NewDelinquent {
		if err := b.markDelinquent(ctx, accountID, reasons); err != nil {
			return err
		}
	}
	for _, accountID := range report.NewCompliant {
		if err := b.markCompliant(ctx, accountID, "delinquency criteria no longer violated"); err != nil {
			return err
		}
	}
	return nil
}

// accountSnapshot assembles the state the delinquency criteria read.
func (b *Billing) accountSnapshot(ctx context.Context, accountID id.AccountID) (delinquency.AccountSnapshot, error) {
	acct, err := b.store.GetAccount(ctx, accountID)
	if err != nil {
		return delinquency.AccountSnapshot{}, err
	}

	pending, err := b.store.ListPendingInvoices(ctx, accountID)
	if err != nil {
		return delinquency.AccountSnapshot{}, err
	}
	invoices := make([]delinquency.InvoiceInfo, len(pending))
	for i, inv := range pending {
		invoices[i] = delinquency.InvoiceInfo{
			ID:        inv.ID,
			CreatedAt: inv.CreatedAt,
			DueDate:   inv.DueDate,
		}
	}

	cards, err := b.store.ListValidCards(ctx, accountID, time.Now().UTC())
	if err != nil {
		return delinquency.AccountSnapshot{}, err
	}

	balance, err := b.AccountBalance(ctx, accountID)
	if err != nil {
		return delinquency.AccountSnapshot{}, err
	}

	return delinquency.AccountSnapshot{
		AccountID:       accountID,
		Delinquent:      acct.Delinquent,
		PendingInvoices: invoices,
		HasValidCard:    len(cards) > 0,
		Balance:         balance,
		AsOf:            time.Now().UTC(),
	}, nil
}

// simpleDelinquencyReasons evaluates the simple workflow criterion for
// one account.
func (b *Billing) simpleDelinquencyReasons(ctx context.Context, accountID id.AccountID) ([]string, error) {
	s, err := b.accountSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return delinquency.Simple{}.Evaluate(s), nil
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, "\n")
}
