package billing

import (
	"context"

	"github.com/xraph/billing/account"
	"github.com/xraph/billing/eventlog"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/types"
)

// CreateAccount opens a billing account for the given owner. New
// accounts start delinquent until a valid credit card is registered.
func (b *Billing) CreateAccount(ctx context.Context, owner, currency string) (*account.Account, error) {
	if owner == "" {
		return nil, types.ValidationError{Field: "owner", Message: "must not be empty"}
	}

	a := account.New(owner, currency)
	if err := b.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	b.logger.Info("account created", "account_id", a.ID, "owner", owner, "currency", currency)

	return a, nil
}

// GetAccount retrieves an account by ID.
func (b *Billing) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	return b.store.GetAccount(ctx, accountID)
}

// CloseAccount transitions the account from open to closed.
func (b *Billing) CloseAccount(ctx context.Context, accountID id.AccountID) error {
	b.logger.Info("closing account", "account_id", accountID)

	a, err := b.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.Close(); err != nil {
		return err
	}

	return b.store.UpdateAccount(ctx, a)
}

// ReopenAccount transitions the account from closed back to open.
func (b *Billing) ReopenAccount(ctx context.Context, accountID id.AccountID) error {
	b.logger.Info("reopening account", "account_id", accountID)

	a, err := b.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.Reopen(); err != nil {
		return err
	}

	return b.store.UpdateAccount(ctx, a)
}

// AccountBalance computes the account's per-currency balance: the sum
// of its successful transactions minus the sum of its charges. A
// negative component means the account owes money in that currency.
func (b *Billing) AccountBalance(ctx context.Context, accountID id.AccountID) (types.Total, error) {
	txns, err := b.store.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return types.Total{}, err
	}
	charges, err := b.store.ListChargesByAccount(ctx, accountID)
	if err != nil {
		return types.Total{}, err
	}

	var paid, owed types.Total
	for _, t := range txns {
		paid = paid.Add(types.SumTotal(t.Amount))
	}
	for _, c := range charges {
		owed = owed.Add(types.SumTotal(c.Amount))
	}

	return paid.Subtract(owed), nil
}

// markDelinquent flips the account to delinquent and writes the audit
// trail entry. A no-op when the account is already delinquent.
func (b *Billing) markDelinquent(ctx context.Context, accountID id.AccountID, reasons []string) error {
	a, err := b.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if a.Delinquent {
		return nil
	}

	b.logger.Info("marking account delinquent", "account_id", accountID, "reasons", reasons)

	if err := b.store.SetAccountDelinquent(ctx, accountID, true); err != nil {
		return err
	}
	if err := b.store.CreateEventLog(ctx, eventlog.New(accountID, eventlog.NewDelinquent, joinReasons(reasons))); err != nil {
		return err
	}

	b.plugins.EmitDelinquencyChanged(ctx, plugin.DelinquencyChange{
		AccountID:  accountID.String(),
		Delinquent: true,
		Reasons:    reasons,
	})

	return nil
}

// markCompliant flips the account to compliant and writes the audit
// trail entry. A no-op when the account is already compliant.
func (b *Billing) markCompliant(ctx context.Context, accountID id.AccountID, reason string) error {
	a, err := b.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if !a.Delinquent {
		return nil
	}

	b.logger.Info("marking account compliant", "account_id", accountID, "reason", reason)

	if err := b.store.SetAccountDelinquent(ctx, accountID, false); err != nil {
		return err
	}
	if err := b.store.CreateEventLog(ctx, eventlog.New(accountID, eventlog.NewCompliant, reason)); err != nil {
		return err
	}

	b.plugins.EmitDelinquencyChanged(ctx, plugin.DelinquencyChange{
		AccountID:  accountID.String(),
		Delinquent: false,
		Reasons:    []string{reason},
	})

	return nil
}
