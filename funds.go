package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/types"
)

// AssignFundsToInvoice uses the funds available on the account —
// credits and successful unassigned payments — to pay the given
// invoice. It reports whether the invoice ended up paid.
//
// Credits are applied before payments regardless of relative creation
// time; within each group, oldest first. Fund assignment stops as soon
// as the remaining due reaches zero, leaving untouched funds available
// for future invoices. If the funds overshoot, the overpaid remainder
// is carried forward: a positive carried-forward charge is linked to
// this invoice so its recorded goods match the genuine debt, and a
// negative credit-remaining charge of the same magnitude is left
// unassigned.
//
// A non-pending invoice, or one whose due amount spans more than one
// currency, is left untouched and reported unpaid. This is a no-op,
// not an error.
func (b *Billing) AssignFundsToInvoice(ctx context.Context, invoiceID id.InvoiceID) (bool, error) {
	b.logger.Info("assigning funds to invoice", "invoice_id", invoiceID)

	unlock := b.invoiceLocks.lock(invoiceID.String())
	defer unlock()

	inv, err := b.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return false, err
	}

	if inv.Status != invoice.StatusPending {
		b.logger.Info("invoice is not pending", "invoice_id", invoiceID, "status", inv.Status)
		return false, nil
	}

	due, err := b.InvoiceDue(ctx, invoiceID)
	if err != nil {
		return false, err
	}
	dueMonies := due.Monies()
	if len(dueMonies) != 1 {
		b.logger.Info("invoice due spans more than one currency",
			"invoice_id", invoiceID, "currency_count", len(dueMonies))
		return false, nil
	}
	remaining := dueMonies[0].Amount
	currency := dueMonies[0].Currency

	match := store.FundMatching{InvoiceID: invoiceID}

	if remaining.IsPositive() {
		funds, err := b.collectFunds(ctx, inv.AccountID, currency)
		if err != nil {
			return false, err
		}
		for _, f := range funds {
			b.logger.Info("assigning fund",
				"invoice_id", invoiceID,
				"fund_id", f.id,
				"contributed_amount", f.contributed,
			)
			if f.isCredit {
				match.ChargeIDs = append(match.ChargeIDs, f.id)
			} else {
				match.TransactionIDs = append(match.TransactionIDs, f.id)
			}
			remaining = remaining.Sub(f.contributed)
			if !remaining.IsPositive() {
				break
			}
		}
	}

	if !remaining.IsPositive() {
		match.MarkPaid = true
	}

	if remaining.IsNegative() {
		overpayment := types.NewMoney(remaining.Abs(), currency)
		b.logger.Info("carrying forward overpayment",
			"invoice_id", invoiceID, "overpayment", overpayment)

		carried := charge.New(inv.AccountID, overpayment)
		carried.ProductCode = charge.CarriedForward
		carried.InvoiceID = invoiceID

		left := charge.New(inv.AccountID, overpayment.Negate())
		left.ProductCode = charge.CreditRemaining

		match.NewCharges = []*charge.Charge{carried, left}
	}

	if len(match.ChargeIDs) == 0 && len(match.TransactionIDs) == 0 &&
		!match.MarkPaid && len(match.NewCharges) == 0 {
		return false, nil
	}

	if err := b.store.ApplyFundMatching(ctx, match); err != nil {
		return false, err
	}

	if match.MarkPaid {
		inv.Status = invoice.StatusPaid
		b.plugins.EmitInvoicePaid(ctx, inv)
	}

	return match.MarkPaid, nil
}

// AssignFundsToAccountPendingInvoices tries to pay the account's
// pending invoices with available funds, oldest due date first. It
// returns the IDs of the invoices that were paid.
//
// The cascade stops at the first invoice that is not fully paid, even
// though funds in another currency might have covered a later invoice.
// Deliberate simplification: an account is expected to accrue debt in
// one currency at a time, and paying around an unpaid older invoice
// would reorder the account's obligations.
func (b *Billing) AssignFundsToAccountPendingInvoices(ctx context.Context, accountID id.AccountID) ([]id.InvoiceID, error) {
	b.logger.Info("assigning funds to pending invoices", "account_id", accountID)

	pending, err := b.store.ListPendingInvoices(ctx, accountID)
	if err != nil {
		return nil, err
	}

	paid := []id.InvoiceID{}
	for _, inv := range pending {
		wasPaid, err := b.AssignFundsToInvoice(ctx, inv.ID)
		if err != nil {
			return paid, err
		}
		if !wasPaid {
			break
		}
		paid = append(paid, inv.ID)
	}

	b.logger.Info("assigned funds to pending invoices",
		"account_id", accountID, "paid_invoice_count", len(paid))

	return paid, nil
}

// fund is the uniform view of a credit or a payment during matching.
type fund struct {
	id          id.ID
	isCredit    bool
	contributed decimal.Decimal // absolute value; credits are negative in the ledger
}

// collectFunds gathers the account's unassigned funds in one currency,
// credits first, then payments, each group ordered oldest first.
func (b *Billing) collectFunds(ctx context.Context, accountID id.AccountID, currency string) ([]fund, error) {
	credits, err := b.store.ListUninvoicedCharges(ctx, accountID, charge.ListOpts{
		Currency: currency,
		Sign:     charge.Negative,
	})
	if err != nil {
		return nil, err
	}
	payments, err := b.store.ListUninvoicedPayments(ctx, accountID, currency)
	if err != nil {
		return nil, err
	}

	funds := make([]fund, 0, len(credits)+len(payments))
	for _, c := range credits {
		funds = append(funds, fund{id: c.ID, isCredit: true, contributed: c.Amount.Amount.Abs()})
	}
	for _, p := range payments {
		funds = append(funds, fund{id: p.ID, contributed: p.Amount.Amount.Abs()})
	}
	return funds, nil
}
