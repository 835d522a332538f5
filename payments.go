package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/billing/account"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/transaction"
)

// PayInvoiceWithCards tries to settle the invoice by charging the
// account's cards on file, unexpired cards only, active cards first.
// Every provider attempt is recorded as a Transaction, failed ones
// included. The first successful charge marks the invoice paid and is
// returned; no further cards are tried. If every card fails, the
// invoice stays pending and the result is nil without an error.
//
// Preconditions fail with a PreconditionError: the account is closed,
// the invoice is not pending, the due amount is empty, spans more than
// one currency or is not positive, or no unexpired card is on file.
func (b *Billing) PayInvoiceWithCards(ctx context.Context, invoiceID id.InvoiceID) (*transaction.Transaction, error) {
	b.logger.Debug("invoice payment started", "invoice_id", invoiceID)

	unlock := b.invoiceLocks.lock(invoiceID.String())
	defer unlock()

	inv, err := b.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	acct, err := b.store.GetAccount(ctx, inv.AccountID)
	if err != nil {
		return nil, err
	}

	if acct.Status == account.StatusClosed {
		return nil, &PreconditionError{Op: "pay invoice", Reason: "account is closed"}
	}
	if !inv.IsPayable() {
		return nil, &PreconditionError{Op: "pay invoice", Reason: fmt.Sprintf("invoice status is %s", inv.Status)}
	}

	due, err := b.InvoiceDue(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	dueMonies := due.Monies()
	if len(dueMonies) == 0 {
		return nil, &PreconditionError{Op: "pay invoice", Reason: "invoice is empty"}
	}
	if len(dueMonies) > 1 {
		return nil, &PreconditionError{Op: "pay invoice", Reason: "invoice spans more than one currency"}
	}
	amount := dueMonies[0]
	if !amount.IsPositive() {
		return nil, &PreconditionError{Op: "pay invoice", Reason: "due amount is not positive"}
	}

	cards, err := b.store.ListValidCards(ctx, inv.AccountID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, &PreconditionError{Op: "pay invoice", Reason: "no valid credit card on account"}
	}

	for _, c := range cards {
		success, paymentRef, chargeErr := b.psps.ChargeCard(ctx, c.PSPReference, amount, invoiceID.String())
		if chargeErr != nil {
			b.logger.Error("invoice payment error",
				"invoice_id", invoiceID,
				"card_id", c.ID,
				"error", chargeErr,
			)
			success = false
			paymentRef = ""
		}

		txn := transaction.New(inv.AccountID, amount, success)
		txn.InvoiceID = invoiceID
		txn.PaymentMethod = c.Type
		txn.CardNumber = c.Number
		txn.CardID = c.ID
		txn.PSPReference = paymentRef
		if err := b.store.CreateTransaction(ctx, txn); err != nil {
			return nil, err
		}

		if success {
			if err := b.store.UpdateInvoiceStatus(ctx, invoiceID, invoice.StatusPending, invoice.StatusPaid); err != nil {
				return nil, err
			}
			inv.Status = invoice.StatusPaid
			b.logger.Info("invoice payment success", "invoice_id", invoiceID, "transaction_id", txn.ID)
			b.plugins.EmitInvoicePaid(ctx, inv)
			return txn, nil
		}

		b.logger.Info("invoice payment failure", "invoice_id", invoiceID, "transaction_id", txn.ID)
		b.plugins.EmitPaymentFailed(ctx, inv, txn)
	}

	return nil, nil
}

// PaymentSummary reports the outcome of a pending-invoice payment sweep.
type PaymentSummary struct {
	Paid   int `json:"paid"`
	Failed int `json:"failed"`
}

// PayAccountPendingInvoices tries to settle each of the account's
// pending invoices with its cards on file. Per-invoice precondition
// failures are skipped rather than aborting the sweep. When the sweep
// leaves the account with no delinquency reasons, the account is marked
// compliant.
func (b *Billing) PayAccountPendingInvoices(ctx context.Context, accountID id.AccountID) (PaymentSummary, error) {
	pending, err := b.store.ListPendingInvoices(ctx, accountID)
	if err != nil {
		return PaymentSummary{}, err
	}

	b.logger.Info("paying pending invoices", "account_id", accountID, "pending_count", len(pending))

	var summary PaymentSummary
	for _, inv := range pending {
		txn, err := b.PayInvoiceWithCards(ctx, inv.ID)
		if err != nil {
			if IsPrecondition(err) {
				continue
			}
			return summary, err
		}
		if txn != nil {
			summary.Paid++
		}
	}
	summary.Failed = len(pending) - summary.Paid

	reasons, err := b.simpleDelinquencyReasons(ctx, accountID)
	if err != nil {
		return summary, err
	}
	if len(reasons) == 0 {
		if err := b.markCompliant(ctx, accountID, "pending invoices have been paid"); err != nil {
			return summary, err
		}
	}

	return summary, nil
}
