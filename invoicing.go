package billing

import (
	"context"
	"time"

	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/types"
)

// CreateInvoices creates the invoices for any due positive charges on
// the account. Charges are grouped by currency: each currency whose
// positive charges sum to a strictly positive amount gets one new
// pending invoice, and every uninvoiced charge in that currency —
// credits included — is assigned to it, so an outstanding credit is
// consumed by the invoicing pass that its currency triggers. Currencies
// whose charges don't add up to a positive amount are left alone;
// their credits simply wait.
//
// Invoice creation and charge assignment are applied as one atomic
// store operation. Callers should not run two generation passes over
// the same account concurrently.
func (b *Billing) CreateInvoices(ctx context.Context, accountID id.AccountID, dueDate time.Time) ([]*invoice.Invoice, error) {
	uninvoiced, err := b.store.ListUninvoicedCharges(ctx, accountID, charge.ListOpts{})
	if err != nil {
		return nil, err
	}

	// The decision to invoice a currency looks only at its positive
	// charges; a currency holding nothing but credits never produces
	// an invoice.
	var due types.Total
	for _, c := range uninvoiced {
		if c.Amount.IsPositive() {
			due = due.Add(types.SumTotal(c.Amount))
		}
	}

	gen := store.InvoiceGeneration{
		Assignments: make(map[id.InvoiceID][]id.ChargeID),
	}
	for _, amountDue := range due.Monies() {
		if !amountDue.IsPositive() {
			continue
		}
		inv := invoice.New(accountID, dueDate)
		gen.Invoices = append(gen.Invoices, inv)
		for _, c := range uninvoiced {
			if c.Amount.Currency == amountDue.Currency {
				gen.Assignments[inv.ID] = append(gen.Assignments[inv.ID], c.ID)
			}
		}
	}

	if len(gen.Invoices) == 0 {
		return []*invoice.Invoice{}, nil
	}

	if err := b.store.ApplyInvoiceGeneration(ctx, gen); err != nil {
		return nil, err
	}

	invoiceIDs := make([]string, len(gen.Invoices))
	for i, inv := range gen.Invoices {
		invoiceIDs[i] = inv.ID.String()
	}
	b.logger.Info("created invoices", "account_id", accountID, "invoice_ids", invoiceIDs)

	for _, inv := range gen.Invoices {
		b.plugins.EmitInvoiceIssued(ctx, inv)
	}

	return gen.Invoices, nil
}

// GetInvoice retrieves an invoice by ID.
func (b *Billing) GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error) {
	return b.store.GetInvoice(ctx, invoiceID)
}

// CancelInvoice transitions a pending invoice to cancelled.
func (b *Billing) CancelInvoice(ctx context.Context, invoiceID id.InvoiceID) error {
	b.logger.Info("cancelling invoice", "invoice_id", invoiceID)

	unlock := b.invoiceLocks.lock(invoiceID.String())
	defer unlock()

	inv, err := b.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !inv.CanTransitionTo(invoice.StatusCancelled) {
		return types.TransitionError{Entity: "invoice", From: string(inv.Status), To: string(invoice.StatusCancelled)}
	}

	return b.store.UpdateInvoiceStatus(ctx, invoiceID, invoice.StatusPending, invoice.StatusCancelled)
}

// InvoiceDue computes the amount still owed on the invoice: the sum of
// all its charges minus the sum of its successful transactions. The
// result can be negative when the invoice was overpaid.
func (b *Billing) InvoiceDue(ctx context.Context, invoiceID id.InvoiceID) (types.Total, error) {
	charges, err := b.store.ListChargesByInvoice(ctx, invoiceID)
	if err != nil {
		return types.Total{}, err
	}
	txns, err := b.store.ListTransactionsByInvoice(ctx, invoiceID)
	if err != nil {
		return types.Total{}, err
	}

	var charged, paid types.Total
	for _, c := range charges {
		charged = charged.Add(types.SumTotal(c.Amount))
	}
	for _, t := range txns {
		paid = paid.Add(types.SumTotal(t.Amount))
	}

	return charged.Subtract(paid), nil
}

// InvoiceTotalCharges computes the goods acquired in the invoice: the
// sum of its positive charges, excluding the carried-forward entry an
// overpayment writes.
func (b *Billing) InvoiceTotalCharges(ctx context.Context, invoiceID id.InvoiceID) (types.Total, error) {
	charges, err := b.store.ListChargesByInvoice(ctx, invoiceID)
	if err != nil {
		return types.Total{}, err
	}

	var total types.Total
	for _, c := range charges {
		if c.Amount.IsPositive() && c.ProductCode != charge.CarriedForward {
			total = total.Add(types.SumTotal(c.Amount))
		}
	}

	return total, nil
}

// AuditClosedInvoices checks every non-pending invoice for a consistent
// end state: exactly one currency and nothing left due. It returns true
// when every closed invoice passes, logging each violation.
func (b *Billing) AuditClosedInvoices(ctx context.Context) (bool, error) {
	closed, err := b.store.ListClosedInvoices(ctx)
	if err != nil {
		return false, err
	}

	b.logger.Debug("auditing closed invoices", "count", len(closed))

	allOK := true
	for _, inv := range closed {
		due, err := b.InvoiceDue(ctx, inv.ID)
		if err != nil {
			return false, err
		}

		monies := due.Monies()
		if len(monies) != 1 {
			b.logger.Info("closed invoice spans wrong number of currencies",
				"invoice_id", inv.ID,
				"status", inv.Status,
				"currency_count", len(monies),
			)
			allOK = false
			continue
		}
		if !monies[0].IsZero() {
			b.logger.Info("closed invoice has non-zero due",
				"invoice_id", inv.ID,
				"status", inv.Status,
				"due", monies[0],
			)
			allOK = false
		}
	}

	return allOK, nil
}
