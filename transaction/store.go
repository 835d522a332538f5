package transaction

import (
	"context"

	"github.com/xraph/billing/id"
)

// Store persists transactions. Listings are ordered oldest-created-first.
type Store interface {
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, txnID id.TransactionID) (*Transaction, error)

	// ListSuccessfulUninvoiced returns the account's successful
	// payments (amount > 0) in the given currency with no invoice
	// assigned.
	ListSuccessfulUninvoiced(ctx context.Context, accountID id.AccountID, currency string) ([]*Transaction, error)

	// ListSuccessfulByInvoice returns the successful transactions
	// assigned to an invoice.
	ListSuccessfulByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]*Transaction, error)

	// ListSuccessfulByAccount returns all the account's successful
	// transactions. Used for balance computation.
	ListSuccessfulByAccount(ctx context.Context, accountID id.AccountID) ([]*Transaction, error)

	// AssignToInvoice sets the transaction's invoice reference if and
	// only if it is still unassigned; otherwise ErrFundAssigned.
	AssignToInvoice(ctx context.Context, txnID id.TransactionID, invoiceID id.InvoiceID) error
}
