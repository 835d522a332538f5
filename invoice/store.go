package invoice

import (
	"context"

	"github.com/xraph/billing/id"
)

type Store interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, invoiceID id.InvoiceID) (*Invoice, error)
	List(ctx context.Context, accountID id.AccountID, opts ListOpts) ([]*Invoice, error)

	// ListPending returns the account's pending invoices ordered by due
	// date ascending.
	ListPending(ctx context.Context, accountID id.AccountID) ([]*Invoice, error)

	// ListClosed returns all invoices that are no longer pending,
	// across accounts. Used by the invoice audit.
	ListClosed(ctx context.Context) ([]*Invoice, error)

	// UpdateStatus flips the invoice status if and only if it still has
	// the expected current status; otherwise ErrStatusConflict.
	UpdateStatus(ctx context.Context, invoiceID id.InvoiceID, from, to Status) error
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
