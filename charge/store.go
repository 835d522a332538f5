package charge

import (
	"context"

	"github.com/xraph/billing/id"
)

// Store persists charges. Read methods exclude soft-deleted charges
// unless stated otherwise; listings are ordered oldest-created-first.
type Store interface {
	Create(ctx context.Context, c *Charge) error
	Get(ctx context.Context, chargeID id.ChargeID) (*Charge, error)

	// GetIncludingDeleted also returns soft-deleted charges, for
	// cancellation and audit paths.
	GetIncludingDeleted(ctx context.Context, chargeID id.ChargeID) (*Charge, error)

	// ListUninvoiced returns the account's charges with no invoice
	// assigned, optionally narrowed by currency and sign.
	ListUninvoiced(ctx context.Context, accountID id.AccountID, opts ListOpts) ([]*Charge, error)

	ListByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]*Charge, error)
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]*Charge, error)

	// HasReversal reports whether another charge reverses the given one.
	HasReversal(ctx context.Context, chargeID id.ChargeID) (bool, error)

	// MarkDeleted soft-deletes an uninvoiced charge.
	MarkDeleted(ctx context.Context, chargeID id.ChargeID) error

	// AssignToInvoice sets the charge's invoice reference if and only
	// if the charge is still unassigned; a charge that was grabbed by a
	// concurrent caller yields ErrFundAssigned.
	AssignToInvoice(ctx context.Context, chargeID id.ChargeID, invoiceID id.InvoiceID) error
}

// Sign narrows a charge listing to one side of the ledger.
type Sign int

const (
	AnySign Sign = iota
	Positive     // charges: amount > 0
	Negative     // credits: amount < 0
)

type ListOpts struct {
	Currency string
	Sign     Sign
}
