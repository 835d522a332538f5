// Package invoice defines the invoice entity grouping charges and
// transactions for one due cycle.
package invoice

import (
	"time"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Invoice groups the charges and transactions of one due cycle. The
// generation engine creates invoices per currency, so an invoice is
// single-currency by construction even though the model does not
// enforce it.
type Invoice struct {
	types.Entity
	ID        id.InvoiceID `json:"id"`
	AccountID id.AccountID `json:"account_id"`
	DueDate   time.Time    `json:"due_date"`
	Status    Status       `json:"status"`
}

// New creates a pending Invoice for the given account and due date.
func New(accountID id.AccountID, dueDate time.Time) *Invoice {
	return &Invoice{
		Entity:    types.NewEntity(),
		ID:        id.NewInvoiceID(),
		AccountID: accountID,
		DueDate:   dueDate,
		Status:    StatusPending,
	}
}

// validTransitions lists the allowed (from, to) status pairs.
// Paid and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
}

// CanTransitionTo reports whether the invoice may move to the target status.
func (inv *Invoice) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[inv.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (inv *Invoice) transitionTo(target Status) error {
	if !inv.CanTransitionTo(target) {
		return types.TransitionError{Entity: "invoice", From: string(inv.Status), To: string(target)}
	}
	inv.Status = target
	inv.Touch()
	return nil
}

// Pay transitions the invoice from pending to paid.
func (inv *Invoice) Pay() error { return inv.transitionTo(StatusPaid) }

// Cancel transitions the invoice from pending to cancelled.
func (inv *Invoice) Cancel() error { return inv.transitionTo(StatusCancelled) }

// IsPayable reports whether the invoice is in a state that allows payment.
func (inv *Invoice) IsPayable() bool { return inv.CanTransitionTo(StatusPaid) }
