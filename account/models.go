// Package account defines the billing account aggregate root.
package account

import (
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// Status is the account lifecycle state.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Account is the aggregate root for all billing records. Charges,
// invoices, transactions, credit cards and event log entries all
// reference an account; accounts are closed, never deleted.
type Account struct {
	types.Entity
	ID       id.AccountID `json:"id"`
	Owner    string       `json:"owner"`
	Currency string       `json:"currency"` // display default only; balances may span other currencies
	Status   Status       `json:"status"`

	// Delinquent is not a state machine. It is a flag toggled by the
	// delinquency evaluator or a manual override. New accounts start
	// delinquent until a valid credit card is registered.
	Delinquent bool `json:"delinquent"`
}

// New creates an open Account for the given owner.
func New(owner, currency string) *Account {
	return &Account{
		Entity:     types.NewEntity(),
		ID:         id.NewAccountID(),
		Owner:      owner,
		Currency:   currency,
		Status:     StatusOpen,
		Delinquent: true,
	}
}

// validTransitions lists the allowed (from, to) status pairs.
var validTransitions = map[Status][]Status{
	StatusOpen:   {StatusClosed},
	StatusClosed: {StatusOpen},
}

// CanTransitionTo reports whether the account may move to the target status.
func (a *Account) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[a.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// transitionTo moves the account to the target status or returns a
// TransitionError for any pair not in the allowed set.
func (a *Account) transitionTo(target Status) error {
	if !a.CanTransitionTo(target) {
		return types.TransitionError{Entity: "account", From: string(a.Status), To: string(target)}
	}
	a.Status = target
	a.Touch()
	return nil
}

// Close transitions the account from open to closed.
func (a *Account) Close() error { return a.transitionTo(StatusClosed) }

// Reopen transitions the account from closed back to open.
func (a *Account) Reopen() error { return a.transitionTo(StatusOpen) }

// IsClosed reports whether the account is closed.
func (a *Account) IsClosed() bool { return a.Status == StatusClosed }
