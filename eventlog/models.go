// Package eventlog defines the append-only audit trail for account
// delinquency changes. Entries are write-only: never mutated, never
// deleted.
package eventlog

import (
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// Type classifies an audit entry.
type Type string

const (
	NewDelinquent Type = "NEW_DELINQUENT"
	NewCompliant  Type = "NEW_COMPLIANT"
)

// EventLog is one audit trail entry.
type EventLog struct {
	types.Entity
	ID        id.EventID   `json:"id"`
	AccountID id.AccountID `json:"account_id"`
	Type      Type         `json:"type"`
	Text      string       `json:"text"`
}

// New creates an audit entry for the given account.
func New(accountID id.AccountID, eventType Type, text string) *EventLog {
	return &EventLog{
		Entity:    types.NewEntity(),
		ID:        id.NewEventID(),
		AccountID: accountID,
		Type:      eventType,
		Text:      text,
	}
}
