// Package card defines tokenized credit cards stored against an account.
package card

import (
	"time"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// Status is the card lifecycle state. Transitions are symmetric.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Card is a tokenized payment instrument. The number is masked; the
// real card lives on the provider side, referenced by PSPReference.
type Card struct {
	types.Entity
	ID        id.CardID    `json:"id"`
	AccountID id.AccountID `json:"account_id"`

	// Type is the card scheme code, e.g. "VIS", "ECA", "AMX".
	Type   string `json:"type"`
	Number string `json:"number"` // masked

	ExpiryMonth int `json:"expiry_month"` // 1-12
	ExpiryYear  int `json:"expiry_year"`  // two digits, interpreted as 2000+yy

	// ExpiryDate is derived from ExpiryMonth/ExpiryYear at creation so
	// expired cards can be searched for directly.
	ExpiryDate time.Time `json:"expiry_date"`

	Status Status `json:"status"`

	// PSPReference identifies the provider-side card object, as
	// "scheme:path".
	PSPReference string `json:"psp_reference"`
}

// New creates an active Card with the derived expiry date filled in.
func New(accountID id.AccountID, cardType, number string, expiryMonth, expiryYear int, pspReference string) *Card {
	return &Card{
		Entity:       types.NewEntity(),
		ID:           id.NewCardID(),
		AccountID:    accountID,
		Type:         cardType,
		Number:       number,
		ExpiryMonth:  expiryMonth,
		ExpiryYear:   expiryYear,
		ExpiryDate:   ComputeExpiryDate(expiryYear, expiryMonth),
		Status:       StatusActive,
		PSPReference: pspReference,
	}
}

// ComputeExpiryDate returns the last day of the expiry month. The
// two-digit year is interpreted as 2000+yy.
func ComputeExpiryDate(twoDigitYear, month int) time.Time {
	year := 2000 + twoDigitYear
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}

// IsValid reports whether the card's expiry date is on or after the
// given date. A zero asOf means today.
func (c *Card) IsValid(asOf time.Time) bool {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	y, m, d := asOf.Date()
	asOfDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !c.ExpiryDate.Before(asOfDay)
}

// IsUsable reports whether the card can be charged: unexpired and active.
func (c *Card) IsUsable(asOf time.Time) bool {
	return c.Status == StatusActive && c.IsValid(asOf)
}

// validTransitions lists the allowed (from, to) status pairs.
var validTransitions = map[Status][]Status{
	StatusActive:   {StatusInactive},
	StatusInactive: {StatusActive},
}

// CanTransitionTo reports whether the card may move to the target status.
func (c *Card) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[c.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (c *Card) transitionTo(target Status) error {
	if !c.CanTransitionTo(target) {
		return types.TransitionError{Entity: "credit card", From: string(c.Status), To: string(target)}
	}
	c.Status = target
	c.Touch()
	return nil
}

// Deactivate transitions the card from active to inactive.
func (c *Card) Deactivate() error { return c.transitionTo(StatusInactive) }

// Reactivate transitions the card from inactive back to active.
func (c *Card) Reactivate() error { return c.transitionTo(StatusActive) }
