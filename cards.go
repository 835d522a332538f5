package billing

import (
	"context"

	"github.com/xraph/billing/card"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// RegisterCard stores a tokenized credit card on the account. The card
// starts active; its expiry date is derived from the two-digit expiry
// year and month. Registering a usable card on a delinquent account
// with no other delinquency reasons marks the account compliant.
func (b *Billing) RegisterCard(ctx context.Context, accountID id.AccountID, cardType, number string, expiryMonth, expiryYear int, pspReference string) (*card.Card, error) {
	if expiryMonth < 1 || expiryMonth > 12 {
		return nil, types.ValidationError{Field: "expiry_month", Message: "must be between 1 and 12"}
	}
	if expiryYear < 0 || expiryYear > 99 {
		return nil, types.ValidationError{Field: "expiry_year", Message: "must be a two-digit year"}
	}
	if pspReference == "" {
		return nil, types.ValidationError{Field: "psp_reference", Message: "must not be empty"}
	}

	c := card.New(accountID, cardType, number, expiryMonth, expiryYear, pspReference)
	if err := b.store.CreateCard(ctx, c); err != nil {
		return nil, err
	}

	b.logger.Info("card registered", "account_id", accountID, "card_id", c.ID, "type", cardType)

	b.plugins.EmitCardRegistered(ctx, c)

	reasons, err := b.simpleDelinquencyReasons(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(reasons) == 0 {
		if err := b.markCompliant(ctx, accountID, "valid credit card registered"); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// GetCard retrieves a credit card by ID.
func (b *Billing) GetCard(ctx context.Context, cardID id.CardID) (*card.Card, error) {
	return b.store.GetCard(ctx, cardID)
}

// DeactivateCard transitions the card from active to inactive.
func (b *Billing) DeactivateCard(ctx context.Context, cardID id.CardID) error {
	b.logger.Info("deactivating card", "card_id", cardID)

	c, err := b.store.GetCard(ctx, cardID)
	if err != nil {
		return err
	}
	if err := c.Deactivate(); err != nil {
		return err
	}

	return b.store.UpdateCard(ctx, c)
}

// ReactivateCard transitions the card from inactive back to active.
func (b *Billing) ReactivateCard(ctx context.Context, cardID id.CardID) error {
	b.logger.Info("reactivating card", "card_id", cardID)

	c, err := b.store.GetCard(ctx, cardID)
	if err != nil {
		return err
	}
	if err := c.Reactivate(); err != nil {
		return err
	}

	return b.store.UpdateCard(ctx, c)
}
