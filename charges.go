package billing

import (
	"context"

	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// ChargeOption configures a charge at creation time.
type ChargeOption func(*charge.Charge)

// WithProductCode sets the product code identifying the kind of product
// being charged or credited.
func WithProductCode(code string) ChargeOption {
	return func(c *charge.Charge) { c.ProductCode = code }
}

// WithAdHocLabel sets a free-text label shown verbatim to the user.
func WithAdHocLabel(label string) ChargeOption {
	return func(c *charge.Charge) { c.AdHocLabel = label }
}

// WithReverses marks the charge as a reversal of a prior charge.
func WithReverses(chargeID id.ChargeID) ChargeOption {
	return func(c *charge.Charge) { c.Reverses = chargeID }
}

// WithProperties attaches product attributes to the charge.
func WithProperties(props map[string]string) ChargeOption {
	return func(c *charge.Charge) { c.Properties = props }
}

// AddCharge adds a charge to the account. A negative amount is a
// credit. Either a product code or an ad-hoc label is required.
func (b *Billing) AddCharge(ctx context.Context, accountID id.AccountID, amount types.Money, opts ...ChargeOption) (*charge.Charge, error) {
	c := charge.New(accountID, amount)
	for _, opt := range opts {
		opt(c)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	b.logger.Info("adding charge",
		"account_id", accountID,
		"amount", amount,
		"product_code", c.ProductCode,
	)

	if err := b.store.CreateCharge(ctx, c); err != nil {
		return nil, err
	}

	b.plugins.EmitChargeAdded(ctx, c)

	return c, nil
}

// GetCharge retrieves a charge by ID.
func (b *Billing) GetCharge(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	return b.store.GetCharge(ctx, chargeID)
}

// CancelCharge cancels an existing charge.
//
// An uninvoiced charge is soft-deleted. An invoiced charge cannot be
// removed from its invoice, so a reversal credit of the negated amount
// is created instead, pointing back at the original. Cancelling a
// charge that is already deleted or already reversed returns
// ErrChargeAlreadyCancelled.
func (b *Billing) CancelCharge(ctx context.Context, chargeID id.ChargeID) error {
	b.logger.Info("cancelling charge", "charge_id", chargeID)

	c, err := b.store.GetChargeIncludingDeleted(ctx, chargeID)
	if err != nil {
		return err
	}

	if c.Deleted {
		return ErrChargeAlreadyCancelled
	}
	reversed, err := b.store.ChargeHasReversal(ctx, chargeID)
	if err != nil {
		return err
	}
	if reversed {
		return ErrChargeAlreadyCancelled
	}

	if !c.IsInvoiced() {
		return b.store.MarkChargeDeleted(ctx, chargeID)
	}

	_, err = b.AddCharge(ctx, c.AccountID, c.Amount.Negate(),
		WithProductCode(charge.Reversal),
		WithReverses(chargeID),
	)
	return err
}
