// Package charge defines signed ledger entries against an account.
//
// A charge has a signed amount. A positive amount is money owed by the
// account holder; a negative amount is a credit available to offset
// future or current debt.
package charge

import (
	"fmt"
	"regexp"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// Well-known product codes written by the fund-matching engine.
const (
	// CarriedForward tags the positive charge created on an overpaid
	// invoice so its recorded goods reflect the genuine debt.
	CarriedForward = "CARRIED_FORWARD"

	// CreditRemaining tags the unassigned negative charge holding the
	// overpaid remainder, available to pay future invoices.
	CreditRemaining = "CREDIT_REMAINING"

	// Reversal tags the credit created when an invoiced charge is cancelled.
	Reversal = "REVERSAL"
)

var (
	productCodeRe  = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)
	propertyNameRe = regexp.MustCompile(`^[a-z]\w*$`)
)

// Charge is a signed monetary entry against an account.
type Charge struct {
	types.Entity
	ID        id.ChargeID  `json:"id"`
	AccountID id.AccountID `json:"account_id"`

	// InvoiceID is Nil while the charge is uninvoiced. Assigning a
	// charge to an invoice is how invoicing and fund matching consume it.
	InvoiceID id.InvoiceID `json:"invoice_id"`

	Amount types.Money `json:"amount"`

	// At least one of ProductCode and AdHocLabel must be set.
	ProductCode string `json:"product_code,omitempty"`
	AdHocLabel  string `json:"ad_hoc_label,omitempty"`

	// Reverses points at the charge this one cancels out. A charge may
	// be reversed at most once.
	Reverses id.ChargeID `json:"reverses"`

	// Deleted soft-deletes the charge. Deleted charges are excluded
	// from ledger queries but kept for audit.
	Deleted bool `json:"deleted,omitempty"`

	// Properties carries free-form product attributes. Names must start
	// with a letter and contain only letters, digits, and underscores.
	Properties map[string]string `json:"properties,omitempty"`
}

// New creates an uninvoiced Charge for the given account.
func New(accountID id.AccountID, amount types.Money) *Charge {
	return &Charge{
		Entity:    types.NewEntity(),
		ID:        id.NewChargeID(),
		AccountID: accountID,
		Amount:    amount,
	}
}

// Validate checks the creation invariants: a label or product code must
// be present, the product code must match its format, and property
// names must be well-formed identifiers.
func (c *Charge) Validate() error {
	if c.AdHocLabel == "" && c.ProductCode == "" {
		return types.ValidationError{
			Field:   "product_code",
			Message: "either the ad-hoc label or the product code must be filled",
		}
	}
	if c.ProductCode != "" && !productCodeRe.MatchString(c.ProductCode) && !isReservedCode(c.ProductCode) {
		return types.ValidationError{
			Field:   "product_code",
			Message: fmt.Sprintf("%q must be 4 to 10 uppercase letters or digits", c.ProductCode),
		}
	}
	for name := range c.Properties {
		if !propertyNameRe.MatchString(name) {
			return types.ValidationError{
				Field:   "properties",
				Message: fmt.Sprintf("%q must be a letter followed by letters, digits, or underscores", name),
			}
		}
	}
	return nil
}

// isReservedCode exempts the codes the engine itself writes, which are
// longer than the user-facing format allows.
func isReservedCode(code string) bool {
	return code == CarriedForward || code == CreditRemaining
}

// IsCredit reports whether the charge is a credit (negative amount).
func (c *Charge) IsCredit() bool { return c.Amount.IsNegative() }

// IsInvoiced reports whether the charge has been assigned to an invoice.
func (c *Charge) IsInvoiced() bool { return !c.InvoiceID.IsNil() }
