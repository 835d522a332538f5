// Package transaction defines records of money moved through a payment
// provider.
//
// A transaction has a signed amount. A positive amount is a payment,
// a negative amount is a refund. Only successful transactions count
// toward balances and invoice due amounts; failed attempts are kept
// for audit.
package transaction

import (
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

// Transaction records one payment-provider call attempt.
type Transaction struct {
	types.Entity
	ID        id.TransactionID `json:"id"`
	AccountID id.AccountID     `json:"account_id"`

	// InvoiceID is Nil while the funds are unassigned.
	InvoiceID id.InvoiceID `json:"invoice_id"`

	Amount  types.Money `json:"amount"`
	Success bool        `json:"success"`

	// PaymentMethod is the card type the attempt used, e.g. "VIS".
	PaymentMethod string `json:"payment_method"`

	// CardNumber is the masked number of the card charged.
	CardNumber string    `json:"card_number,omitempty"`
	CardID     id.CardID `json:"card_id"`

	// PSPReference identifies the provider-side object that effected
	// the movement, as "scheme:path".
	PSPReference string `json:"psp_reference,omitempty"`
}

// New creates an unassigned Transaction for the given account.
func New(accountID id.AccountID, amount types.Money, success bool) *Transaction {
	return &Transaction{
		Entity:    types.NewEntity(),
		ID:        id.NewTransactionID(),
		AccountID: accountID,
		Amount:    amount,
		Success:   success,
	}
}

// IsPayment reports whether the transaction is a payment (positive amount).
func (t *Transaction) IsPayment() bool { return t.Amount.IsPositive() }

// IsRefund reports whether the transaction is a refund (negative amount).
func (t *Transaction) IsRefund() bool { return t.Amount.IsNegative() }
