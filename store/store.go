// Package store defines the unified storage interface for Billing.
package store

import (
	"context"
	"time"

	"github.com/xraph/billing/account"
	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/eventlog"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/transaction"
)

// Store is the unified storage interface for all Billing entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Guarded methods (AssignChargeToInvoice, AssignTransactionToInvoice,
// UpdateInvoiceStatus) are conditional writes: they only apply when the
// row is still in the expected state, so concurrent callers cannot
// double-assign a fund or double-flip a status.
type Store interface {
	// Account methods
	CreateAccount(ctx context.Context, a *account.Account) error
	GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error)
	ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error)
	UpdateAccount(ctx context.Context, a *account.Account) error
	SetAccountDelinquent(ctx context.Context, accountID id.AccountID, delinquent bool) error

	// Charge methods
	CreateCharge(ctx context.Context, c *charge.Charge) error
	GetCharge(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error)
	GetChargeIncludingDeleted(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error)
	ListUninvoicedCharges(ctx context.Context, accountID id.AccountID, opts charge.ListOpts) ([]*charge.Charge, error)
	ListChargesByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]*charge.Charge, error)
	ListChargesByAccount(ctx context.Context, accountID id.AccountID) ([]*charge.Charge, error)
	ChargeHasReversal(ctx context.Context, chargeID id.ChargeID) (bool, error)
	MarkChargeDeleted(ctx context.Context, chargeID id.ChargeID) error
	AssignChargeToInvoice(ctx context.Context, chargeID id.ChargeID, invoiceID id.InvoiceID) error

	// Invoice methods
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, accountID id.AccountID, opts invoice.ListOpts) ([]*invoice.Invoice, error)
	ListPendingInvoices(ctx context.Context, accountID id.AccountID) ([]*invoice.Invoice, error)
	ListClosedInvoices(ctx context.Context) ([]*invoice.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID id.InvoiceID, from, to invoice.Status) error

	// Transaction methods. The list methods cover successful
	// transactions only; failed attempts never count toward balances
	// or due amounts.
	CreateTransaction(ctx context.Context, t *transaction.Transaction) error
	GetTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error)
	ListUninvoicedPayments(ctx context.Context, accountID id.AccountID, currency string) ([]*transaction.Transaction, error)
	ListTransactionsByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]*transaction.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID id.AccountID) ([]*transaction.Transaction, error)
	AssignTransactionToInvoice(ctx context.Context, txnID id.TransactionID, invoiceID id.InvoiceID) error

	// Card methods
	CreateCard(ctx context.Context, c *card.Card) error
	GetCard(ctx context.Context, cardID id.CardID) (*card.Card, error)
	ListCards(ctx context.Context, accountID id.AccountID) ([]*card.Card, error)
	UpdateCard(ctx context.Context, c *card.Card) error
	ListValidCards(ctx context.Context, accountID id.AccountID, asOf time.Time) ([]*card.Card, error)

	// Event log methods
	CreateEventLog(ctx context.Context, e *eventlog.EventLog) error
	ListEventLogs(ctx context.Context, accountID id.AccountID, opts eventlog.ListOpts) ([]*eventlog.EventLog, error)

	// Compound methods
	ApplyInvoiceGeneration(ctx context.Context, gen InvoiceGeneration) error
	ApplyFundMatching(ctx context.Context, match FundMatching) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// InvoiceGeneration is one invoice-generation pass over an account:
// the invoices to create and, per invoice, the uninvoiced charges to
// assign to it. Stores apply the whole pass or none of it.
type InvoiceGeneration struct {
	Invoices    []*invoice.Invoice
	Assignments map[id.InvoiceID][]id.ChargeID
}

// FundMatching is the write set of one fund-matching pass over an
// invoice: the funds to assign, whether the invoice should flip to
// paid, and the carry-forward charges to create on overpayment.
// Stores apply the whole set or none of it.
type FundMatching struct {
	InvoiceID      id.InvoiceID
	ChargeIDs      []id.ChargeID
	TransactionIDs []id.TransactionID
	MarkPaid       bool
	NewCharges     []*charge.Charge
}
