// Package plugin provides an extensible plugin system for Billing.
// Plugins subscribe to domain notifications emitted by the engine:
// invoices becoming ready, payments succeeding or failing, cards being
// registered, and delinquency status changes.
package plugin

import (
	"context"

	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/transaction"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, b interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnChargeAdded is called when a charge or credit is added to an account.
type OnChargeAdded interface {
	Plugin
	OnChargeAdded(ctx context.Context, c *charge.Charge) error
}

// OnInvoiceIssued is called for each invoice created by invoice generation.
type OnInvoiceIssued interface {
	Plugin
	OnInvoiceIssued(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoicePaid is called when an invoice transitions to paid, whether
// through fund matching or a card payment.
type OnInvoicePaid interface {
	Plugin
	OnInvoicePaid(ctx context.Context, inv *invoice.Invoice) error
}

// OnPaymentFailed is called when a card payment attempt fails. The
// transaction records the failed attempt.
type OnPaymentFailed interface {
	Plugin
	OnPaymentFailed(ctx context.Context, inv *invoice.Invoice, txn *transaction.Transaction) error
}

// OnCardRegistered is called when a credit card is stored on an account.
type OnCardRegistered interface {
	Plugin
	OnCardRegistered(ctx context.Context, c *card.Card) error
}

// OnDelinquencyChanged is called when an account's delinquency flag flips.
type OnDelinquencyChanged interface {
	Plugin
	OnDelinquencyChanged(ctx context.Context, change DelinquencyChange) error
}

// DelinquencyChange is the payload for OnDelinquencyChanged.
type DelinquencyChange struct {
	AccountID  string   `json:"account_id"`
	Delinquent bool     `json:"delinquent"`
	Reasons    []string `json:"reasons,omitempty"`
}
