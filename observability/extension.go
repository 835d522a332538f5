// Package observability provides a metrics extension for Billing that records
// lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/transaction"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnChargeAdded        = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceIssued      = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePaid        = (*MetricsExtension)(nil)
	_ plugin.OnPaymentFailed      = (*MetricsExtension)(nil)
	_ plugin.OnCardRegistered     = (*MetricsExtension)(nil)
	_ plugin.OnDelinquencyChanged = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Billing plugin to automatically track billing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Charge metrics
	ChargesAdded    Counter
	CreditsAdded    Counter
	ChargesReversed Counter
	ChargeAmount    Histogram

	// Invoice metrics
	InvoicesIssued Counter
	InvoicesPaid   Counter

	// Payment metrics
	PaymentsFailed Counter
	PaymentAmount  Histogram

	// Card metrics
	CardsRegistered Counter

	// Delinquency metrics
	AccountsFlagged Counter
	AccountsCleared Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Charge metrics
		ChargesAdded:    factory.Counter("billing.charge.added"),
		CreditsAdded:    factory.Counter("billing.credit.added"),
		ChargesReversed: factory.Counter("billing.charge.reversed"),
		ChargeAmount:    factory.Histogram("billing.charge.amount"),

		// Invoice metrics
		InvoicesIssued: factory.Counter("billing.invoice.issued"),
		InvoicesPaid:   factory.Counter("billing.invoice.paid"),

		// Payment metrics
		PaymentsFailed: factory.Counter("billing.payment.failed"),
		PaymentAmount:  factory.Histogram("billing.payment.amount"),

		// Card metrics
		CardsRegistered: factory.Counter("billing.card.registered"),

		// Delinquency metrics
		AccountsFlagged: factory.Counter("billing.delinquency.flagged"),
		AccountsCleared: factory.Counter("billing.delinquency.cleared"),

		// Error metrics
		StoreErrors:  factory.Counter("billing.store.errors"),
		PluginErrors: factory.Counter("billing.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Charge lifecycle hooks
// ──────────────────────────────────────────────────

// OnChargeAdded implements plugin.OnChargeAdded.
func (m *MetricsExtension) OnChargeAdded(_ context.Context, c *charge.Charge) error {
	switch {
	case c.ProductCode == charge.Reversal:
		m.ChargesReversed.Inc()
	case c.IsCredit():
		m.CreditsAdded.Inc()
	default:
		m.ChargesAdded.Inc()
	}
	amount, _ := c.Amount.Amount.Abs().Float64()
	m.ChargeAmount.Observe(amount)
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceIssued implements plugin.OnInvoiceIssued.
func (m *MetricsExtension) OnInvoiceIssued(_ context.Context, _ *invoice.Invoice) error {
	m.InvoicesIssued.Inc()
	return nil
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (m *MetricsExtension) OnInvoicePaid(_ context.Context, _ *invoice.Invoice) error {
	m.InvoicesPaid.Inc()
	return nil
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (m *MetricsExtension) OnPaymentFailed(_ context.Context, _ *invoice.Invoice, txn *transaction.Transaction) error {
	m.PaymentsFailed.Inc()
	amount, _ := txn.Amount.Amount.Abs().Float64()
	m.PaymentAmount.Observe(amount)
	return nil
}

// ──────────────────────────────────────────────────
// Card and delinquency hooks
// ──────────────────────────────────────────────────

// OnCardRegistered implements plugin.OnCardRegistered.
func (m *MetricsExtension) OnCardRegistered(_ context.Context, _ *card.Card) error {
	m.CardsRegistered.Inc()
	return nil
}

// OnDelinquencyChanged implements plugin.OnDelinquencyChanged.
func (m *MetricsExtension) OnDelinquencyChanged(_ context.Context, change plugin.DelinquencyChange) error {
	if change.Delinquent {
		m.AccountsFlagged.Inc()
	} else {
		m.AccountsCleared.Inc()
	}
	return nil
}
