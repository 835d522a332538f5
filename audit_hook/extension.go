// Package audithook bridges Billing lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// an audit backend directly. Callers inject a RecorderFunc adapter that
// bridges to the concrete backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/transaction"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnChargeAdded        = (*Extension)(nil)
	_ plugin.OnInvoiceIssued      = (*Extension)(nil)
	_ plugin.OnInvoicePaid        = (*Extension)(nil)
	_ plugin.OnPaymentFailed      = (*Extension)(nil)
	_ plugin.OnCardRegistered     = (*Extension)(nil)
	_ plugin.OnDelinquencyChanged = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// Defined locally so the package stays free of backend dependencies —
// callers inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Billing lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Charge lifecycle hooks
// ──────────────────────────────────────────────────

// OnChargeAdded implements plugin.OnChargeAdded.
func (e *Extension) OnChargeAdded(ctx context.Context, c *charge.Charge) error {
	action := ActionChargeAdded
	if c.ProductCode == charge.Reversal {
		action = ActionChargeReversed
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceCharge, c.ID.String(), CategoryBilling, nil,
		"account_id", c.AccountID.String(),
		"amount", c.Amount.String(),
		"product_code", c.ProductCode,
	)
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceIssued implements plugin.OnInvoiceIssued.
func (e *Extension) OnInvoiceIssued(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceIssued, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryBilling, nil,
		"account_id", inv.AccountID.String(),
		"due_date", inv.DueDate,
	)
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (e *Extension) OnInvoicePaid(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoicePaid, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryPayment, nil,
		"account_id", inv.AccountID.String(),
	)
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (e *Extension) OnPaymentFailed(ctx context.Context, inv *invoice.Invoice, txn *transaction.Transaction) error {
	return e.record(ctx, ActionPaymentFailed, SeverityWarning, OutcomeFailure,
		ResourceInvoice, inv.ID.String(), CategoryPayment, nil,
		"account_id", inv.AccountID.String(),
		"transaction_id", txn.ID.String(),
		"amount", txn.Amount.String(),
		"payment_method", txn.PaymentMethod,
	)
}

// ──────────────────────────────────────────────────
// Card and delinquency hooks
// ──────────────────────────────────────────────────

// OnCardRegistered implements plugin.OnCardRegistered.
func (e *Extension) OnCardRegistered(ctx context.Context, c *card.Card) error {
	return e.record(ctx, ActionCardRegistered, SeverityInfo, OutcomeSuccess,
		ResourceCard, c.ID.String(), CategoryPayment, nil,
		"account_id", c.AccountID.String(),
		"card_type", c.Type,
	)
}

// OnDelinquencyChanged implements plugin.OnDelinquencyChanged.
func (e *Extension) OnDelinquencyChanged(ctx context.Context, change plugin.DelinquencyChange) error {
	action := ActionDelinquencyCleared
	severity := SeverityInfo
	if change.Delinquent {
		action = ActionDelinquencyFlagged
		severity = SeverityWarning
	}
	return e.record(ctx, action, severity, OutcomeSuccess,
		ResourceAccount, change.AccountID, CategoryRisk, nil,
		"delinquent", change.Delinquent,
		"reasons", change.Reasons,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
