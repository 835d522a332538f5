package audithook

// Action constants for audit events.
const (
	// Charge actions
	ActionChargeAdded    = "charge.added"
	ActionChargeReversed = "charge.reversed"

	// Invoice actions
	ActionInvoiceIssued = "invoice.issued"
	ActionInvoicePaid   = "invoice.paid"

	// Payment actions
	ActionPaymentFailed = "payment.failed"

	// Card actions
	ActionCardRegistered = "card.registered"

	// Delinquency actions
	ActionDelinquencyFlagged = "delinquency.flagged"
	ActionDelinquencyCleared = "delinquency.cleared"
)

// Resource constants for audit events.
const (
	ResourceCharge  = "charge"
	ResourceInvoice = "invoice"
	ResourceCard    = "credit_card"
	ResourceAccount = "account"
)

// Category constants for audit events.
const (
	CategoryBilling = "billing"
	CategoryPayment = "payment"
	CategoryRisk    = "risk"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
