package billing

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("billing: not found")
	ErrAlreadyExists = errors.New("billing: already exists")
	ErrInvalidInput  = errors.New("billing: invalid input")

	// Account errors
	ErrAccountNotFound = errors.New("billing: account not found")

	// Charge errors
	ErrChargeNotFound = errors.New("billing: charge not found")
	// ErrChargeAlreadyCancelled indicates the charge was already
	// soft-deleted or already reversed; cancellation is one-shot.
	ErrChargeAlreadyCancelled = errors.New("billing: charge already cancelled")

	// Invoice errors
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	// ErrStatusConflict indicates a guarded status flip found the
	// invoice no longer in the expected state.
	ErrStatusConflict = errors.New("billing: invoice status changed concurrently")

	// Transaction errors
	ErrTransactionNotFound = errors.New("billing: transaction not found")
	// ErrFundAssigned indicates an unassigned fund was grabbed by a
	// concurrent fund-matching pass.
	ErrFundAssigned = errors.New("billing: fund already assigned to an invoice")

	// Card errors
	ErrCardNotFound = errors.New("billing: credit card not found")

	// Event log errors
	ErrEventLogNotFound = errors.New("billing: event log entry not found")

	// Store errors
	ErrStoreNotReady   = errors.New("billing: store not ready")
	ErrStoreClosed     = errors.New("billing: store is closed")
	ErrMigrationFailed = errors.New("billing: migration failed")
)

// PreconditionError indicates an entity is not in a state that permits
// the requested operation: a closed account, a non-pending invoice, an
// empty or multi-currency due amount, no usable card. Precondition
// failures happen before any side effect.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("billing: %s: precondition failed: %s", e.Op, e.Reason)
}

// IsPrecondition returns true if the error is a precondition failure.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "billing: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("billing: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrChargeNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrEventLogNotFound)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrStatusConflict) ||
		errors.Is(err, ErrFundAssigned)
}
