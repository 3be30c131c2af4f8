package settlement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerline/settlement/internal/domain/entity"
)

// ErrConcurrencyConflict is returned when an obligation was modified by a
// concurrent writer between read and write
var ErrConcurrencyConflict = errors.New("obligation modified concurrently")

// ValidationError reports a request that can never be applied: a
// non-positive amount, obligations spanning counterparties, a partial
// payment covering the full outstanding balance, and similar.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError creates a ValidationError with a formatted reason
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a payment or obligation id that does not resolve
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InvalidStateTransitionError reports an approve or reject attempted on a
// payment that is no longer Pending
type InvalidStateTransitionError struct {
	PaymentID int64
	Status    entity.PaymentStatus
	Action    string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s payment %d in status %s", e.Action, e.PaymentID, e.Status)
}

// FailureDetail names one obligation whose update failed and why
type FailureDetail struct {
	ObligationID int64
	Message      string
}

// AllocationFailure reports that one or more obligation updates failed
// while applying, approving or rejecting a payment
type AllocationFailure struct {
	PaymentID int64
	Details   []FailureDetail
}

func (e *AllocationFailure) Error() string {
	return fmt.Sprintf("allocation failed for payment %d: %s", e.PaymentID, e.Log())
}

// Log renders the per-obligation detail as a single line suitable for the
// payment's error log
func (e *AllocationFailure) Log() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		if d.ObligationID != 0 {
			parts = append(parts, fmt.Sprintf("obligation %d: %s", d.ObligationID, d.Message))
		} else {
			parts = append(parts, d.Message)
		}
	}
	return strings.Join(parts, "; ")
}
