// Package lifecycle defines the payment state machine: which triggers are
// permitted in which payment status, and the transition each one produces.
package lifecycle

import (
	"github.com/ledgerline/settlement/internal/domain/entity"
)

// Trigger represents an action that can move a payment between states
type Trigger string

const (
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
	TriggerFail    Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// transitions maps current status and trigger to the resulting status.
// Approved, Rejected and Failed are terminal: nothing is permitted there.
var transitions = map[entity.PaymentStatus]map[Trigger]entity.PaymentStatus{
	entity.PaymentPending: {
		TriggerApprove: entity.PaymentApproved,
		TriggerReject:  entity.PaymentRejected,
		TriggerFail:    entity.PaymentFailed,
	},
}

// CanFire returns true if the trigger is permitted for the given status
func CanFire(status entity.PaymentStatus, trigger Trigger) bool {
	_, ok := transitions[status][trigger]
	return ok
}

// Fire returns the status the trigger transitions to, or ErrInvalidTransition
// if the trigger is not permitted in the current status
func Fire(status entity.PaymentStatus, trigger Trigger) (entity.PaymentStatus, error) {
	next, ok := transitions[status][trigger]
	if !ok {
		return status, ErrInvalidTransition
	}
	return next, nil
}

// IsTerminal returns true if no trigger is permitted in the given status
func IsTerminal(status entity.PaymentStatus) bool {
	return len(transitions[status]) == 0
}
