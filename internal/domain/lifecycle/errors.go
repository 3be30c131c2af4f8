package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in
	// the payment's current status
	ErrInvalidTransition = errors.New("invalid state transition")
)
