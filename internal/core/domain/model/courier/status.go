package courier

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents a courier's availability state.
//
// State transitions:
//
//	Offline <──> Available ──> Busy ──> Available ──> ...
//
// Busy is only ever entered through Courier.Bind, never by a direct status
// set; this keeps the status and the order binding in lockstep. A busy
// courier must complete or be unbound from its order before going offline.
type Status int

const (
	// StatusUnknown catches uninitialized values.
	StatusUnknown Status = iota

	// Offline couriers are off shift and never considered for dispatch.
	// Soft deactivation is modeled as a permanent Offline status; couriers
	// with delivery history are never deleted.
	Offline

	// Available couriers are on shift with no active order and are dispatch
	// candidates.
	Available

	// Busy couriers are bound to exactly one active order.
	Busy
)

// ErrInvalidStatusTransition is returned for direct status sets that would
// break the binding invariant: entering Busy directly, or leaving Busy
// without completing or unbinding the active order.
var ErrInvalidStatusTransition = errors.New("invalid courier status transition")

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "unknown",
		Offline:       "offline",
		Available:     "available",
		Busy:          "busy",
	}
}

// StatusFromString parses a courier status from its wire/storage
// representation.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != StatusUnknown {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid courier status", s))
}

// Validate checks that the status is one of the defined values.
func (s Status) Validate() error {
	if s < Offline || s > Busy {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid courier status", s))
	}
	return nil
}

// String returns the lowercase wire name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}
