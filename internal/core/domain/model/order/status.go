package order

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order. It implements a state
// machine with a fixed transition table; orders only ever move along its
// edges.
//
// Happy path for delivery orders:
//
//	Pending ──> Confirmed ──> Preparing ──> Ready ──> Delivering ──> Delivered
//
// Pickup orders skip Delivering and go Ready ──> Delivered directly.
// Cancelled is reachable from every non-terminal state. Delivered and
// Cancelled are terminal: no transition leaves them.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status after order placement, awaiting
	// restaurant confirmation.
	Pending

	// Confirmed means the restaurant accepted the order. For delivery orders
	// this is the state in which courier dispatch runs; the order stays
	// Confirmed (with or without a courier) until the restaurant starts
	// preparing.
	Confirmed

	// Preparing means the restaurant is cooking. Delivery orders may only
	// enter Preparing once a courier is bound.
	Preparing

	// Ready means the order is packed and waiting for handoff: courier
	// pickup for delivery orders, customer pickup for pickup orders.
	Ready

	// Delivering means the bound courier has picked the order up and is en
	// route. Pickup orders never enter this state.
	Delivering

	// Delivered is the terminal success state.
	Delivered

	// Cancelled is the terminal failure state, reachable from any
	// non-terminal status.
	Cancelled
)

// ErrIllegalTransition is the sentinel all transition-table violations unwrap
// to, including mutations of terminal orders.
var ErrIllegalTransition = errors.New("illegal order status transition")

// IllegalTransitionError reports an attempted status change that is not an
// edge of the transition table. It is never retried; callers surface it as a
// rejected request.
type IllegalTransitionError struct {
	From Status
	To   Status
}

// NewIllegalTransitionError creates an IllegalTransitionError for the
// attempted edge.
func NewIllegalTransitionError(from, to Status) *IllegalTransitionError {
	return &IllegalTransitionError{From: from, To: to}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// allowedTransitions is the authoritative transition table. Anything not
// listed here is illegal, including every edge out of a terminal state.
// The courier gating on Confirmed -> Preparing and the delivery/pickup split
// on the edges out of Ready are enforced by the Order aggregate, which knows
// the delivery type and courier binding.
func allowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Confirmed, Cancelled},
		Confirmed:  {Preparing, Cancelled},
		Preparing:  {Ready, Cancelled},
		Ready:      {Delivering, Delivered, Cancelled},
		Delivering: {Delivered, Cancelled},
	}
}

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Confirmed:  "confirmed",
		Preparing:  "preparing",
		Ready:      "ready",
		Delivering: "delivering",
		Delivered:  "delivered",
		Cancelled:  "cancelled",
	}
}

// StatusFromString parses a status from its wire/storage representation.
// Returns an error for unrecognized values; Unknown is not accepted.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid order status", s))
}

// Validate checks that the status is one of the defined lifecycle states.
func (s Status) Validate() error {
	if s < Pending || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// String returns the lowercase wire name of the status, e.g. "delivering".
// Implements fmt.Stringer; safe on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is legal from this status.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether from -> to is an edge of the transition
// table. Terminal states have no outgoing edges.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range allowedTransitions()[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo returns the target status if the edge is legal, or an
// IllegalTransitionError otherwise. Used by the Order aggregate as the single
// gate for every status write.
func (s Status) TransitionTo(to Status) (Status, error) {
	if !s.CanTransitionTo(to) {
		return Unknown, NewIllegalTransitionError(s, to)
	}
	return to, nil
}

// Stage returns the 0-4 progress index clients use to render the delivery
// progress bar: pending/confirmed 0, preparing 1, ready 2, delivering 3,
// delivered 4. Cancelled orders have no stage and return -1.
func (s Status) Stage() int {
	switch s {
	case Pending, Confirmed:
		return 0
	case Preparing:
		return 1
	case Ready:
		return 2
	case Delivering:
		return 3
	case Delivered:
		return 4
	default:
		return -1
	}
}
