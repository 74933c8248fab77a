package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectOrderCommandIsNotConstructed = errors.New(
	"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
)

// RejectOrderCommand represents the bound courier declining an assignment
// before pickup. The binding is cleared and the order is re-dispatched to
// the rest of the fleet, never back to the rejecting courier. The courier
// identity is part of the command so a stale client cannot strip another
// courier's binding.
type RejectOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRejectOrderCommand creates a command for the given courier rejecting
// their assignment on the given order.
func NewRejectOrderCommand(orderID, courierID kernel.UUID) (RejectOrderCommand, error) {
	cmd := RejectOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return RejectOrderCommand{}, err
	}

	if err := cmd.setCourierID(courierID); err != nil {
		return RejectOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRejectOrderCommandIsNotConstructed if validation fails.
func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the rejected order.
func (c RejectOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the identifier of the rejecting courier.
func (c RejectOrderCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *RejectOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RejectOrderCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
