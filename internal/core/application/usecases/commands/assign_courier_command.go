package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand requests a courier binding for a delivery order.
// When courierID is nil the nearest available courier is selected
// automatically; a non-nil courierID forces that specific courier.
//
// Example:
//
//	cmd, _ := NewAssignCourierCommand(orderID, nil)
//	handler := NewAssignCourierCommandHandler(uowFactory, radiusMeters)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, services.ErrNoCourierAvailable) {
//	    log.Printf("no courier for order %s yet", orderID)
//	}
type AssignCourierCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignCourierCommand creates a command to bind a courier to an order.
// Pass nil courierID for automatic nearest-first selection.
func NewAssignCourierCommand(orderID kernel.UUID, courierID *kernel.UUID) (AssignCourierCommand, error) {
	cmd := AssignCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCourierID(courierID),
	); err != nil {
		return AssignCourierCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignCourierCommandIsNotConstructed if validation fails.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to assign.
func (c AssignCourierCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the explicitly requested courier, nil for automatic
// selection.
func (c AssignCourierCommand) CourierID() *kernel.UUID {
	return c.courierID
}

func (c *AssignCourierCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AssignCourierCommand) setCourierID(courierID *kernel.UUID) error {
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return err
		}
	}

	c.courierID = courierID
	return nil
}
