package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrSetCourierStatusCommandIsNotConstructed = errors.New(
	"SetCourierStatusCommand must be created via NewSetCourierStatusCommand constructor",
)

// SetCourierStatusCommand toggles a courier between offline and available.
// Busy is never set directly: it is only entered through order binding.
type SetCourierStatusCommand struct { //nolint:recvcheck //using for validation
	courierID    kernel.UUID
	targetStatus courier.Status

	guard guard.ConstructorGuard
}

// NewSetCourierStatusCommand creates a command to change a courier's
// working status. Only offline and available are accepted.
func NewSetCourierStatusCommand(courierID kernel.UUID, targetStatus courier.Status) (SetCourierStatusCommand, error) {
	cmd := SetCourierStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setTargetStatus(targetStatus),
	); err != nil {
		return SetCourierStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSetCourierStatusCommandIsNotConstructed if validation fails.
func (c SetCourierStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierStatusCommandIsNotConstructed)
}

// CourierID returns the identifier of the courier being updated.
func (c SetCourierStatusCommand) CourierID() kernel.UUID {
	return c.courierID
}

// TargetStatus returns the status the courier should move to.
func (c SetCourierStatusCommand) TargetStatus() courier.Status {
	return c.targetStatus
}

func (c *SetCourierStatusCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *SetCourierStatusCommand) setTargetStatus(targetStatus courier.Status) error {
	switch targetStatus {
	case courier.Offline, courier.Available:
	default:
		return errs.NewValueIsInvalidError("targetStatus")
	}

	c.targetStatus = targetStatus
	return nil
}
