package commands

import (
	"context"
)

// SetCourierStatusCommandHandler applies working-status changes to couriers.
// A busy courier cannot change status until their active order finishes or
// is cancelled; the domain surfaces courier.ErrInvalidStatusTransition for
// that.
type SetCourierStatusCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewSetCourierStatusCommandHandler creates a handler for courier status
// changes.
func NewSetCourierStatusCommandHandler(uowFactory CourierUoWFactory) SetCourierStatusCommandHandler {
	return SetCourierStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the status change command.
func (h SetCourierStatusCommandHandler) Handle(ctx context.Context, cmd SetCourierStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()

	aggregate, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = aggregate.SetStatus(cmd.TargetStatus()); err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
