package commands

import (
	"context"
)

// CancelOrderCommandHandler cancels an order and, if a courier was bound,
// unbinds that courier in the same transaction. The courier returns to
// available without a delivery credit.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(uowFactory UoWFactory) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the cancellation command.
// Cancelling a delivered or already cancelled order surfaces the domain's
// order.IllegalTransitionError.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	unboundCourierID, err := aggregate.Cancel()
	if err != nil {
		return err
	}

	if unboundCourierID != nil {
		courierRepo := uow.CourierRepository()

		assigned, err := courierRepo.Get(ctx, *unboundCourierID)
		if err != nil {
			return err
		}

		if err = assigned.Unbind(); err != nil {
			return err
		}

		if err = courierRepo.Update(ctx, assigned); err != nil {
			return err
		}
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
