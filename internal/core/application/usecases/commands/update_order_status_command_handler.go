package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// UpdateOrderStatusCommandHandler applies lifecycle transitions to orders.
// Marking an order delivered also completes the bound courier in the same
// transaction: the courier returns to available and its delivery counter
// increments atomically with the order's terminal transition.
type UpdateOrderStatusCommandHandler struct {
	uowFactory UoWFactory
}

// NewUpdateOrderStatusCommandHandler creates a handler for order status
// transitions.
func NewUpdateOrderStatusCommandHandler(uowFactory UoWFactory) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the status transition command.
// Illegal transitions surface the domain's order.IllegalTransitionError.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
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

	switch cmd.TargetStatus() {
	case order.Preparing:
		err = aggregate.StartPreparing()
	case order.Ready:
		err = aggregate.MarkReady()
	case order.Delivering:
		err = aggregate.StartDelivering()
	case order.Delivered:
		err = h.deliver(ctx, uow, aggregate)
	}
	if err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}

// deliver finishes the order and frees its courier, if one is bound.
func (h UpdateOrderStatusCommandHandler) deliver(ctx context.Context, uow UoW, aggregate *order.Order) error {
	courierID := aggregate.CourierID()

	if err := aggregate.MarkDelivered(time.Now()); err != nil {
		return err
	}

	if courierID == nil {
		return nil
	}

	courierRepo := uow.CourierRepository()
	assigned, err := courierRepo.Get(ctx, *courierID)
	if err != nil {
		return err
	}

	if err = assigned.Complete(); err != nil {
		return err
	}

	return courierRepo.Update(ctx, assigned)
}
