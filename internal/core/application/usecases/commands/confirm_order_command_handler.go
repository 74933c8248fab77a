package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
)

// ConfirmOrderCommandHandler confirms a pending order and, for delivery
// orders, immediately attempts courier dispatch in the same transaction.
// Dispatch finding no courier is not a failure: the order commits as
// confirmed and unassigned, and the dispatch job picks it up later.
type ConfirmOrderCommandHandler struct {
	uowFactory   UoWFactory
	radiusMeters float64
}

// NewConfirmOrderCommandHandler creates a handler for order confirmation.
// radiusMeters bounds the initial courier search around the restaurant
// before dispatch widens to the whole fleet.
func NewConfirmOrderCommandHandler(uowFactory UoWFactory, radiusMeters float64) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{
		uowFactory:   uowFactory,
		radiusMeters: radiusMeters,
	}
}

// Handle confirms the order and runs best-effort dispatch.
// Pickup orders are confirmed without any courier involvement.
func (h ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) error {
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

	if err = aggregate.Confirm(); err != nil {
		return err
	}

	if aggregate.DeliveryType() == order.Delivery {
		_, err = assignNearestCourier(ctx, uow, aggregate, h.radiusMeters)
		if err != nil && !errors.Is(err, services.ErrNoCourierAvailable) {
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
