package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
)

// RejectOrderCommandHandler handles a courier declining an assignment.
// The rejecting courier is unbound without a delivery credit and the order
// is immediately re-dispatched with that courier excluded. Finding no
// replacement is not a failure: the order stays confirmed and unassigned
// and the dispatch job retries it.
type RejectOrderCommandHandler struct {
	uowFactory   UoWFactory
	radiusMeters float64
}

// NewRejectOrderCommandHandler creates a handler for assignment rejections.
// radiusMeters bounds the re-dispatch search the same way as initial
// dispatch.
func NewRejectOrderCommandHandler(uowFactory UoWFactory, radiusMeters float64) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory:   uowFactory,
		radiusMeters: radiusMeters,
	}
}

// Handle processes the rejection command.
// Rejecting an order without a bound courier, or one already out for
// delivery, surfaces the corresponding domain error. A rejection naming a
// courier other than the bound one fails with order.ErrCourierMismatch.
func (h RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
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
	courierRepo := uow.CourierRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	rejectorID, err := aggregate.UnassignCourier()
	if err != nil {
		return err
	}

	// The rollback on return discards the unassign.
	if !rejectorID.IsEqual(cmd.CourierID()) {
		return order.ErrCourierMismatch
	}

	rejector, err := courierRepo.Get(ctx, rejectorID)
	if err != nil {
		return err
	}

	if err = rejector.Unbind(); err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, rejector); err != nil {
		return err
	}

	_, err = assignNearestCourier(ctx, uow, aggregate, h.radiusMeters, rejectorID)
	if err != nil && !errors.Is(err, services.ErrNoCourierAvailable) {
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
