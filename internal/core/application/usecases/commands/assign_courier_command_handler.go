package commands

import (
	"context"
)

// AssignCourierCommandHandler orchestrates courier binding for a single
// order. Automatic selection offers the order nearest-first within the
// dispatch radius, widening system-wide when the radius is empty; an
// explicit courier is bound directly if still available. Both paths update
// order and courier within one transaction so a binding is never observed
// half-made.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(uowFactory, 5000)
//	cmd, _ := NewAssignCourierCommand(orderID, nil)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrNoCourierAvailable):
//	    log.Println("fleet is busy, order stays queued")
//	case err != nil:
//	    log.Printf("assignment failed: %v", err)
//	}
type AssignCourierCommandHandler struct {
	uowFactory   UoWFactory
	radiusMeters float64
}

// NewAssignCourierCommandHandler creates a handler for courier assignment
// operations. radiusMeters bounds the initial nearest-first search.
func NewAssignCourierCommandHandler(uowFactory UoWFactory, radiusMeters float64) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory:   uowFactory,
		radiusMeters: radiusMeters,
	}
}

// Handle processes the courier assignment command.
// Returns services.ErrNoCourierAvailable when automatic selection exhausts
// the fleet, and courier.ErrCourierUnavailable when an explicitly requested
// courier cannot take the order.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) error {
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

	if requested := cmd.CourierID(); requested != nil {
		candidate, err := courierRepo.Get(ctx, *requested)
		if err != nil {
			return err
		}

		if err = aggregate.ValidateAssignable(); err != nil {
			return err
		}
		if err = candidate.Bind(aggregate.ID()); err != nil {
			return err
		}
		if err = aggregate.AssignCourier(candidate.ID()); err != nil {
			return err
		}
		if err = courierRepo.Update(ctx, candidate); err != nil {
			return err
		}
	} else {
		if _, err = assignNearestCourier(ctx, uow, aggregate, h.radiusMeters); err != nil {
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
