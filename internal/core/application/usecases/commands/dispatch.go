package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// assignNearestCourier finds and binds the nearest available courier to the
// given delivery order within the current transaction. It first offers
// couriers inside radiusMeters of the restaurant, then widens to every
// available courier system-wide. A courier whose conditional update is lost
// to a concurrent binder is excluded and the search repeats with the next
// candidate. Returns the bound courier with its row already updated; the
// caller persists the order and commits.
//
// Returns services.ErrNoCourierAvailable when the candidate pool is
// exhausted. That is a normal outcome for the callers, not a failure: the
// order stays unassigned and the dispatch job retries it later.
func assignNearestCourier(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	radiusMeters float64,
	excluded ...kernel.UUID,
) (*courier.Courier, error) {
	dispatcher := services.NewDispatcher()
	courierRepo := uow.CourierRepository()

	excludedIDs := make([]kernel.UUID, len(excluded))
	copy(excludedIDs, excluded)

	for {
		candidates, err := courierRepo.GetAvailableWithin(ctx, o.RestaurantLocation(), radiusMeters)
		if err != nil {
			return nil, err
		}

		assigned, err := dispatcher.Dispatch(o, candidates, excludedIDs...)
		if errors.Is(err, services.ErrNoCourierAvailable) {
			candidates, err = courierRepo.GetAllAvailable(ctx, o.RestaurantLocation())
			if err != nil {
				return nil, err
			}
			assigned, err = dispatcher.Dispatch(o, candidates, excludedIDs...)
		}
		if err != nil {
			return nil, err
		}

		err = courierRepo.Update(ctx, assigned)
		if errors.Is(err, ports.ErrConcurrentModification) {
			// Another binder won this courier. Drop the local binding and
			// offer the order to the next candidate.
			excludedIDs = append(excludedIDs, assigned.ID())
			if _, err = o.UnassignCourier(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		return assigned, nil
	}
}
