package services

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ErrNoCourierAvailable is returned when the candidate list is exhausted
// without a successful binding. This is an expected dispatch outcome, not a
// failure: the order stays courier-less in its current status and callers
// retry later (operator action or the scheduled re-dispatch job).
var ErrNoCourierAvailable = errors.New("no available courier for dispatch")

// Dispatcher is the domain service that matches a delivery order to a
// courier. Candidates are ranked by great-circle distance from the order's
// restaurant; the nearest available candidate is bound and assigned.
//
// The in-memory binding here is the first half of the atomicity story: the
// persistence layer's compare-and-set on the courier row is the second. When
// two dispatch cycles race for the same courier, both may succeed in memory
// but only one update commits; the loser re-runs dispatch with that courier
// excluded.
//
// Example:
//
//	dispatcher := services.NewDispatcher()
//	assigned, err := dispatcher.Dispatch(ord, candidates)
//	if errors.Is(err, services.ErrNoCourierAvailable) {
//	    // order stays confirmed and courier-less; retry later
//	}
type Dispatcher struct{}

// NewDispatcher creates a Dispatcher.
func NewDispatcher() Dispatcher {
	return Dispatcher{}
}

// Dispatch binds the order to the nearest available candidate, skipping any
// courier in excluded (rejecting couriers sit there for the rest of the
// dispatch cycle, so they are not immediately re-offered the same order).
//
// Candidates that are not Available are skipped, not errors: the list may be
// stale by the time dispatch runs. Candidates without a reported position
// rank behind all positioned candidates but remain eligible; the system-wide
// fallback must be able to use them.
func (d Dispatcher) Dispatch(
	o *order.Order,
	candidates []*courier.Courier,
	excluded ...kernel.UUID,
) (*courier.Courier, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := o.ValidateAssignable(); err != nil {
		return nil, err
	}

	best, err := d.findNearest(o.RestaurantLocation(), candidates, excluded)
	if err != nil {
		return nil, err
	}

	if err = best.Bind(o.ID()); err != nil {
		return nil, err
	}
	if err = o.AssignCourier(best.ID()); err != nil {
		return nil, err
	}

	return best, nil
}

// findNearest scans the candidates for the available courier closest to the
// origin. Ties keep the earlier candidate, so a repository-provided
// nearest-first ordering is preserved.
func (d Dispatcher) findNearest(
	origin kernel.GeoPoint,
	candidates []*courier.Courier,
	excluded []kernel.UUID,
) (*courier.Courier, error) {
	var (
		best         *courier.Courier
		bestDistance = math.MaxFloat64
	)

	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.Status() != courier.Available || isExcluded(c.ID(), excluded) {
			continue
		}

		distance := math.MaxFloat64
		if pos := c.Position(); pos != nil {
			km, err := pos.Point().DistanceKm(origin)
			if err != nil {
				return nil, err
			}
			distance = km
		}

		if distance < bestDistance || best == nil {
			bestDistance = distance
			best = c
		}
	}

	if best == nil {
		return nil, ErrNoCourierAvailable
	}
	return best, nil
}

func isExcluded(id kernel.UUID, excluded []kernel.UUID) bool {
	for _, e := range excluded {
		if id.IsEqual(e) {
			return true
		}
	}
	return false
}
