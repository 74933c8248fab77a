// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
	"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
)

// GetOrderTrackingQuery retrieves the tracking feed for a single order:
// lifecycle status, progress stage, the delivery estimate fixed at order
// placement, and, when a courier is bound, the courier's identity and
// last reported position.
//
// Example:
//
//	query, _ := NewGetOrderTrackingQuery(orderID)
//	handler := NewGetOrderTrackingQueryHandler(db)
//
//	tracking, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve tracking: %w", err)
//	}
//	fmt.Printf("order %s stage %d/4\n", tracking.OrderID, tracking.Stage)
type GetOrderTrackingQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderTrackingQuery creates a query for one order's tracking feed.
func NewGetOrderTrackingQuery(orderID kernel.UUID) (GetOrderTrackingQuery, error) {
	query := GetOrderTrackingQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetOrderTrackingQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderTrackingQueryIsNotConstructed if validation fails.
func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

// OrderID returns the identifier of the tracked order.
func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q *GetOrderTrackingQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

// TrackingCourier is the courier slice of the tracking read model.
// Position is nil until the courier's first location report.
type TrackingCourier struct {
	ID       kernel.UUID
	Name     string
	Phone    string
	Position *kernel.GeoPoint
}

// GetOrderTrackingQueryResponse is the tracking read model for one order.
// Stage is the 0-4 progress index; cancelled orders report -1. Courier is
// nil until dispatch binds one. ActualDeliveryAt is set only once the order
// is delivered.
type GetOrderTrackingQueryResponse struct {
	OrderID             kernel.UUID
	Status              order.Status
	Stage               int
	DeliveryType        order.DeliveryType
	RestaurantLocation  kernel.GeoPoint
	Destination         *kernel.GeoPoint
	Courier             *TrackingCourier
	EstimatedDeliveryAt time.Time
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time
}
