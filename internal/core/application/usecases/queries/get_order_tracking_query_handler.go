package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderTrackingQueryHandler retrieves the tracking read model for one
// order. Uses a single SQL join over orders and couriers for optimal read
// performance in the CQRS pattern.
type GetOrderTrackingQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderTrackingQueryHandler creates a handler for tracking queries.
// Requires a GORM database connection for query execution.
func NewGetOrderTrackingQueryHandler(db *gorm.DB) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{db: db}
}

// Handle executes the tracking query.
// Returns errs.ErrObjectNotFound when no order exists with the given ID.
func (h GetOrderTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTrackingQuery,
) (GetOrderTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.status,
			o.delivery_type,
			o.restaurant_lat,
			o.restaurant_lng,
			o.dest_lat,
			o.dest_lng,
			o.estimated_delivery_at,
			o.actual_delivery_at,
			o.created_at,
			c.id,
			c.name,
			c.phone_number,
			c.pos_lat,
			c.pos_lng
		FROM orders o
		LEFT JOIN couriers c ON c.id = o.courier_id
		WHERE o.id = ?
	`, query.OrderID().String()).Row()

	var (
		id                  uuid.UUID
		status              string
		deliveryType        string
		restaurantLat       float64
		restaurantLng       float64
		destLat             sql.NullFloat64
		destLng             sql.NullFloat64
		estimatedDeliveryAt time.Time
		actualDeliveryAt    sql.NullTime
		createdAt           time.Time
		courierID           uuid.NullUUID
		courierName         sql.NullString
		courierPhone        sql.NullString
		courierLat          sql.NullFloat64
		courierLng          sql.NullFloat64
	)

	err := row.Scan(
		&id, &status, &deliveryType,
		&restaurantLat, &restaurantLng,
		&destLat, &destLng,
		&estimatedDeliveryAt, &actualDeliveryAt, &createdAt,
		&courierID, &courierName, &courierPhone, &courierLat, &courierLng,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderTrackingQueryResponse{},
			errs.NewObjectNotFoundError("orderId", query.OrderID().String())
	}
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	response := GetOrderTrackingQueryResponse{
		EstimatedDeliveryAt: estimatedDeliveryAt,
		CreatedAt:           createdAt,
	}

	response.OrderID, err = kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	response.Status, err = order.StatusFromString(status)
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}
	response.Stage = response.Status.Stage()

	response.DeliveryType, err = order.DeliveryTypeFromString(deliveryType)
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	response.RestaurantLocation, err = kernel.NewGeoPoint(restaurantLat, restaurantLng)
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	if destLat.Valid && destLng.Valid {
		destination, pointErr := kernel.NewGeoPoint(destLat.Float64, destLng.Float64)
		if pointErr != nil {
			return GetOrderTrackingQueryResponse{}, pointErr
		}
		response.Destination = &destination
	}

	if actualDeliveryAt.Valid {
		at := actualDeliveryAt.Time
		response.ActualDeliveryAt = &at
	}

	if courierID.Valid {
		tracked := TrackingCourier{Name: courierName.String, Phone: courierPhone.String}

		tracked.ID, err = kernel.UUIDFromBytes(courierID.UUID[:])
		if err != nil {
			return GetOrderTrackingQueryResponse{}, err
		}

		if courierLat.Valid && courierLng.Valid {
			position, pointErr := kernel.NewGeoPoint(courierLat.Float64, courierLng.Float64)
			if pointErr != nil {
				return GetOrderTrackingQueryResponse{}, pointErr
			}
			tracked.Position = &position
		}

		response.Courier = &tracked
	}

	return response, nil
}
