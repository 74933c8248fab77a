package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves all non-terminal orders from the
// database. Uses direct SQL for optimal read performance in the CQRS
// pattern.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active-order queries.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all active orders.
// Returns orders oldest first so the dispatch backlog reads top-down.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			delivery_type,
			courier_id,
			total_amount_cents,
			estimated_delivery_at,
			created_at
		FROM orders
		WHERE status NOT IN ('delivered', 'cancelled')
		ORDER BY created_at
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var response GetActiveOrdersQueryResponse
		var id uuid.UUID
		var status, deliveryType string
		var courierID uuid.NullUUID

		err = rows.Scan(
			&id,
			&status,
			&deliveryType,
			&courierID,
			&response.TotalAmountCents,
			&response.EstimatedDeliveryAt,
			&response.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		response.ID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}

		response.Status, err = order.StatusFromString(status)
		if err != nil {
			return nil, err
		}
		response.Stage = response.Status.Stage()

		response.DeliveryType, err = order.DeliveryTypeFromString(deliveryType)
		if err != nil {
			return nil, err
		}

		if courierID.Valid {
			assigned, idErr := kernel.UUIDFromBytes(courierID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			response.CourierID = &assigned
		}

		orders = append(orders, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
