package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAllCouriersQueryHandler retrieves all courier information from the
// database. Uses direct SQL queries for optimal read performance in the
// CQRS pattern.
type GetAllCouriersQueryHandler struct {
	db *gorm.DB
}

// NewGetAllCouriersQueryHandler creates a handler for courier retrieval queries.
// Requires a GORM database connection for query execution.
func NewGetAllCouriersQueryHandler(db *gorm.DB) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{db: db}
}

// Handle executes the query to retrieve all couriers.
// Returns a slice of courier read models sorted by name.
func (h GetAllCouriersQueryHandler) Handle(
	ctx context.Context,
	query GetAllCouriersQuery,
) ([]GetAllCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]GetAllCouriersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			phone_number,
			status,
			pos_lat,
			pos_lng,
			current_order_id,
			total_deliveries
		FROM couriers
		ORDER BY name
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var response GetAllCouriersQueryResponse
		var id uuid.UUID
		var status string
		var posLat, posLng sql.NullFloat64
		var currentOrderID uuid.NullUUID

		err = rows.Scan(
			&id,
			&response.Name,
			&response.PhoneNumber,
			&status,
			&posLat,
			&posLng,
			&currentOrderID,
			&response.TotalDeliveries,
		)
		if err != nil {
			return nil, err
		}

		response.ID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}

		response.Status, err = courier.StatusFromString(status)
		if err != nil {
			return nil, err
		}

		if posLat.Valid && posLng.Valid {
			position, pointErr := kernel.NewGeoPoint(posLat.Float64, posLng.Float64)
			if pointErr != nil {
				return nil, pointErr
			}
			response.Position = &position
		}

		if currentOrderID.Valid {
			active, idErr := kernel.UUIDFromBytes(currentOrderID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			response.CurrentOrderID = &active
		}

		couriers = append(couriers, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
