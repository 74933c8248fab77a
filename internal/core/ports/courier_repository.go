// Package ports defines repository interfaces for the dispatch domain.
// These interfaces establish contracts between the domain layer and infrastructure,
// enabling dependency inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
// Provides methods for storing, retrieving, and querying courier entities
// with their status, current binding and last reported position.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	// The write is conditional on the status the aggregate was loaded with:
	// if another transaction changed the courier's status in the meantime the
	// update affects no rows and ErrConcurrentModification is returned.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAll retrieves every courier regardless of status.
	GetAll(ctx context.Context) ([]*courier.Courier, error)

	// GetAvailableWithin retrieves available couriers whose last reported
	// position lies within radiusMeters of origin, ordered nearest first.
	// Couriers whose position is older than the staleness horizon are
	// excluded, as are couriers that never reported a position.
	GetAvailableWithin(ctx context.Context, origin kernel.GeoPoint, radiusMeters float64) ([]*courier.Courier, error)

	// GetAllAvailable retrieves every available courier system-wide, ordered
	// by distance from origin. Couriers without a usable position sort last
	// but are still returned. Used as the fallback when no courier is found
	// inside the dispatch radius.
	GetAllAvailable(ctx context.Context, origin kernel.GeoPoint) ([]*courier.Courier, error)
}
