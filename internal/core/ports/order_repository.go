package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their status and courier assignment.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The write is conditional on the status the aggregate was loaded with:
	// if another transaction changed the order's status in the meantime the
	// update affects no rows and ErrConcurrentModification is returned.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllUnassigned retrieves delivery orders in confirmed, preparing,
	// or ready status that have no courier bound. Used by the dispatch job
	// to retry orders that could not be assigned on confirmation or that
	// lost their courier to a rejection.
	GetAllUnassigned(ctx context.Context) ([]*order.Order, error)
}
