package courierrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// haversineMeters is the great-circle distance between a courier's last
// reported position and the given origin, computed in SQL over a 6371 km
// sphere. Must stay in lockstep with kernel.GeoPoint.DistanceMeters.
const haversineMeters = `
	2 * 6371000.0 * asin(sqrt(
		pow(sin(radians(pos_lat - ?) / 2), 2) +
		cos(radians(?)) * cos(radians(pos_lat)) *
		pow(sin(radians(pos_lng - ?) / 2), 2)
	))`

// GormCourierRepository implements CourierRepository using GORM.
// maxPositionAge is the staleness horizon: positions older than this are
// ignored by the radius query so dispatch never chases a courier that
// stopped reporting.
type GormCourierRepository struct {
	db             *gorm.DB
	tracker        aggregateTracker
	maxPositionAge time.Duration
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker, maxPositionAge time.Duration) *GormCourierRepository {
	return &GormCourierRepository{
		db:             db,
		tracker:        tracker,
		maxPositionAge: maxPositionAge,
	}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing courier to the database. The write is
// conditional on the status the aggregate was loaded with; when two
// dispatchers race to bind the same courier, exactly one update matches
// the row and the loser gets ports.ErrConcurrentModification.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ? AND status = ?", dto.ID, aggregate.LoadedStatus().String()).
		Updates(map[string]any{
			"status":           dto.Status,
			"current_order_id": dto.CurrentOrderID,
			"pos_lat":          dto.PosLat,
			"pos_lng":          dto.PosLng,
			"pos_updated_at":   dto.PosUpdatedAt,
			"total_deliveries": dto.TotalDeliveries,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ports.ErrConcurrentModification
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every courier regardless of status, sorted by name.
func (r *GormCourierRepository) GetAll(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).Order("name").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAvailableWithin retrieves available couriers with a fresh position
// inside radiusMeters of origin, nearest first.
func (r *GormCourierRepository) GetAvailableWithin(
	ctx context.Context,
	origin kernel.GeoPoint,
	radiusMeters float64,
) ([]*courier.Courier, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	horizon := time.Now().Add(-r.maxPositionAge)

	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).Raw(`
		SELECT *
		FROM (
			SELECT *, `+haversineMeters+` AS distance_m
			FROM couriers
			WHERE status = ?
			  AND pos_lat IS NOT NULL
			  AND pos_lng IS NOT NULL
			  AND pos_updated_at >= ?
		) ranked
		WHERE distance_m <= ?
		ORDER BY distance_m
	`,
		origin.Lat(), origin.Lat(), origin.Lng(),
		courier.Available.String(), horizon, radiusMeters,
	).Scan(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAllAvailable retrieves every available courier system-wide, nearest
// known position first. Couriers with no position or a stale one sort last
// but are still returned; the system-wide fallback would rather send a
// far or silent courier than nobody.
func (r *GormCourierRepository) GetAllAvailable(
	ctx context.Context,
	origin kernel.GeoPoint,
) ([]*courier.Courier, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).Raw(`
		SELECT *,
			CASE WHEN pos_lat IS NULL OR pos_lng IS NULL
				THEN NULL
				ELSE `+haversineMeters+`
			END AS distance_m
		FROM couriers
		WHERE status = ?
		ORDER BY distance_m NULLS LAST, name
	`,
		origin.Lat(), origin.Lat(), origin.Lng(),
		courier.Available.String(),
	).Scan(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []CourierDTO) ([]*courier.Courier, error) {
	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}
