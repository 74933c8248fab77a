package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPositionIsNotConstructed is returned when using a zero-value Position.
var ErrPositionIsNotConstructed = errors.New("Position must be created via NewPosition constructor")

// Position is a courier's last reported location with its report time.
// Positions are advisory: they feed dispatch distance ranking and the
// tracking feed, and go stale when the courier stops reporting.
type Position struct {
	point     kernel.GeoPoint
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewPosition creates a validated Position from a reported point and the
// report timestamp.
func NewPosition(point kernel.GeoPoint, updatedAt time.Time) (Position, error) {
	if err := point.Validate(); err != nil {
		return Position{}, err
	}
	if updatedAt.IsZero() {
		return Position{}, errs.NewValueIsRequiredError("position timestamp")
	}

	return Position{
		point:     point,
		updatedAt: updatedAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrPositionIsNotConstructed for zero-value positions.
func (p Position) Validate() error {
	return p.guard.Validate(ErrPositionIsNotConstructed)
}

// Point returns the reported coordinates.
func (p Position) Point() kernel.GeoPoint {
	return p.point
}

// UpdatedAt returns when the position was reported.
func (p Position) UpdatedAt() time.Time {
	return p.updatedAt
}

// IsStale reports whether the position is older than maxAge at the given
// time. Stale positions are excluded from radius-bounded dispatch queries.
func (p Position) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(p.updatedAt) > maxAge
}
