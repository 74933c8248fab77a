// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
// Status is stored as its lowercase wire string; the position columns are
// null until the courier's first location report.
type CourierDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name            string     `gorm:"type:varchar(255);not null"`
	PhoneNumber     string     `gorm:"type:varchar(32);not null"`
	Status          string     `gorm:"type:varchar(16);not null;index"`
	CurrentOrderID  *uuid.UUID `gorm:"type:uuid;index"`
	PosLat          *float64   `gorm:"type:double precision"`
	PosLng          *float64   `gorm:"type:double precision"`
	PosUpdatedAt    *time.Time
	TotalDeliveries int `gorm:"not null;default:0"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	var currentOrderID *uuid.UUID
	if id := aggregate.CurrentOrderID(); id != nil {
		raw := id.Bytes()
		currentOrderID = &raw
	}

	dto := CourierDTO{
		ID:              aggregate.ID().Bytes(),
		Name:            aggregate.Name(),
		PhoneNumber:     aggregate.PhoneNumber(),
		Status:          aggregate.Status().String(),
		CurrentOrderID:  currentOrderID,
		TotalDeliveries: aggregate.TotalDeliveries(),
	}

	if position := aggregate.Position(); position != nil {
		lat := position.Point().Lat()
		lng := position.Point().Lng()
		updatedAt := position.UpdatedAt()

		dto.PosLat = &lat
		dto.PosLng = &lng
		dto.PosUpdatedAt = &updatedAt
	}

	return dto
}

// toDomain converts a database DTO to a courier domain aggregate using
// RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := courier.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var currentOrderID *kernel.UUID
	if dto.CurrentOrderID != nil {
		orderID, orderErr := kernel.UUIDFromBytes((*dto.CurrentOrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		currentOrderID = &orderID
	}

	var position *courier.Position
	if dto.PosLat != nil && dto.PosLng != nil && dto.PosUpdatedAt != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.PosLat, *dto.PosLng)
		if pointErr != nil {
			return nil, pointErr
		}

		restored, posErr := courier.NewPosition(point, *dto.PosUpdatedAt)
		if posErr != nil {
			return nil, posErr
		}
		position = &restored
	}

	return courier.RestoreCourier(id, dto.Name, dto.PhoneNumber, status, currentOrderID, position, dto.TotalDeliveries)
}
