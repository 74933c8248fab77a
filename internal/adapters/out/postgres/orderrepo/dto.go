// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Statuses are stored as their lowercase wire strings so the rows read
// naturally in SQL and the status compare-and-set is human-checkable.
// Destination columns are null for pickup orders.
type OrderDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	RestaurantID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status              string     `gorm:"type:varchar(16);not null;index"`
	DeliveryType        string     `gorm:"type:varchar(16);not null"`
	TotalAmountCents    int64      `gorm:"not null"`
	DeliveryFeeCents    int64      `gorm:"not null"`
	TipCents            int64      `gorm:"not null"`
	DestStreet          *string    `gorm:"type:varchar(255)"`
	DestCity            *string    `gorm:"type:varchar(255)"`
	DestLat             *float64   `gorm:"type:double precision"`
	DestLng             *float64   `gorm:"type:double precision"`
	DestInstructions    *string    `gorm:"type:text"`
	RestaurantLat       float64    `gorm:"type:double precision;not null"`
	RestaurantLng       float64    `gorm:"type:double precision;not null"`
	CourierID           *uuid.UUID `gorm:"type:uuid;index"`
	EstimatedDeliveryAt time.Time  `gorm:"not null"`
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time  `gorm:"not null"`
	Items               []ItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO represents one order line in the database.
// Lines are immutable after order placement; they are only ever inserted
// together with their order.
type ItemDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID             uuid.UUID `gorm:"type:uuid;not null;index"`
	MenuItemID          uuid.UUID `gorm:"type:uuid;not null"`
	Name                string    `gorm:"type:varchar(255);not null"`
	UnitPriceCents      int64     `gorm:"not null"`
	Quantity            int       `gorm:"not null"`
	SpecialInstructions string    `gorm:"type:text"`
}

// TableName specifies the database table name for order line entities.
// Overrides GORM's default naming convention to use "order_items".
func (ItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	orderID := aggregate.ID().Bytes()

	var courierID *uuid.UUID
	if id := aggregate.CourierID(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	items := make([]ItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, ItemDTO{
			ID:                  uuid.New(),
			OrderID:             orderID,
			MenuItemID:          item.MenuItemID().Bytes(),
			Name:                item.Name(),
			UnitPriceCents:      item.UnitPriceCents(),
			Quantity:            item.Quantity(),
			SpecialInstructions: item.SpecialInstructions(),
		})
	}

	dto := OrderDTO{
		ID:                  orderID,
		CustomerID:          aggregate.CustomerID().Bytes(),
		RestaurantID:        aggregate.RestaurantID().Bytes(),
		Status:              aggregate.Status().String(),
		DeliveryType:        aggregate.DeliveryType().String(),
		TotalAmountCents:    aggregate.Pricing().TotalAmountCents(),
		DeliveryFeeCents:    aggregate.Pricing().DeliveryFeeCents(),
		TipCents:            aggregate.Pricing().TipCents(),
		RestaurantLat:       aggregate.RestaurantLocation().Lat(),
		RestaurantLng:       aggregate.RestaurantLocation().Lng(),
		CourierID:           courierID,
		EstimatedDeliveryAt: aggregate.EstimatedDeliveryAt(),
		ActualDeliveryAt:    aggregate.ActualDeliveryAt(),
		CreatedAt:           aggregate.CreatedAt(),
		Items:               items,
	}

	if destination := aggregate.Destination(); destination != nil {
		street := destination.Street()
		city := destination.City()
		lat := destination.Point().Lat()
		lng := destination.Point().Lng()
		instructions := destination.Instructions()

		dto.DestStreet = &street
		dto.DestCity = &city
		dto.DestLat = &lat
		dto.DestLng = &lng
		dto.DestInstructions = &instructions
	}

	return dto
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including status, courier binding,
// and timestamps using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}
	deliveryType, err := order.DeliveryTypeFromString(dto.DeliveryType)
	if err != nil {
		return nil, err
	}

	pricing, err := order.NewPricing(dto.TotalAmountCents, dto.DeliveryFeeCents, dto.TipCents)
	if err != nil {
		return nil, err
	}

	restaurantLocation, err := kernel.NewGeoPoint(dto.RestaurantLat, dto.RestaurantLng)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var destination *kernel.Address
	if dto.DestStreet != nil && dto.DestLat != nil && dto.DestLng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.DestLat, *dto.DestLng)
		if pointErr != nil {
			return nil, pointErr
		}

		var city, instructions string
		if dto.DestCity != nil {
			city = *dto.DestCity
		}
		if dto.DestInstructions != nil {
			instructions = *dto.DestInstructions
		}

		address, addressErr := kernel.NewAddress(*dto.DestStreet, city, point, instructions)
		if addressErr != nil {
			return nil, addressErr
		}
		destination = &address
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	return order.RestoreOrder(
		id, customerID, restaurantID,
		items, pricing, deliveryType, destination, restaurantLocation,
		status, courierID,
		dto.EstimatedDeliveryAt, dto.ActualDeliveryAt, dto.CreatedAt,
	)
}

// itemToDomain converts an order line DTO back to its domain value object.
func itemToDomain(dto ItemDTO) (order.Item, error) {
	menuItemID, err := kernel.UUIDFromBytes(dto.MenuItemID[:])
	if err != nil {
		return order.Item{}, err
	}

	return order.NewItem(menuItemID, dto.Name, dto.UnitPriceCents, dto.Quantity, dto.SpecialInstructions)
}
