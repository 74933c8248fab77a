package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired = errors.New("order must contain at least one item")
)

// CreateOrderCommand represents a request to place a new order.
// Encapsulates the customer, restaurant, item lines, pricing, and, for
// delivery orders, the destination address.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(
//	    kernel.NewUUID(), customerID, restaurantID,
//	    items, pricing, order.Delivery, &address, restaurantLocation,
//	)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID            kernel.UUID
	customerID         kernel.UUID
	restaurantID       kernel.UUID
	items              []order.Item
	pricing            order.Pricing
	deliveryType       order.DeliveryType
	destination        *kernel.Address
	restaurantLocation kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// Validates identifiers, requires at least one item, and checks that the
// delivery type and restaurant location are well-formed. Destination
// consistency with the delivery type is enforced by the order aggregate.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []order.Item,
	pricing order.Pricing,
	deliveryType order.DeliveryType,
	destination *kernel.Address,
	restaurantLocation kernel.GeoPoint,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setCustomerID(customerID),
		orderCommand.setRestaurantID(restaurantID),
		orderCommand.setItems(items),
		orderCommand.setPricing(pricing),
		orderCommand.setDeliveryType(deliveryType),
		orderCommand.setDestination(destination),
		orderCommand.setRestaurantLocation(restaurantLocation),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the identifier of the ordering customer.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// RestaurantID returns the identifier of the restaurant.
func (c CreateOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Items returns the ordered item lines.
func (c CreateOrderCommand) Items() []order.Item {
	return c.items
}

// Pricing returns the monetary breakdown of the order.
func (c CreateOrderCommand) Pricing() order.Pricing {
	return c.pricing
}

// DeliveryType returns whether the order is delivered or picked up.
func (c CreateOrderCommand) DeliveryType() order.DeliveryType {
	return c.deliveryType
}

// Destination returns the delivery address, nil for pickup orders.
func (c CreateOrderCommand) Destination() *kernel.Address {
	return c.destination
}

// RestaurantLocation returns the restaurant's coordinates at order time.
func (c CreateOrderCommand) RestaurantLocation() kernel.GeoPoint {
	return c.restaurantLocation
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return err
		}
	}

	c.items = items
	return nil
}

func (c *CreateOrderCommand) setPricing(pricing order.Pricing) error {
	if err := pricing.Validate(); err != nil {
		return err
	}

	c.pricing = pricing
	return nil
}

func (c *CreateOrderCommand) setDeliveryType(deliveryType order.DeliveryType) error {
	if err := deliveryType.Validate(); err != nil {
		return err
	}

	c.deliveryType = deliveryType
	return nil
}

func (c *CreateOrderCommand) setDestination(destination *kernel.Address) error {
	if destination != nil {
		if err := destination.Validate(); err != nil {
			return err
		}
	}

	c.destination = destination
	return nil
}

func (c *CreateOrderCommand) setRestaurantLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.restaurantLocation = location
	return nil
}
