package http

import "time"

// ErrorResponse is the uniform error body returned by every endpoint.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GeoPointModel carries a latitude/longitude pair on the wire.
type GeoPointModel struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressModel carries a delivery address.
type AddressModel struct {
	Street       string  `json:"street"`
	City         string  `json:"city"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Instructions string  `json:"instructions,omitempty"`
}

// OrderItemModel is one line of a new order.
type OrderItemModel struct {
	MenuItemID          string `json:"menuItemId"`
	Name                string `json:"name"`
	UnitPriceCents      int64  `json:"unitPriceCents"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// PricingModel is the monetary breakdown of a new order, in cents.
type PricingModel struct {
	TotalAmountCents int64 `json:"totalAmountCents"`
	DeliveryFeeCents int64 `json:"deliveryFeeCents"`
	TipCents         int64 `json:"tipCents"`
}

// CreateOrderRequest is the body of POST /orders. Destination is required
// for delivery orders and must be absent for pickup orders.
type CreateOrderRequest struct {
	CustomerID         string           `json:"customerId"`
	RestaurantID       string           `json:"restaurantId"`
	DeliveryType       string           `json:"deliveryType"`
	Items              []OrderItemModel `json:"items"`
	Pricing            PricingModel     `json:"pricing"`
	Destination        *AddressModel    `json:"destination,omitempty"`
	RestaurantLocation GeoPointModel    `json:"restaurantLocation"`
}

// CreateOrderResponse returns the identifier of the newly placed order.
type CreateOrderResponse struct {
	ID string `json:"id"`
}

// UpdateOrderStatusRequest is the body of PATCH /orders/:orderId/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// AssignCourierRequest is the body of POST /orders/:orderId/assign.
// CourierID selects an explicit courier; when omitted the nearest available
// courier is chosen.
type AssignCourierRequest struct {
	CourierID *string `json:"courierId,omitempty"`
}

// RejectOrderRequest is the body of POST /orders/:orderId/reject. CourierID
// identifies the rejecting courier and must match the order's binding.
type RejectOrderRequest struct {
	CourierID string `json:"courierId"`
}

// ActiveOrderResponse is one row of GET /orders.
type ActiveOrderResponse struct {
	ID                  string    `json:"id"`
	Status              string    `json:"status"`
	Stage               int       `json:"stage"`
	DeliveryType        string    `json:"deliveryType"`
	CourierID           *string   `json:"courierId,omitempty"`
	TotalAmountCents    int64     `json:"totalAmountCents"`
	EstimatedDeliveryAt time.Time `json:"estimatedDeliveryAt"`
	CreatedAt           time.Time `json:"createdAt"`
}

// TrackingCourierModel is the courier slice of the tracking feed.
type TrackingCourierModel struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Phone    string         `json:"phone"`
	Position *GeoPointModel `json:"position,omitempty"`
}

// TrackingResponse is the body of GET /orders/:orderId/tracking.
type TrackingResponse struct {
	OrderID             string                `json:"orderId"`
	Status              string                `json:"status"`
	Stage               int                   `json:"stage"`
	DeliveryType        string                `json:"deliveryType"`
	RestaurantLocation  GeoPointModel         `json:"restaurantLocation"`
	Destination         *GeoPointModel        `json:"destination,omitempty"`
	Courier             *TrackingCourierModel `json:"courier,omitempty"`
	EstimatedDeliveryAt time.Time             `json:"estimatedDeliveryAt"`
	ActualDeliveryAt    *time.Time            `json:"actualDeliveryAt,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
}

// CreateCourierRequest is the body of POST /couriers.
type CreateCourierRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// CreateCourierResponse returns the identifier of the new courier.
type CreateCourierResponse struct {
	ID string `json:"id"`
}

// CourierResponse is one row of GET /couriers.
type CourierResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	PhoneNumber     string         `json:"phoneNumber"`
	Status          string         `json:"status"`
	Position        *GeoPointModel `json:"position,omitempty"`
	CurrentOrderID  *string        `json:"currentOrderId,omitempty"`
	TotalDeliveries int            `json:"totalDeliveries"`
}

// SetCourierStatusRequest is the body of PATCH /couriers/:courierId/status.
type SetCourierStatusRequest struct {
	Status string `json:"status"`
}

// UpdateCourierLocationRequest is the body of POST /couriers/:courierId/location.
type UpdateCourierLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
