// Package http exposes the order and courier use cases over a REST API.
// It translates between wire models and application commands/queries and
// maps domain errors onto HTTP status codes.
package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler           commands.CreateOrderCommandHandler
	confirmOrderHandler          commands.ConfirmOrderCommandHandler
	updateOrderStatusHandler     commands.UpdateOrderStatusCommandHandler
	cancelOrderHandler           commands.CancelOrderCommandHandler
	assignCourierHandler         commands.AssignCourierCommandHandler
	rejectOrderHandler           commands.RejectOrderCommandHandler
	createCourierHandler         commands.CreateCourierCommandHandler
	setCourierStatusHandler      commands.SetCourierStatusCommandHandler
	updateCourierLocationHandler commands.UpdateCourierLocationCommandHandler

	// Query handlers
	getOrderTrackingHandler queries.GetOrderTrackingQueryHandler
	getActiveOrdersHandler  queries.GetActiveOrdersQueryHandler
	getAllCouriersHandler   queries.GetAllCouriersQueryHandler
}

// NewServer creates an HTTP server wired to the given command and query
// handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	confirmOrderHandler commands.ConfirmOrderCommandHandler,
	updateOrderStatusHandler commands.UpdateOrderStatusCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	assignCourierHandler commands.AssignCourierCommandHandler,
	rejectOrderHandler commands.RejectOrderCommandHandler,
	createCourierHandler commands.CreateCourierCommandHandler,
	setCourierStatusHandler commands.SetCourierStatusCommandHandler,
	updateCourierLocationHandler commands.UpdateCourierLocationCommandHandler,
	getOrderTrackingHandler queries.GetOrderTrackingQueryHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getAllCouriersHandler queries.GetAllCouriersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:           createOrderHandler,
		confirmOrderHandler:          confirmOrderHandler,
		updateOrderStatusHandler:     updateOrderStatusHandler,
		cancelOrderHandler:           cancelOrderHandler,
		assignCourierHandler:         assignCourierHandler,
		rejectOrderHandler:           rejectOrderHandler,
		createCourierHandler:         createCourierHandler,
		setCourierStatusHandler:      setCourierStatusHandler,
		updateCourierLocationHandler: updateCourierLocationHandler,
		getOrderTrackingHandler:      getOrderTrackingHandler,
		getActiveOrdersHandler:       getActiveOrdersHandler,
		getAllCouriersHandler:        getAllCouriersHandler,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetActiveOrders)
	api.GET("/orders/:orderId/tracking", s.GetOrderTracking)
	api.POST("/orders/:orderId/confirm", s.ConfirmOrder)
	api.PATCH("/orders/:orderId/status", s.UpdateOrderStatus)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/assign", s.AssignCourier)
	api.POST("/orders/:orderId/reject", s.RejectOrder)

	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.GetCouriers)
	api.PATCH("/couriers/:courierId/status", s.SetCourierStatus)
	api.POST("/couriers/:courierId/location", s.UpdateCourierLocation)
}

// CreateOrder handles POST /api/v1/orders - places a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := s.buildCreateOrderCommand(req)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{ID: cmd.OrderID().String()})
}

// ConfirmOrder handles POST /api/v1/orders/:orderId/confirm - confirms a
// pending order and, for delivery orders, dispatches the nearest courier.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewConfirmOrderCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.confirmOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:orderId/status - advances
// an order to preparing, ready, delivering, or delivered.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var req UpdateOrderStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	targetStatus, err := order.StatusFromString(req.Status)
	if err != nil {
		return badRequest(ctx, "Unknown order status: "+req.Status)
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, targetStatus)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.updateOrderStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel - cancels a
// non-terminal order and releases its courier if one was bound.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AssignCourier handles POST /api/v1/orders/:orderId/assign - binds a
// courier to the order. With no body the nearest available courier is
// selected; with a courierId the named courier is bound explicitly.
func (s *Server) AssignCourier(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var req AssignCourierRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	var courierID *kernel.UUID
	if req.CourierID != nil {
		id, idErr := kernel.UUIDFromString(*req.CourierID)
		if idErr != nil {
			return badRequest(ctx, "Invalid courier ID")
		}
		courierID = &id
	}

	cmd, err := commands.NewAssignCourierCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.assignCourierHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RejectOrder handles POST /api/v1/orders/:orderId/reject - the bound
// courier declines the order; a replacement is dispatched excluding them.
func (s *Server) RejectOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var req RejectOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	cmd, err := commands.NewRejectOrderCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.rejectOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrderTracking handles GET /api/v1/orders/:orderId/tracking - returns
// the customer-facing tracking feed for one order.
func (s *Server) GetOrderTracking(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	tracking, err := s.getOrderTrackingHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := TrackingResponse{
		OrderID:             tracking.OrderID.String(),
		Status:              tracking.Status.String(),
		Stage:               tracking.Stage,
		DeliveryType:        tracking.DeliveryType.String(),
		RestaurantLocation:  geoPointModel(tracking.RestaurantLocation),
		EstimatedDeliveryAt: tracking.EstimatedDeliveryAt,
		ActualDeliveryAt:    tracking.ActualDeliveryAt,
		CreatedAt:           tracking.CreatedAt,
	}
	if tracking.Destination != nil {
		destination := geoPointModel(*tracking.Destination)
		response.Destination = &destination
	}
	if tracking.Courier != nil {
		trackingCourier := TrackingCourierModel{
			ID:    tracking.Courier.ID.String(),
			Name:  tracking.Courier.Name,
			Phone: tracking.Courier.Phone,
		}
		if tracking.Courier.Position != nil {
			position := geoPointModel(*tracking.Courier.Position)
			trackingCourier.Position = &position
		}
		response.Courier = &trackingCourier
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetActiveOrders handles GET /api/v1/orders - returns every order that has
// not reached a terminal status.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	query := queries.NewGetActiveOrdersQuery()

	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]ActiveOrderResponse, len(orders))
	for i, activeOrder := range orders {
		row := ActiveOrderResponse{
			ID:                  activeOrder.ID.String(),
			Status:              activeOrder.Status.String(),
			Stage:               activeOrder.Stage,
			DeliveryType:        activeOrder.DeliveryType.String(),
			TotalAmountCents:    activeOrder.TotalAmountCents,
			EstimatedDeliveryAt: activeOrder.EstimatedDeliveryAt,
			CreatedAt:           activeOrder.CreatedAt,
		}
		if activeOrder.CourierID != nil {
			id := activeOrder.CourierID.String()
			row.CourierID = &id
		}
		response[i] = row
	}

	return ctx.JSON(http.StatusOK, response)
}

// CreateCourier handles POST /api/v1/couriers - registers a new courier.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var req CreateCourierRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCreateCourierCommand(req.Name, req.PhoneNumber)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	if err := s.createCourierHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateCourierResponse{ID: cmd.CourierID().String()})
}

// GetCouriers handles GET /api/v1/couriers - retrieves all couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	query := queries.NewGetAllCouriersQuery()

	couriers, err := s.getAllCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]CourierResponse, len(couriers))
	for i, c := range couriers {
		row := CourierResponse{
			ID:              c.ID.String(),
			Name:            c.Name,
			PhoneNumber:     c.PhoneNumber,
			Status:          c.Status.String(),
			TotalDeliveries: c.TotalDeliveries,
		}
		if c.Position != nil {
			position := geoPointModel(*c.Position)
			row.Position = &position
		}
		if c.CurrentOrderID != nil {
			id := c.CurrentOrderID.String()
			row.CurrentOrderID = &id
		}
		response[i] = row
	}

	return ctx.JSON(http.StatusOK, response)
}

// SetCourierStatus handles PATCH /api/v1/couriers/:courierId/status - moves
// a courier between offline and available.
func (s *Server) SetCourierStatus(ctx echo.Context) error {
	courierID, err := pathUUID(ctx, "courierId")
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	var req SetCourierStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	targetStatus, err := courier.StatusFromString(req.Status)
	if err != nil {
		return badRequest(ctx, "Unknown courier status: "+req.Status)
	}

	cmd, err := commands.NewSetCourierStatusCommand(courierID, targetStatus)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.setCourierStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateCourierLocation handles POST /api/v1/couriers/:courierId/location -
// records a courier location report.
func (s *Server) UpdateCourierLocation(ctx echo.Context) error {
	courierID, err := pathUUID(ctx, "courierId")
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	var req UpdateCourierLocationRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(courierID, point)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.updateCourierLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// buildCreateOrderCommand converts the wire model into a validated command.
func (s *Server) buildCreateOrderCommand(req CreateOrderRequest) (commands.CreateOrderCommand, error) {
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	restaurantID, err := kernel.UUIDFromString(req.RestaurantID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	deliveryType, err := order.DeliveryTypeFromString(req.DeliveryType)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, line := range req.Items {
		menuItemID, itemErr := kernel.UUIDFromString(line.MenuItemID)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		item, itemErr := order.NewItem(menuItemID, line.Name, line.UnitPriceCents, line.Quantity, line.SpecialInstructions)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		items = append(items, item)
	}

	pricing, err := order.NewPricing(req.Pricing.TotalAmountCents, req.Pricing.DeliveryFeeCents, req.Pricing.TipCents)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	restaurantLocation, err := kernel.NewGeoPoint(req.RestaurantLocation.Lat, req.RestaurantLocation.Lng)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	var destination *kernel.Address
	if req.Destination != nil {
		point, addrErr := kernel.NewGeoPoint(req.Destination.Lat, req.Destination.Lng)
		if addrErr != nil {
			return commands.CreateOrderCommand{}, addrErr
		}
		address, addrErr := kernel.NewAddress(req.Destination.Street, req.Destination.City, point, req.Destination.Instructions)
		if addrErr != nil {
			return commands.CreateOrderCommand{}, addrErr
		}
		destination = &address
	}

	return commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		customerID,
		restaurantID,
		items,
		pricing,
		deliveryType,
		destination,
		restaurantLocation,
	)
}

// pathUUID parses a UUID path parameter.
func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param(name))
}

// badRequest writes a 400 response with the given message.
func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// domainError maps application and domain errors onto HTTP status codes:
// not-found lookups become 404, state conflicts 409, validation failures
// 400, anything else 500.
func domainError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrCourierAlreadyAssigned),
		errors.Is(err, order.ErrNoCourierAssigned),
		errors.Is(err, order.ErrCourierNotAssigned),
		errors.Is(err, order.ErrPickupOrderHasNoCourier),
		errors.Is(err, order.ErrCourierMismatch),
		errors.Is(err, courier.ErrInvalidStatusTransition),
		errors.Is(err, courier.ErrCourierUnavailable),
		errors.Is(err, services.ErrNoCourierAvailable),
		errors.Is(err, ports.ErrConcurrentModification):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func geoPointModel(point kernel.GeoPoint) GeoPointModel {
	return GeoPointModel{Lat: point.Lat(), Lng: point.Lng()}
}
