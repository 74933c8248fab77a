package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrCourierNotAssigned is returned when a delivery order tries to enter
	// Preparing or Delivering without a bound courier.
	ErrCourierNotAssigned = errors.New("delivery order requires a bound courier")

	// ErrCourierAlreadyAssigned is returned when assigning a courier to an
	// order that already has one. Rebinding requires an explicit unassign
	// (rejection or cancellation) first.
	ErrCourierAlreadyAssigned = errors.New("order already has a courier assigned")

	// ErrNoCourierAssigned is returned when unassigning a courier from an
	// order that has none.
	ErrNoCourierAssigned = errors.New("order has no courier assigned")

	// ErrCourierMismatch is returned when an operation names a courier other
	// than the one bound to the order.
	ErrCourierMismatch = errors.New("courier is not bound to this order")

	// ErrPickupOrderHasNoCourier is returned when attempting courier
	// operations on a pickup order.
	ErrPickupOrderHasNoCourier = errors.New("pickup orders do not involve a courier")

	// ErrAddressRequired is returned when creating a delivery order without a
	// destination address.
	ErrAddressRequired = errs.NewValueIsRequiredError("delivery address")
)

// Order is the aggregate root for the order lifecycle. It owns the single
// authoritative status field and enforces the transition table, the courier
// binding invariants, and the delivered/cancelled side effects.
//
// Invariants maintained:
//   - status only moves along edges of the transition table
//   - items are non-empty; every item is constructor-validated
//   - a delivery order never enters Preparing or Delivering without a courier
//   - courierID is only ever set from Confirmed onward and is cleared when
//     the order is cancelled or the courier rejects before pickup
//   - actualDeliveryAt is set exactly once, when the order becomes Delivered
//
// The delivery estimate is computed once in NewOrder and never revised.
type Order struct {
	id           kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID

	items   []Item
	pricing Pricing

	deliveryType DeliveryType
	// destination is nil for pickup orders and required for delivery orders.
	destination *kernel.Address
	// restaurantLocation is snapshotted from the restaurant service at
	// creation; dispatch searches for couriers around this point.
	restaurantLocation kernel.GeoPoint

	status    Status
	courierID *kernel.UUID

	estimatedDeliveryAt time.Time
	actualDeliveryAt    *time.Time
	createdAt           time.Time

	// loadedStatus is the status this aggregate had when loaded from
	// persistence. The repository uses it as the expected value of its
	// compare-and-set update, so two operators racing to transition the same
	// order cannot both win.
	loadedStatus Status

	guard guard.ConstructorGuard
}

// NewOrder creates a new order in Pending status. The delivery estimate is
// fixed here from the restaurant-to-destination distance; destination must be
// non-nil for delivery orders and nil for pickup orders.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []Item,
	pricing Pricing,
	deliveryType DeliveryType,
	destination *kernel.Address,
	restaurantLocation kernel.GeoPoint,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:       Pending,
		loadedStatus: Unknown,
		createdAt:    createdAt.UTC(),
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
		o.setPricing(pricing),
		o.setDeliveryType(deliveryType),
		o.setRestaurantLocation(restaurantLocation),
	); err != nil {
		return nil, err
	}

	if err := o.setDestination(destination); err != nil {
		return nil, err
	}

	distanceKm := 0.0
	if o.deliveryType == Delivery {
		var err error
		distanceKm, err = o.restaurantLocation.DistanceKm(o.destination.Point())
		if err != nil {
			return nil, err
		}
	}
	minutes := EstimateDeliveryMinutes(distanceKm)
	o.estimatedDeliveryAt = o.createdAt.Add(time.Duration(minutes) * time.Minute)

	return o, nil
}

// RestoreOrder reconstructs an order aggregate from persistent storage,
// including its status, courier binding, and timestamps. It validates the
// cross-field invariants that NewOrder cannot produce but corrupt storage
// could: courier binding vs. status and actual delivery vs. status.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []Item,
	pricing Pricing,
	deliveryType DeliveryType,
	destination *kernel.Address,
	restaurantLocation kernel.GeoPoint,
	status Status,
	courierID *kernel.UUID,
	estimatedDeliveryAt time.Time,
	actualDeliveryAt *time.Time,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		estimatedDeliveryAt: estimatedDeliveryAt,
		createdAt:           createdAt,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
		o.setPricing(pricing),
		o.setDeliveryType(deliveryType),
		o.setRestaurantLocation(restaurantLocation),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if err := o.setDestination(destination); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		if deliveryType == Pickup {
			return nil, ErrPickupOrderHasNoCourier
		}
		if status == Pending {
			return nil, errs.NewValueIsInvalidError("courierId set on a pending order")
		}
		id := *courierID
		o.courierID = &id
	}

	if (actualDeliveryAt != nil) != (status == Delivered) {
		return nil, errs.NewValueIsInvalidError("actualDelivery must be set exactly when delivered")
	}
	if actualDeliveryAt != nil {
		at := *actualDeliveryAt
		o.actualDeliveryAt = &at
	}

	o.status = status
	o.loadedStatus = status
	return o, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the placing customer's identifier.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RestaurantID returns the restaurant's identifier.
func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Pricing returns the monetary amounts of the order.
func (o *Order) Pricing() Pricing {
	return o.pricing
}

// DeliveryType returns whether the order is courier-delivered or pickup.
func (o *Order) DeliveryType() DeliveryType {
	return o.deliveryType
}

// Destination returns the delivery address, or nil for pickup orders.
func (o *Order) Destination() *kernel.Address {
	if o.destination == nil {
		return nil
	}
	address := *o.destination
	return &address
}

// RestaurantLocation returns the restaurant coordinates snapshotted at
// creation. Dispatch searches for couriers around this point.
func (o *Order) RestaurantLocation() kernel.GeoPoint {
	return o.restaurantLocation
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// LoadedStatus returns the status the aggregate had when loaded from
// persistence (or Unknown for fresh orders). Repositories use it as the
// expected value of their compare-and-set update.
func (o *Order) LoadedStatus() Status {
	return o.loadedStatus
}

// CourierID returns the bound courier's identifier, or nil when no courier is
// bound.
func (o *Order) CourierID() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// EstimatedDeliveryAt returns the delivery estimate fixed at creation.
func (o *Order) EstimatedDeliveryAt() time.Time {
	return o.estimatedDeliveryAt
}

// ActualDeliveryAt returns the completion timestamp, or nil until the order
// is delivered.
func (o *Order) ActualDeliveryAt() *time.Time {
	if o.actualDeliveryAt == nil {
		return nil
	}
	at := *o.actualDeliveryAt
	return &at
}

// CreatedAt returns the immutable creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Confirm moves the order from Pending to Confirmed. For delivery orders this
// is the state in which courier dispatch runs.
func (o *Order) Confirm() error {
	return o.transition(Confirmed)
}

// ValidateAssignable checks that a courier could be assigned right now,
// without side effects: the order is a delivery order, has no courier bound,
// and is in a state dispatch may bind in. Used by the dispatcher before it
// mutates any candidate.
func (o *Order) ValidateAssignable() error {
	if o.deliveryType != Delivery {
		return ErrPickupOrderHasNoCourier
	}
	if o.courierID != nil {
		return ErrCourierAlreadyAssigned
	}
	if o.status != Confirmed && o.status != Preparing && o.status != Ready {
		return NewIllegalTransitionError(o.status, o.status)
	}
	return nil
}

// AssignCourier binds a courier to a confirmed (or re-dispatched) delivery
// order. Legal while the order is in Confirmed, Preparing, or Ready with no
// courier currently bound; the latter two only occur after a courier
// rejection cleared the binding mid-flight.
func (o *Order) AssignCourier(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.deliveryType != Delivery {
		return ErrPickupOrderHasNoCourier
	}
	if o.courierID != nil {
		return ErrCourierAlreadyAssigned
	}
	if o.status != Confirmed && o.status != Preparing && o.status != Ready {
		return NewIllegalTransitionError(o.status, o.status)
	}

	o.courierID = &courierID
	return nil
}

// UnassignCourier clears the courier binding before pickup, returning the
// formerly bound courier's ID so the caller can free that courier in the same
// transaction. Legal only while the order has not entered Delivering.
func (o *Order) UnassignCourier() (kernel.UUID, error) {
	if o.courierID == nil {
		return kernel.UUID{}, ErrNoCourierAssigned
	}
	if o.status != Confirmed && o.status != Preparing && o.status != Ready {
		return kernel.UUID{}, NewIllegalTransitionError(o.status, o.status)
	}

	unbound := *o.courierID
	o.courierID = nil
	return unbound, nil
}

// StartPreparing moves the order from Confirmed to Preparing. Delivery orders
// are gated on a courier already being bound; pickup orders are not.
func (o *Order) StartPreparing() error {
	if o.deliveryType == Delivery && o.courierID == nil {
		return ErrCourierNotAssigned
	}
	return o.transition(Preparing)
}

// MarkReady moves the order from Preparing to Ready.
func (o *Order) MarkReady() error {
	return o.transition(Ready)
}

// StartDelivering moves a delivery order from Ready to Delivering once the
// bound courier confirms pickup. Pickup orders never enter Delivering.
func (o *Order) StartDelivering() error {
	if o.deliveryType != Delivery {
		return NewIllegalTransitionError(o.status, Delivering)
	}
	if o.courierID == nil {
		return ErrCourierNotAssigned
	}
	return o.transition(Delivering)
}

// MarkDelivered finishes the order: Delivering -> Delivered for delivery
// orders, Ready -> Delivered for pickup orders (which skip Delivering
// entirely). Sets the actual delivery timestamp exactly once. The caller must
// complete the bound courier (if any) in the same transaction.
func (o *Order) MarkDelivered(now time.Time) error {
	if o.deliveryType == Delivery && o.status == Ready {
		// Ready -> Delivered is the pickup-only edge.
		return NewIllegalTransitionError(o.status, Delivered)
	}

	if err := o.transition(Delivered); err != nil {
		return err
	}

	at := now.UTC()
	o.actualDeliveryAt = &at
	return nil
}

// Cancel terminally cancels the order from any non-terminal status. If a
// courier was bound, the binding is cleared and the courier's ID returned so
// the caller can free the courier atomically with this transition; a non-nil
// return with no matching courier update would leave an orphaned busy
// courier.
func (o *Order) Cancel() (*kernel.UUID, error) {
	if err := o.transition(Cancelled); err != nil {
		return nil, err
	}

	unbound := o.courierID
	o.courierID = nil
	return unbound, nil
}

// transition is the single gate for all status writes.
func (o *Order) transition(to Status) error {
	next, err := o.status.TransitionTo(to)
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantId", err)
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setPricing(pricing Pricing) error {
	if err := pricing.Validate(); err != nil {
		return err
	}
	o.pricing = pricing
	return nil
}

func (o *Order) setDeliveryType(deliveryType DeliveryType) error {
	if err := deliveryType.Validate(); err != nil {
		return err
	}
	o.deliveryType = deliveryType
	return nil
}

// setDestination depends on deliveryType and must run after setDeliveryType.
func (o *Order) setDestination(destination *kernel.Address) error {
	if o.deliveryType == Delivery {
		if destination == nil {
			return ErrAddressRequired
		}
		if err := destination.Validate(); err != nil {
			return err
		}
		address := *destination
		o.destination = &address
		return nil
	}

	if destination != nil {
		return errs.NewValueIsInvalidError("pickup orders must not carry a delivery address")
	}
	return nil
}

func (o *Order) setRestaurantLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.restaurantLocation = location
	return nil
}
