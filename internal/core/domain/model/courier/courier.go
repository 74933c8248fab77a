package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrCourierIsNotConstructed is returned when using an improperly
	// initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier")

	// ErrCourierUnavailable is returned by Bind when the courier is not
	// Available: it lost a dispatch race or is already busy. The dispatch
	// coordinator recovers by retrying the next candidate.
	ErrCourierUnavailable = errors.New("courier is not available")

	// ErrNoActiveOrder is returned by Complete and Unbind when the courier
	// has no bound order.
	ErrNoActiveOrder = errors.New("courier has no active order")

	// ErrNameIsRequired is returned when creating a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")

	// ErrPhoneNumberIsRequired is returned when creating a courier without a
	// phone number.
	ErrPhoneNumberIsRequired = errs.NewValueIsRequiredError("phoneNumber")
)

// Courier is the aggregate root for courier state. It owns the availability
// status, the binding to at most one active order, and the delivery counter.
//
// Invariants maintained:
//   - currentOrderID is non-nil if and only if status is Busy
//   - Busy is only entered through Bind, never through SetStatus
//   - totalDeliveries increments exactly once per completed delivery and
//     never on unbind (rejection or order cancellation)
type Courier struct {
	id          kernel.UUID
	name        string
	phoneNumber string

	status         Status
	currentOrderID *kernel.UUID
	// position is nil until the courier reports a location. A courier with
	// no position is only reachable by the system-wide dispatch fallback,
	// never by a radius query.
	position        *Position
	totalDeliveries int

	// loadedStatus is the status at load time, used by the repository as the
	// expected value of its compare-and-set update. That CAS is what makes
	// binding atomic: of two dispatch cycles racing for the same courier,
	// exactly one update matches.
	loadedStatus Status

	guard guard.ConstructorGuard
}

// NewCourier registers a new courier. Couriers start Offline with no
// position and no delivery history.
func NewCourier(id kernel.UUID, name, phoneNumber string) (*Courier, error) {
	c := &Courier{
		status:       Offline,
		loadedStatus: StatusUnknown,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhoneNumber(phoneNumber),
	); err != nil {
		return nil, err
	}
	return c, nil
}

// RestoreCourier reconstructs a courier aggregate from persistent storage.
// Rejects states that violate the binding invariant (a busy courier without
// an order, or a bound order on a non-busy courier).
func RestoreCourier(
	id kernel.UUID,
	name string,
	phoneNumber string,
	status Status,
	currentOrderID *kernel.UUID,
	position *Position,
	totalDeliveries int,
) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhoneNumber(phoneNumber),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if (currentOrderID != nil) != (status == Busy) {
		return nil, errs.NewValueIsInvalidError("currentOrderId must be set exactly when busy")
	}
	if currentOrderID != nil {
		if err := currentOrderID.Validate(); err != nil {
			return nil, err
		}
		orderID := *currentOrderID
		c.currentOrderID = &orderID
	}

	if position != nil {
		if err := position.Validate(); err != nil {
			return nil, err
		}
		pos := *position
		c.position = &pos
	}

	if totalDeliveries < 0 {
		return nil, errs.NewValueIsInvalidError("totalDeliveries is negative")
	}

	c.status = status
	c.loadedStatus = status
	c.totalDeliveries = totalDeliveries
	return c, nil
}

// Validate ensures the Courier was created through a constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers by identifier.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's name.
func (c *Courier) Name() string {
	return c.name
}

// PhoneNumber returns the courier's phone number.
func (c *Courier) PhoneNumber() string {
	return c.phoneNumber
}

// Status returns the courier's availability status. "Is available" is always
// derived from this single field; there is no separate availability flag to
// fall out of sync.
func (c *Courier) Status() Status {
	return c.status
}

// LoadedStatus returns the status the aggregate had when loaded from
// persistence (or StatusUnknown for fresh couriers).
func (c *Courier) LoadedStatus() Status {
	return c.loadedStatus
}

// CurrentOrderID returns the bound order's identifier, or nil when the
// courier is not busy.
func (c *Courier) CurrentOrderID() *kernel.UUID {
	if c.currentOrderID == nil {
		return nil
	}
	id := *c.currentOrderID
	return &id
}

// Position returns the courier's last reported position, or nil if none has
// been reported yet.
func (c *Courier) Position() *Position {
	if c.position == nil {
		return nil
	}
	pos := *c.position
	return &pos
}

// TotalDeliveries returns the number of completed deliveries.
func (c *Courier) TotalDeliveries() int {
	return c.totalDeliveries
}

// SetStatus applies an operator- or courier-driven status change between
// Offline and Available. Busy cannot be entered this way (only Bind does
// that), and a busy courier cannot change status until its order completes
// or is unbound.
func (c *Courier) SetStatus(newStatus Status) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}
	if newStatus == Busy || c.status == Busy {
		return ErrInvalidStatusTransition
	}

	c.status = newStatus
	return nil
}

// Bind atomically binds an order to an available courier: status becomes
// Busy and the order ID is recorded. Fails with ErrCourierUnavailable for
// any other starting status; at the persistence layer the matching
// compare-and-set guarantees at most one binder wins a race.
func (c *Courier) Bind(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if c.status != Available {
		return ErrCourierUnavailable
	}

	c.status = Busy
	c.currentOrderID = &orderID
	return nil
}

// Complete finishes the active delivery: clears the binding, returns the
// courier to Available, and increments the delivery counter exactly once.
func (c *Courier) Complete() error {
	if c.currentOrderID == nil {
		return ErrNoActiveOrder
	}

	c.currentOrderID = nil
	c.status = Available
	c.totalDeliveries++
	return nil
}

// Unbind releases the active order without crediting a delivery. Used when
// the courier rejects the order or the order is cancelled; the courier
// returns to Available and may be re-dispatched immediately.
func (c *Courier) Unbind() error {
	if c.currentOrderID == nil {
		return ErrNoActiveOrder
	}

	c.currentOrderID = nil
	c.status = Available
	return nil
}

// UpdatePosition records the courier's reported location. Position updates
// are accepted in any status; they are advisory and race harmlessly with
// dispatch queries.
func (c *Courier) UpdatePosition(point kernel.GeoPoint, reportedAt time.Time) error {
	position, err := NewPosition(point, reportedAt)
	if err != nil {
		return err
	}

	c.position = &position
	return nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setPhoneNumber(phoneNumber string) error {
	if phoneNumber == "" {
		return ErrPhoneNumberIsRequired
	}
	c.phoneNumber = phoneNumber
	return nil
}
