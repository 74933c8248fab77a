package kernel

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when using a zero-value Address.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is an immutable delivery destination: street, city, coordinates,
// and optional driver instructions. Required for delivery orders, absent for
// pickup orders.
type Address struct {
	street       string
	city         string
	point        GeoPoint
	instructions string

	guard guard.ConstructorGuard
}

// NewAddress creates a validated Address. Street and city must be non-empty
// and the point must be a constructed GeoPoint. Instructions may be empty.
func NewAddress(street, city string, point GeoPoint, instructions string) (Address, error) {
	address := Address{
		instructions: instructions,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		address.setStreet(street),
		address.setCity(city),
		address.setPoint(point),
	); err != nil {
		return Address{}, err
	}
	return address, nil
}

// Validate returns ErrAddressIsNotConstructed for zero-value addresses.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Street returns the street line of the address.
func (a Address) Street() string {
	return a.street
}

// City returns the city of the address.
func (a Address) City() string {
	return a.city
}

// Point returns the geographic coordinates of the address.
func (a Address) Point() GeoPoint {
	return a.point
}

// Instructions returns optional delivery instructions; may be empty.
func (a Address) Instructions() string {
	return a.instructions
}

func (a *Address) setStreet(street string) error {
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	a.street = street
	return nil
}

func (a *Address) setCity(city string) error {
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = city
	return nil
}

func (a *Address) setPoint(point GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	a.point = point
	return nil
}
