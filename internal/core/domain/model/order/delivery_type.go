package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// DeliveryType distinguishes courier-delivered orders from customer pickup.
// Pickup orders never involve a courier and skip the Delivering status.
type DeliveryType int

const (
	// DeliveryTypeUnknown catches uninitialized values.
	DeliveryTypeUnknown DeliveryType = iota

	// Delivery orders are brought to the customer by a bound courier.
	Delivery

	// Pickup orders are collected at the restaurant by the customer.
	Pickup
)

func getDeliveryTypeStrings() map[DeliveryType]string {
	return map[DeliveryType]string{
		DeliveryTypeUnknown: "unknown",
		Delivery:            "delivery",
		Pickup:              "pickup",
	}
}

// DeliveryTypeFromString parses a delivery type from its wire/storage
// representation.
func DeliveryTypeFromString(s string) (DeliveryType, error) {
	for dt, str := range getDeliveryTypeStrings() {
		if str == s && dt != DeliveryTypeUnknown {
			return dt, nil
		}
	}
	return DeliveryTypeUnknown, errs.NewValueIsInvalidErrorWithCause(
		"deliveryType", fmt.Errorf("%q is not a valid delivery type", s))
}

// Validate checks that the delivery type is one of the defined values.
func (d DeliveryType) Validate() error {
	if d != Delivery && d != Pickup {
		return errs.NewValueIsInvalidErrorWithCause(
			"deliveryType", fmt.Errorf("%d is not a valid delivery type", d))
	}
	return nil
}

// String returns the lowercase wire name of the delivery type.
func (d DeliveryType) String() string {
	if str, ok := getDeliveryTypeStrings()[d]; ok {
		return str
	}
	return "unknown"
}
