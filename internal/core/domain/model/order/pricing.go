package order

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPricingIsNotConstructed is returned when using a zero-value Pricing.
var ErrPricingIsNotConstructed = errors.New("Pricing must be created via NewPricing constructor")

// Pricing groups the monetary amounts of an order in minor currency units.
// All amounts are fixed at creation; the core never recomputes fees.
type Pricing struct {
	totalAmountCents int64
	deliveryFeeCents int64
	tipCents         int64

	guard guard.ConstructorGuard
}

// NewPricing creates a validated Pricing. All amounts must be non-negative.
func NewPricing(totalAmountCents, deliveryFeeCents, tipCents int64) (Pricing, error) {
	pricing := Pricing{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		pricing.setTotalAmountCents(totalAmountCents),
		pricing.setDeliveryFeeCents(deliveryFeeCents),
		pricing.setTipCents(tipCents),
	); err != nil {
		return Pricing{}, err
	}
	return pricing, nil
}

// Validate returns ErrPricingIsNotConstructed for zero-value pricing.
func (p Pricing) Validate() error {
	return p.guard.Validate(ErrPricingIsNotConstructed)
}

// TotalAmountCents returns the order total in minor currency units.
func (p Pricing) TotalAmountCents() int64 {
	return p.totalAmountCents
}

// DeliveryFeeCents returns the delivery fee in minor currency units.
func (p Pricing) DeliveryFeeCents() int64 {
	return p.deliveryFeeCents
}

// TipCents returns the courier tip in minor currency units.
func (p Pricing) TipCents() int64 {
	return p.tipCents
}

func (p *Pricing) setTotalAmountCents(v int64) error {
	if v < 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalAmount", fmt.Errorf("%d is negative", v))
	}
	p.totalAmountCents = v
	return nil
}

func (p *Pricing) setDeliveryFeeCents(v int64) error {
	if v < 0 {
		return errs.NewValueIsInvalidErrorWithCause("deliveryFee", fmt.Errorf("%d is negative", v))
	}
	p.deliveryFeeCents = v
	return nil
}

func (p *Pricing) setTipCents(v int64) error {
	if v < 0 {
		return errs.NewValueIsInvalidErrorWithCause("tip", fmt.Errorf("%d is negative", v))
	}
	p.tipCents = v
	return nil
}
