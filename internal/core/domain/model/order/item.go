package order

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when using a zero-value Item.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is an immutable order line: a menu item snapshot taken at order
// creation. Name and price are copied from the menu service at that moment
// and never re-queried.
type Item struct {
	menuItemID          kernel.UUID
	name                string
	unitPriceCents      int64
	quantity            int
	specialInstructions string

	guard guard.ConstructorGuard
}

// NewItem creates a validated order line. Quantity must be at least 1 and the
// unit price non-negative. Special instructions may be empty.
func NewItem(menuItemID kernel.UUID, name string, unitPriceCents int64, quantity int, specialInstructions string) (Item, error) {
	item := Item{
		specialInstructions: specialInstructions,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setMenuItemID(menuItemID),
		item.setName(name),
		item.setUnitPriceCents(unitPriceCents),
		item.setQuantity(quantity),
	); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Validate returns ErrItemIsNotConstructed for zero-value items.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// MenuItemID returns the identifier of the referenced menu item.
func (i Item) MenuItemID() kernel.UUID {
	return i.menuItemID
}

// Name returns the menu item name snapshotted at order creation.
func (i Item) Name() string {
	return i.name
}

// UnitPriceCents returns the per-unit price in minor currency units.
func (i Item) UnitPriceCents() int64 {
	return i.unitPriceCents
}

// Quantity returns the ordered quantity; always at least 1.
func (i Item) Quantity() int {
	return i.quantity
}

// SpecialInstructions returns optional preparation notes; may be empty.
func (i Item) SpecialInstructions() string {
	return i.specialInstructions
}

func (i *Item) setMenuItemID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.menuItemID = id
	return nil
}

func (i *Item) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	i.name = name
	return nil
}

func (i *Item) setUnitPriceCents(price int64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"unitPrice", fmt.Errorf("%d is negative", price))
	}
	i.unitPriceCents = price
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not at least 1", quantity))
	}
	i.quantity = quantity
	return nil
}
