package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cart-service/internal/cart"
	"cart-service/internal/entity"
)

// ErrInvalidSelection is returned when a selection does not fit the item's option groups.
var ErrInvalidSelection = errors.New("invalid selection")

// Quote checks a customer's selection against the option groups of item and
// calculates the unit price: the item's base price plus the additional price
// of every chosen option.
func Quote(item *entity.MenuItem, selection cart.Customizations) (*entity.Pricing, error) {
	if err := Validate(item, selection); err != nil {
		return nil, err
	}

	additions := decimal.Zero
	for _, s := range selection {
		if len(s.Options) == 0 {
			continue
		}
		group, _ := item.OptionGroup(s.Group)
		for _, name := range s.Options {
			opt, _ := group.Option(name)
			additions = additions.Add(opt.AdditionalPrice)
		}
	}

	return &entity.Pricing{
		ItemID:     item.ID,
		BasePrice:  item.Price,
		Additions:  additions,
		FinalPrice: item.Price.Add(additions),
	}, nil
}

// Validate checks a selection against item without pricing it.
func Validate(item *entity.MenuItem, selection cart.Customizations) error {
	// Step 1: the selection must be well formed on its own
	norm, err := selection.Normalize()
	if err != nil {
		return err
	}

	// Step 2: every chosen option must exist, be available and fit its group's limit
	for _, s := range norm {
		group, ok := item.OptionGroup(s.Group)
		if !ok {
			return fmt.Errorf("%w: %s has no option group %q", ErrInvalidSelection, item.Name, s.Group)
		}
		for _, name := range s.Options {
			opt, ok := group.Option(name)
			if !ok {
				return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidSelection, name, group.Name)
			}
			if !opt.Available {
				return fmt.Errorf("%w: %q is currently unavailable", ErrInvalidSelection, name)
			}
		}
		if group.MaxSelect > 0 && len(s.Options) > group.MaxSelect {
			return fmt.Errorf("%w: at most %d choices allowed for %q", ErrInvalidSelection, group.MaxSelect, group.Name)
		}
	}

	// Step 3: required groups must be filled
	for _, group := range item.OptionGroups {
		if n := len(norm.Options(group.Name)); n < group.MinSelect {
			return fmt.Errorf("%w: choose at least %d for %q", ErrInvalidSelection, group.MinSelect, group.Name)
		}
	}

	return nil
}
