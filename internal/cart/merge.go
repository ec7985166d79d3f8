package cart

import "fmt"

// MaxQuantity is the most units a single line can hold.
const MaxQuantity = 999

// AddToCart applies the merge policy to a line list and returns the updated list.
// lines is not modified.
//
// A line whose key matches newLine absorbs its quantity and keeps its own
// name, price and notes; the notes on newLine are dropped. Otherwise newLine
// is appended.
func AddToCart(lines []Line, newLine Line) ([]Line, error) {
	c, err := FromLines(lines)
	if err != nil {
		return nil, err
	}
	if _, err := c.Add(newLine); err != nil {
		return nil, err
	}
	return c.Lines(), nil
}

// prepare validates an incoming line and returns a detached copy with
// normalized customizations.
func prepare(l Line) (Line, error) {
	if l.ItemID == "" {
		return Line{}, ErrEmptyItemID
	}
	if err := checkQuantity(l.Quantity); err != nil {
		return Line{}, err
	}
	norm, err := l.Customizations.Normalize()
	if err != nil {
		return Line{}, err
	}
	l = l.clone()
	l.Customizations = norm
	return l, nil
}

func checkQuantity(q int) error {
	if q < 1 || q > MaxQuantity {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidQuantity, q, MaxQuantity)
	}
	return nil
}

// merge folds incoming into existing. Only the quantity moves. existing is
// left untouched when the sum would exceed MaxQuantity.
func merge(existing *Line, incoming Line) error {
	// both sides are already within 1..MaxQuantity, so the sum cannot wrap
	sum := existing.Quantity + incoming.Quantity
	if sum > MaxQuantity {
		return fmt.Errorf("%w: %d + %d exceeds %d", ErrInvalidQuantity, existing.Quantity, incoming.Quantity, MaxQuantity)
	}
	existing.Quantity = sum
	return nil
}
