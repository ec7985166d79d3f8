package cart

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Cart is the line state of one session. It is not safe for concurrent use;
// callers serialize access to a given cart.
type Cart struct {
	lines map[Key]*Line
	order []Key
}

func New() *Cart {
	return &Cart{lines: make(map[Key]*Line)}
}

// FromLines rebuilds a cart from a line list, merging lines that share a key.
func FromLines(lines []Line) (*Cart, error) {
	c := New()
	for _, l := range lines {
		if _, err := c.Add(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add puts line into the cart following the merge policy and returns the key
// of the line that holds it.
func (c *Cart) Add(line Line) (Key, error) {
	l, err := prepare(line)
	if err != nil {
		return "", err
	}
	key := l.Key()
	if existing, ok := c.lines[key]; ok {
		if err := merge(existing, l); err != nil {
			return "", err
		}
		return key, nil
	}
	c.lines[key] = &l
	c.order = append(c.order, key)
	return key, nil
}

// Line returns a copy of the line stored under key.
func (c *Cart) Line(key Key) (Line, bool) {
	l, ok := c.lines[key]
	if !ok {
		return Line{}, false
	}
	return l.clone(), true
}

// Lines returns copies of all lines in the order they were added.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.lines[k].clone())
	}
	return out
}

func (c *Cart) Keys() []Key {
	return slices.Clone(c.order)
}

func (c *Cart) Len() int {
	return len(c.order)
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// SetQuantity sets the absolute quantity of a line. A quantity below 1 removes
// the line; above MaxQuantity it is rejected. Unknown keys are ignored.
func (c *Cart) SetQuantity(key Key, quantity int) error {
	l, ok := c.lines[key]
	if !ok {
		return nil
	}
	if quantity < 1 {
		c.RemoveLine(key)
		return nil
	}
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	l.Quantity = quantity
	return nil
}

// RemoveLine drops the line under key if present.
func (c *Cart) RemoveLine(key Key) {
	if _, ok := c.lines[key]; !ok {
		return
	}
	delete(c.lines, key)
	c.order = slices.DeleteFunc(c.order, func(k Key) bool { return k == key })
}

// SetNotes replaces the free-text notes of a line. Unknown keys are ignored.
func (c *Cart) SetNotes(key Key, notes string) {
	if l, ok := c.lines[key]; ok {
		l.Notes = notes
	}
}

// ReplaceCustomizations swaps the selection of the line under key and returns
// the key the line lives under afterwards. When the new selection matches
// another line, the two merge: the other line keeps its notes and price and
// gains this line's quantity. Otherwise the line moves to its new key in place,
// keeping quantity, notes and price.
//
// An unknown key returns an empty key and no error. A merge that would exceed
// MaxQuantity fails and leaves both lines as they were.
func (c *Cart) ReplaceCustomizations(key Key, customizations Customizations) (Key, error) {
	norm, err := customizations.Normalize()
	if err != nil {
		return "", err
	}
	l, ok := c.lines[key]
	if !ok {
		return "", nil
	}

	newKey := ResolveKey(l.ItemID, norm)
	if newKey == key {
		l.Customizations = norm
		return key, nil
	}
	if target, ok := c.lines[newKey]; ok {
		if err := merge(target, *l); err != nil {
			return "", err
		}
		c.RemoveLine(key)
		return newKey, nil
	}

	l.Customizations = norm
	delete(c.lines, key)
	c.lines[newKey] = l
	c.order[slices.Index(c.order, key)] = newKey
	return newKey, nil
}

func (c *Cart) Clear() {
	c.lines = make(map[Key]*Line)
	c.order = nil
}

// Total is the sum of price times quantity over all lines. It is computed on
// every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
