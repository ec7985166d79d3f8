package cart

import "github.com/shopspring/decimal"

// advanceNoticeThreshold is the lead time from which the storefront warns the
// customer that an item must be ordered ahead.
const advanceNoticeThreshold = 24

// Line is one purchasable configuration in the cart. Name, Price and Image are
// snapshots taken when the line was created; Price never changes afterwards.
type Line struct {
	ItemID             string          `json:"item_id"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
	Customizations     Customizations  `json:"customizations,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	AdvanceNoticeHours *int            `json:"advance_notice_hours,omitempty"`
	Image              string          `json:"image,omitempty"`
}

func (l Line) Key() Key {
	return ResolveKey(l.ItemID, l.Customizations)
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Customizable reports whether the line carries a selection that can be edited again.
func (l Line) Customizable() bool {
	return !l.Customizations.Empty()
}

func (l Line) RequiresAdvanceNotice() bool {
	return l.AdvanceNoticeHours != nil && *l.AdvanceNoticeHours >= advanceNoticeThreshold
}

func (l Line) clone() Line {
	l.Customizations = l.Customizations.Clone()
	if l.AdvanceNoticeHours != nil {
		h := *l.AdvanceNoticeHours
		l.AdvanceNoticeHours = &h
	}
	return l
}
