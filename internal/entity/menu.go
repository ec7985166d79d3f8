package entity

import "github.com/shopspring/decimal"

const StockStatusOutOfStock = "out_of_stock"

// MenuItem as served by the restaurant API.
type MenuItem struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Image              string          `json:"image"`
	AdvanceNoticeHours *int            `json:"advance_notice_hours,omitempty"`
	StockStatus        string          `json:"stock_status"` // e.g., "in_stock", "low_stock", "out_of_stock"
	Hidden             bool            `json:"hidden"`
	OptionGroups       []OptionGroup   `json:"option_groups"`
}

type OptionGroup struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	MinSelect int      `json:"min_select"`
	MaxSelect int      `json:"max_select"` // 0 means no upper bound
	Options   []Option `json:"options"`
}

type Option struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	Available       bool            `json:"available"`
}

// Orderable reports whether the item can still be put into an order.
func (m *MenuItem) Orderable() bool {
	return !m.Hidden && m.StockStatus != StockStatusOutOfStock
}

func (m *MenuItem) OptionGroup(name string) (*OptionGroup, bool) {
	for i := range m.OptionGroups {
		if m.OptionGroups[i].Name == name {
			return &m.OptionGroups[i], true
		}
	}
	return nil, false
}

func (g *OptionGroup) Option(name string) (*Option, bool) {
	for i := range g.Options {
		if g.Options[i].Name == name {
			return &g.Options[i], true
		}
	}
	return nil, false
}
