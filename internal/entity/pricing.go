package entity

import "github.com/shopspring/decimal"

// Pricing is the unit price quoted for one menu item with a given selection.
type Pricing struct {
	ItemID     string          `json:"item_id"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Additions  decimal.Decimal `json:"additions"`
	FinalPrice decimal.Decimal `json:"final_price"`
}
