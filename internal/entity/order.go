package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            int             `json:"id"`
	OrderNumber   string          `json:"order_number"`
	SessionID     string          `json:"session_id"`
	Lines         []OrderLine     `json:"lines"`
	Quantity      int             `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"` // e.g., "pending", "confirmed", "cancelled"
	IdempotentKey string          `json:"idempotent_key"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderLine is the checkout snapshot of one cart line.
type OrderLine struct {
	LineKey        string          `json:"line_key"`
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Customizations string          `json:"customizations"`
	Notes          string          `json:"notes"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

/*
Mysql Table

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_number VARCHAR(36) NOT NULL UNIQUE,
	...

CREATE TABLE order_lines (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id),
	line_key VARCHAR(512) NOT NULL,
	...
);

*/
