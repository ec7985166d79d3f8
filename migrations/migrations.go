package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

var retryDelay = 1 * time.Second

// AutoMigrateOrders creates the orders table if it does not exist.
func AutoMigrateOrders(retries int, dbs ...*sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_number VARCHAR(36) NOT NULL UNIQUE,
			session_id VARCHAR(128) NOT NULL,
			quantity INT NOT NULL,
			total DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			idempotent_key VARCHAR(255) UNIQUE NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_orders_session (session_id)
		);
	`
	return migrate("orders", query, retries, dbs...)
}

// AutoMigrateOrderLines creates the order_lines table if it does not exist.
// It must run after AutoMigrateOrders.
func AutoMigrateOrderLines(retries int, dbs ...*sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_lines (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			line_key VARCHAR(512) NOT NULL,
			item_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(10,2) NOT NULL,
			customizations TEXT NOT NULL,
			notes TEXT NOT NULL,
			line_total DECIMAL(10,2) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`
	return migrate("order_lines", query, retries, dbs...)
}

func migrate(table, query string, retries int, dbs ...*sql.DB) error {
	for shard, db := range dbs {
		_, err := db.Exec(query)
		// Retry creating the table
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(retryDelay)
			_, err = db.Exec(query)
		}
		if err != nil {
			return fmt.Errorf("migrate %s on shard %d: %w", table, shard, err)
		}
	}
	return nil
}
