package repository

import (
	"context"
	"database/sql"
	"strings"

	"cart-service/internal/entity"
	"cart-service/internal/sharding"
)

type OrderRepository struct {
	dbShards []*sql.DB
	router   *sharding.ShardRouter
}

func NewOrderRepository(dbShards []*sql.DB, router *sharding.ShardRouter) *OrderRepository {
	return &OrderRepository{dbShards, router}
}

func (r *OrderRepository) shard(orderNumber string) *sql.DB {
	return r.dbShards[r.router.GetShard(orderNumber)]
}

func (r *OrderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	orderQuery := `SELECT id, order_number, session_id, quantity, total, status, idempotent_key, created_at FROM orders WHERE order_number = ?`
	lineQuery := `SELECT line_key, item_id, name, quantity, unit_price, customizations, notes, line_total FROM order_lines WHERE order_id = ? ORDER BY id`

	db := r.shard(orderNumber)

	order := &entity.Order{}
	err := db.QueryRowContext(ctx, orderQuery, orderNumber).Scan(&order.ID, &order.OrderNumber, &order.SessionID, &order.Quantity, &order.Total, &order.Status, &order.IdempotentKey, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, lineQuery, order.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line := entity.OrderLine{}
		err := rows.Scan(&line.LineKey, &line.ItemID, &line.Name, &line.Quantity, &line.UnitPrice, &line.Customizations, &line.Notes, &line.LineTotal)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	return order, rows.Err()
}

// CreateOrder stores the order and its lines in one transaction on the order's shard.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	db := r.shard(order.OrderNumber)

	// Start a transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	orderQuery := `INSERT INTO orders (order_number, session_id, quantity, total, status, idempotent_key, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, order.OrderNumber, order.SessionID, order.Quantity, order.Total, order.Status, order.IdempotentKey, order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Insert order lines with batch
	if len(order.Lines) > 0 {
		var (
			placeholders []string
			values       []interface{}
		)
		for _, line := range order.Lines {
			placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			values = append(values, orderID, line.LineKey, line.ItemID, line.Name, line.Quantity, line.UnitPrice, line.Customizations, line.Notes, line.LineTotal)
		}
		lineQuery := `INSERT INTO order_lines (order_id, line_key, item_id, name, quantity, unit_price, customizations, notes, line_total) VALUES ` + strings.Join(placeholders, ", ")

		if _, err := tx.ExecContext(ctx, lineQuery, values...); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Commit the transaction
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	return order, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderNumber, status string) error {
	query := `UPDATE orders SET status = ? WHERE order_number = ?`
	_, err := r.shard(orderNumber).ExecContext(ctx, query, status, orderNumber)
	return err
}
