package repository

import (
	"commercebot/internal/entities"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = "id, sender_id, message_id, item_id, item_name, price, currency, status, created_at"

func (r *OrderRepository) CreateOrder(ctx context.Context, o *entities.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.SenderID, o.MessageID, o.ItemID, o.ItemName, o.Price, o.Currency, o.Status, o.CreatedAt)
	return err
}

func (r *OrderRepository) ListOrdersBySender(ctx context.Context, senderID string, limit int) ([]entities.Order, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE sender_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		senderID, limit)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *OrderRepository) ListOrders(ctx context.Context, limit int) ([]entities.Order, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]entities.Order, error) {
	defer rows.Close()
	orders := []entities.Order{}
	for rows.Next() {
		var o entities.Order
		if err := rows.Scan(&o.ID, &o.SenderID, &o.MessageID, &o.ItemID, &o.ItemName,
			&o.Price, &o.Currency, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
