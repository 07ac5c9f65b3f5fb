package postgres

import (
	"context"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/repository"
)

type orderItemRepository struct {
	db DBTX
}

func NewOrderItemRepository(db DBTX) repository.OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, name, quantity, daily_rate, replacement_cost)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	for i := range items {
		items[i].OrderID = orderID
		err := r.db.QueryRowContext(ctx, query,
			orderID, items[i].ProductID, items[i].Name, items[i].Quantity,
			items[i].DailyRate, items[i].ReplacementCost,
		).Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, name, quantity, daily_rate, replacement_cost
	          FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity, &it.DailyRate, &it.ReplacementCost); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
