package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/repository"
)

type orderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, customer_name, customer_phone, customer_email, source, status, is_archived,
	rental_start_date, rental_end_date, issue_time, return_time, rental_days,
	total_price, discount_amount, deposit_amount, prepaid_amount,
	COALESCE(cancel_reason, ''), COALESCE(notes, ''), created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (order_number, customer_name, customer_phone, customer_email, source, status, is_archived,
	              rental_start_date, rental_end_date, issue_time, return_time, rental_days,
	              total_price, discount_amount, deposit_amount, prepaid_amount, cancel_reason, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) RETURNING id`
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	err := r.db.QueryRowContext(ctx, query,
		o.OrderNumber, o.CustomerName, o.CustomerPhone, o.CustomerEmail, o.Source, o.Status, o.IsArchived,
		o.RentalStartDate, o.RentalEndDate, o.IssueTime, o.ReturnTime, o.RentalDays,
		o.TotalPrice, o.DiscountAmount, o.DepositAmount, o.PrepaidAmount, o.CancelReason, o.Notes, o.CreatedAt, now,
	).Scan(&o.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("order number %s already exists: %w", o.OrderNumber, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, number))
}

func (r *orderRepository) scanOne(row *sql.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail, &o.Source, &o.Status, &o.IsArchived,
		&o.RentalStartDate, &o.RentalEndDate, &o.IssueTime, &o.ReturnTime, &o.RentalDays,
		&o.TotalPrice, &o.DiscountAmount, &o.DepositAmount, &o.PrepaidAmount,
		&o.CancelReason, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *domain.Order) error {
	query := `UPDATE orders SET status=$1, is_archived=$2, rental_start_date=$3, rental_end_date=$4,
	              issue_time=$5, return_time=$6, rental_days=$7, total_price=$8, discount_amount=$9,
	              deposit_amount=$10, prepaid_amount=$11, cancel_reason=$12, notes=$13, updated_at=$14
	          WHERE id=$15`
	res, err := r.db.ExecContext(ctx, query,
		o.Status, o.IsArchived, o.RentalStartDate, o.RentalEndDate,
		o.IssueTime, o.ReturnTime, o.RentalDays, o.TotalPrice, o.DiscountAmount,
		o.DepositAmount, o.PrepaidAmount, o.CancelReason, o.Notes, time.Now(), o.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, archived bool) error {
	query := `UPDATE orders SET status=$1, is_archived=$2, updated_at=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, status, archived, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, status string, includeArchived bool, page, pageSize int32) ([]domain.Order, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	if !includeArchived {
		query += " AND is_archived = false"
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	orders, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *orderRepository) ListDueOn(ctx context.Context, date string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND rental_end_date = $2`
	return r.queryMany(ctx, query, domain.OrderStatusOnRent, date)
}

func (r *orderRepository) ListOverdue(ctx context.Context, date string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND rental_end_date < $2`
	return r.queryMany(ctx, query, domain.OrderStatusOnRent, date)
}

func (r *orderRepository) ListUnarchivedTerminal(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status IN ($1, $2) AND is_archived = false`
	return r.queryMany(ctx, query, domain.OrderStatusReturned, domain.OrderStatusCancelled)
}

func (r *orderRepository) MaxVersionSuffix(ctx context.Context, base string) (int32, error) {
	query := `SELECT order_number FROM orders WHERE order_number = $1 OR order_number LIKE $2`
	rows, err := r.db.QueryContext(ctx, query, base, base+"(%")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var max int32
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, err
		}
		if b, suffix := domain.SplitOrderNumber(number); b == base && suffix > max {
			max = suffix
		}
	}
	return max, rows.Err()
}

func (r *orderRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail, &o.Source, &o.Status, &o.IsArchived,
			&o.RentalStartDate, &o.RentalEndDate, &o.IssueTime, &o.ReturnTime, &o.RentalDays,
			&o.TotalPrice, &o.DiscountAmount, &o.DepositAmount, &o.PrepaidAmount,
			&o.CancelReason, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
