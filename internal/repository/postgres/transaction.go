package postgres

import (
	"context"
	"time"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/repository"
)

type transactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	query := `INSERT INTO payment_transactions (order_id, type, receipt_number, amount, damage_fee, cleaning_fee, late_fee, manager_comment, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	return r.db.QueryRowContext(ctx, query,
		tx.OrderID, tx.Type, tx.ReceiptNumber, tx.Amount,
		tx.DamageFee, tx.CleaningFee, tx.LateFee, tx.ManagerComment, tx.CreatedAt,
	).Scan(&tx.ID)
}

func (r *transactionRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.PaymentTransaction, error) {
	query := `SELECT id, order_id, type, COALESCE(receipt_number, ''), amount, damage_fee, cleaning_fee, late_fee, COALESCE(manager_comment, ''), created_at
	          FROM payment_transactions WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.PaymentTransaction
	for rows.Next() {
		var tx domain.PaymentTransaction
		if err := rows.Scan(&tx.ID, &tx.OrderID, &tx.Type, &tx.ReceiptNumber, &tx.Amount,
			&tx.DamageFee, &tx.CleaningFee, &tx.LateFee, &tx.ManagerComment, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) SumPaidByOrder(ctx context.Context, orderID int64) (int64, error) {
	var paid int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payment_transactions WHERE order_id = $1 AND type = $2`
	err := r.db.QueryRowContext(ctx, query, orderID, domain.TransactionTypePrepayment).Scan(&paid)
	return paid, err
}
