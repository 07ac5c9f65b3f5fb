package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/repository"
)

type issueCardRepository struct {
	db DBTX
}

func NewIssueCardRepository(db DBTX) repository.IssueCardRepository {
	return &issueCardRepository{db: db}
}

func (r *issueCardRepository) Upsert(ctx context.Context, card *domain.IssueCard) error {
	query := `INSERT INTO issue_cards (order_id, status, note, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $4)
	          ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query, card.OrderID, card.Status, card.Note, time.Now()).Scan(&card.ID)
}

func (r *issueCardRepository) GetByOrder(ctx context.Context, orderID int64) (*domain.IssueCard, error) {
	card := &domain.IssueCard{}
	query := `SELECT id, order_id, status, COALESCE(note, ''), created_at, updated_at FROM issue_cards WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&card.ID, &card.OrderID, &card.Status, &card.Note, &card.CreatedAt, &card.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *issueCardRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.IssueCardStatus) error {
	query := `UPDATE issue_cards SET status=$1, updated_at=$2 WHERE order_id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
