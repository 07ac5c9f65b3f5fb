package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"proprent-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository works
// unchanged inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db    *sql.DB
	repos repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepositories(db),
	}
}

func newRepositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Orders:       NewOrderRepository(db),
		OrderItems:   NewOrderItemRepository(db),
		IssueCards:   NewIssueCardRepository(db),
		Sequences:    NewSequenceRepository(db),
		Transactions: NewTransactionRepository(db),
	}
}

func (s *Store) Repos() *repository.Repositories {
	return &s.repos
}

// ExecTx runs fn inside a single database transaction.
func (s *Store) ExecTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepos := newRepositories(tx)
	if err := fn(&txRepos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
