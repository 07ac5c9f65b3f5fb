package repository

import (
	"context"

	"proprent-backend/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, archived bool) error
	List(ctx context.Context, status string, includeArchived bool, page, pageSize int32) ([]domain.Order, int32, error)
	// ListDueOn returns active rentals whose scheduled return date equals date (yyyy-mm-dd).
	ListDueOn(ctx context.Context, date string) ([]domain.Order, error)
	// ListOverdue returns active rentals whose scheduled return date is before date.
	ListOverdue(ctx context.Context, date string) ([]domain.Order, error)
	// ListUnarchivedTerminal returns terminal orders missing the archive flag.
	ListUnarchivedTerminal(ctx context.Context) ([]domain.Order, error)
	// MaxVersionSuffix scans order numbers sharing base and returns the
	// largest version suffix (0 when only the root exists).
	MaxVersionSuffix(ctx context.Context, base string) (int32, error)
}

type OrderItemRepository interface {
	CreateBatch(ctx context.Context, orderID int64, items []domain.OrderItem) error
	ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

type IssueCardRepository interface {
	// Upsert creates the order's card or, if one exists, resets its status and note.
	Upsert(ctx context.Context, card *domain.IssueCard) error
	GetByOrder(ctx context.Context, orderID int64) (*domain.IssueCard, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.IssueCardStatus) error
}

type SequenceRepository interface {
	// NextOrderNumber atomically allocates the next intake order number. The
	// counter is global rather than per-year; order numbers sit under a unique
	// index and must never repeat, even across a year rollover.
	NextOrderNumber(ctx context.Context) (int64, error)
	// NextOrderVersion atomically allocates the next version suffix for an
	// order-number base. seed is the scanned max existing suffix; the counter
	// never goes below seed+1, so concurrent allocations cannot repeat.
	NextOrderVersion(ctx context.Context, base string, seed int32) (int32, error)
	// NextDocumentNumber atomically allocates the next per-series-per-year
	// document sequence value.
	NextDocumentNumber(ctx context.Context, series string, year int) (int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) error
	ListByOrder(ctx context.Context, orderID int64) ([]domain.PaymentTransaction, error)
	// SumPaidByOrder totals prepayment credits recorded against the order.
	SumPaidByOrder(ctx context.Context, orderID int64) (int64, error)
}

// Repositories bundles every repository over one database handle. Store
// hands a transaction-scoped bundle to ExecTx callbacks.
type Repositories struct {
	Orders       OrderRepository
	OrderItems   OrderItemRepository
	IssueCards   IssueCardRepository
	Sequences    SequenceRepository
	Transactions TransactionRepository
}

// Store is the persistence entrypoint services depend on.
type Store interface {
	Repos() *Repositories
	// ExecTx runs fn against transaction-scoped repositories, committing on
	// nil and rolling back on error. Multi-row operations (the partial-return
	// split) must go through it.
	ExecTx(ctx context.Context, fn func(*Repositories) error) error
}
