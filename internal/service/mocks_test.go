package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/repository"
)

// mockStore satisfies repository.Store over testify mocks. ExecTx simply runs
// the callback against the same repositories; rollback behavior is covered by
// the postgres package tests.
type mockStore struct {
	repos repository.Repositories
}

func (s *mockStore) Repos() *repository.Repositories { return &s.repos }

func (s *mockStore) ExecTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	return fn(&s.repos)
}

type repoMocks struct {
	orders *MockOrderRepository
	items  *MockOrderItemRepository
	cards  *MockIssueCardRepository
	seqs   *MockSequenceRepository
	txs    *MockTransactionRepository
}

func newMockStore() (*mockStore, repoMocks) {
	m := repoMocks{
		orders: new(MockOrderRepository),
		items:  new(MockOrderItemRepository),
		cards:  new(MockIssueCardRepository),
		seqs:   new(MockSequenceRepository),
		txs:    new(MockTransactionRepository),
	}
	store := &mockStore{repos: repository.Repositories{
		Orders:       m.orders,
		OrderItems:   m.items,
		IssueCards:   m.cards,
		Sequences:    m.seqs,
		Transactions: m.txs,
	}}
	return store, m
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, archived bool) error {
	args := m.Called(ctx, id, status, archived)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, status string, includeArchived bool, page, pageSize int32) ([]domain.Order, int32, error) {
	args := m.Called(ctx, status, includeArchived, page, pageSize)
	var orders []domain.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.Order)
	}
	return orders, args.Get(1).(int32), args.Error(2)
}

func (m *MockOrderRepository) ListDueOn(ctx context.Context, date string) ([]domain.Order, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOverdue(ctx context.Context, date string) ([]domain.Order, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListUnarchivedTerminal(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) MaxVersionSuffix(ctx context.Context, base string) (int32, error) {
	args := m.Called(ctx, base)
	return args.Get(0).(int32), args.Error(1)
}

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) CreateBatch(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

type MockIssueCardRepository struct {
	mock.Mock
}

func (m *MockIssueCardRepository) Upsert(ctx context.Context, card *domain.IssueCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockIssueCardRepository) GetByOrder(ctx context.Context, orderID int64) (*domain.IssueCard, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssueCard), args.Error(1)
}

func (m *MockIssueCardRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.IssueCardStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepository) NextOrderVersion(ctx context.Context, base string, seed int32) (int32, error) {
	args := m.Called(ctx, base, seed)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockSequenceRepository) NextDocumentNumber(ctx context.Context, series string, year int) (int64, error) {
	args := m.Called(ctx, series, year)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.PaymentTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentTransaction), args.Error(1)
}

func (m *MockTransactionRepository) SumPaidByOrder(ctx context.Context, orderID int64) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) NextNumber(ctx context.Context, series string, now time.Time) (string, error) {
	args := m.Called(ctx, series, now)
	return args.String(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReturnReminder(ctx context.Context, email, name, orderNumber, dueDate string) error {
	args := m.Called(ctx, email, name, orderNumber, dueDate)
	return args.Error(0)
}

func (m *MockEmailService) SendOverdueNotice(ctx context.Context, email, name, orderNumber, dueDate string, daysOverdue int32) error {
	args := m.Called(ctx, email, name, orderNumber, dueDate, daysOverdue)
	return args.Error(0)
}

func (m *MockEmailService) SendSettlementReceipt(ctx context.Context, email, name, orderNumber, receiptNumber string, settlement domain.DepositSettlement) error {
	args := m.Called(ctx, email, name, orderNumber, receiptNumber, settlement)
	return args.Error(0)
}
