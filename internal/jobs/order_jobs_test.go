package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/repository"
)

// stubOrderRepo embeds the interface so only the methods a job touches need
// implementations; anything else panics loudly.
type stubOrderRepo struct {
	repository.OrderRepository
	dueOn      []domain.Order
	overdue    []domain.Order
	unarchived []domain.Order

	archivedIDs []int64
}

func (s *stubOrderRepo) ListDueOn(ctx context.Context, date string) ([]domain.Order, error) {
	return s.dueOn, nil
}

func (s *stubOrderRepo) ListOverdue(ctx context.Context, date string) ([]domain.Order, error) {
	return s.overdue, nil
}

func (s *stubOrderRepo) ListUnarchivedTerminal(ctx context.Context) ([]domain.Order, error) {
	return s.unarchived, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, archived bool) error {
	if archived {
		s.archivedIDs = append(s.archivedIDs, id)
	}
	return nil
}

type stubStore struct {
	repos repository.Repositories
}

func (s *stubStore) Repos() *repository.Repositories { return &s.repos }

func (s *stubStore) ExecTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	return fn(&s.repos)
}

type recordingEmail struct {
	reminders []string
	notices   []string
}

func (e *recordingEmail) SendReturnReminder(ctx context.Context, email, name, orderNumber, dueDate string) error {
	e.reminders = append(e.reminders, orderNumber)
	return nil
}

func (e *recordingEmail) SendOverdueNotice(ctx context.Context, email, name, orderNumber, dueDate string, daysOverdue int32) error {
	e.notices = append(e.notices, orderNumber)
	return nil
}

func (e *recordingEmail) SendSettlementReceipt(ctx context.Context, email, name, orderNumber, receiptNumber string, settlement domain.DepositSettlement) error {
	return nil
}

func TestSendReturnReminders(t *testing.T) {
	orders := &stubOrderRepo{dueOn: []domain.Order{
		{ID: 1, OrderNumber: "OC-1", CustomerEmail: "a@example.com", RentalEndDate: "2025-03-12"},
		{ID: 2, OrderNumber: "OC-2", CustomerEmail: "", RentalEndDate: "2025-03-12"}, // no email, skipped
	}}
	email := &recordingEmail{}
	jr := NewJobRunner(&stubStore{repos: repository.Repositories{Orders: orders}}, email, nil)

	jr.SendReturnReminders()

	assert.Equal(t, []string{"OC-1"}, email.reminders)
}

func TestSendOverdueNotices(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	orders := &stubOrderRepo{overdue: []domain.Order{
		{ID: 1, OrderNumber: "OC-1", CustomerEmail: "a@example.com", RentalEndDate: yesterday},
		{ID: 2, OrderNumber: "OC-2", CustomerEmail: "b@example.com", RentalEndDate: "garbage"}, // skipped
	}}
	email := &recordingEmail{}
	jr := NewJobRunner(&stubStore{repos: repository.Repositories{Orders: orders}}, email, nil)

	jr.SendOverdueNotices()

	assert.Equal(t, []string{"OC-1"}, email.notices)
}

func TestArchiveSweep(t *testing.T) {
	orders := &stubOrderRepo{unarchived: []domain.Order{
		{ID: 1, OrderNumber: "OC-1", Status: domain.OrderStatusReturned},
		{ID: 2, OrderNumber: "OC-2", Status: domain.OrderStatusCancelled},
		{ID: 3, OrderNumber: "OC-3", Status: domain.OrderStatusOnRent}, // not terminal, untouched
	}}
	jr := NewJobRunner(&stubStore{repos: repository.Repositories{Orders: orders}}, &recordingEmail{}, nil)

	jr.ArchiveSweep()

	assert.Equal(t, []int64{1, 2}, orders.archivedIDs)
}
