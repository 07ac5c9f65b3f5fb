package service

import (
	"context"
	"time"

	"proprent-backend/internal/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, []domain.OrderItem, error)
	ListOrders(ctx context.Context, status string, includeArchived bool, page, pageSize int32) ([]domain.Order, int32, error)

	// Lifecycle transitions. Each fails with a conflict on an illegal move.
	Accept(ctx context.Context, id int64) (*domain.Order, error)
	MarkReady(ctx context.Context, id int64) (*domain.Order, error)
	Issue(ctx context.Context, id int64) (*domain.Order, error)
	Ship(ctx context.Context, id int64) (*domain.Order, error)
	Deliver(ctx context.Context, id int64) (*domain.Order, error)
	StartRental(ctx context.Context, id int64) (*domain.Order, error)
	BeginReturn(ctx context.Context, id int64) (*domain.Order, error)
	Cancel(ctx context.Context, id int64, reason string) (*domain.Order, error)
}

type FinanceService interface {
	// Snapshot recomputes the order's financial view as of now. Idempotent
	// for the same order data and clock.
	Snapshot(ctx context.Context, orderID int64, now time.Time) (*domain.FinancialSnapshot, error)
}

// ReturnRequest describes a confirmed return event.
type ReturnRequest struct {
	ActualReturnAt    time.Time `json:"actual_return_at"`
	UnreturnedItemIDs []int64   `json:"unreturned_item_ids,omitempty"`
	DamageFee         int64     `json:"damage_fee"`
	CleaningFee       int64     `json:"cleaning_fee"`
	ManagerComment    string    `json:"manager_comment,omitempty"`
}

// ReturnResult reports the settlement and, for a partial return, the
// successor order carrying the unreturned items.
type ReturnResult struct {
	OrderID          int64                    `json:"order_id"`
	SuccessorOrderID int64                    `json:"successor_order_id,omitempty"`
	SuccessorNumber  string                   `json:"successor_number,omitempty"`
	Settlement       domain.DepositSettlement `json:"settlement"`
	ReceiptNumber    string                   `json:"receipt_number"`
}

type ReturnService interface {
	ConfirmReturn(ctx context.Context, orderID int64, req ReturnRequest) (*ReturnResult, error)
}

type DocumentService interface {
	// NextNumber allocates a document number in SERIES-YEAR-SEQUENCE form,
	// e.g. INV-2025-000123.
	NextNumber(ctx context.Context, series string, now time.Time) (string, error)
}

type EmailService interface {
	SendReturnReminder(ctx context.Context, email, name, orderNumber, dueDate string) error
	SendOverdueNotice(ctx context.Context, email, name, orderNumber, dueDate string, daysOverdue int32) error
	SendSettlementReceipt(ctx context.Context, email, name, orderNumber, receiptNumber string, settlement domain.DepositSettlement) error
}
