package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/pricing"
)

func returningOrder() *domain.Order {
	return &domain.Order{
		ID:              9,
		OrderNumber:     "OC-9",
		CustomerName:    "Jane Smith",
		CustomerEmail:   "jane@example.com",
		Status:          domain.OrderStatusReturning,
		RentalStartDate: "2025-03-10",
		RentalEndDate:   "2025-03-12",
		IssueTime:       "11:00",
		ReturnTime:      "12:00",
		DepositAmount:   2500,
		PrepaidAmount:   2000,
		// Saturday, so no rush fee enters the unpaid-balance math.
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestConfirmReturnFull(t *testing.T) {
	ctx := context.Background()
	onTime := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

	items := []domain.OrderItem{
		{ID: 1, OrderID: 9, ProductID: 7, Quantity: 2, DailyRate: 500, ReplacementCost: 2500},
	}

	t.Run("Settles, archives and records the receipt", func(t *testing.T) {
		store, m := newMockStore()
		doc := new(MockDocumentService)
		email := new(MockEmailService)
		svc := NewReturnService(store, doc, email, pricing.DefaultPolicy())

		m.orders.On("GetByID", ctx, int64(9)).Return(returningOrder(), nil)
		m.items.On("ListByOrder", ctx, int64(9)).Return(items, nil)
		m.txs.On("SumPaidByOrder", ctx, int64(9)).Return(int64(0), nil)
		doc.On("NextNumber", ctx, "INV", onTime).Return("INV-2025-000123", nil)
		m.orders.On("UpdateStatus", ctx, int64(9), domain.OrderStatusReturned, true).Return(nil)
		m.cards.On("UpdateStatus", ctx, int64(9), domain.IssueCardStatusArchived).Return(nil)
		m.txs.On("Create", ctx, mock.MatchedBy(func(tx *domain.PaymentTransaction) bool {
			return tx.OrderID == 9 &&
				tx.Type == domain.TransactionTypeDepositSettled &&
				tx.ReceiptNumber == "INV-2025-000123" &&
				tx.DamageFee == 300 && tx.CleaningFee == 200 && tx.LateFee == 0
		})).Return(nil)
		email.On("SendSettlementReceipt", ctx, "jane@example.com", "Jane Smith", "OC-9", "INV-2025-000123", mock.Anything).Return(nil)

		result, err := svc.ConfirmReturn(ctx, 9, ReturnRequest{
			ActualReturnAt: onTime,
			DamageFee:      300,
			CleaningFee:    200,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(9), result.OrderID)
		assert.Equal(t, int64(0), result.SuccessorOrderID)
		assert.Equal(t, "INV-2025-000123", result.ReceiptNumber)
		assert.Equal(t, int64(500), result.Settlement.Withheld)
		assert.Equal(t, int64(2000), result.Settlement.ToReturn)
		assert.Equal(t, int64(0), result.Settlement.RemainingBalance)
		m.orders.AssertExpectations(t)
		m.txs.AssertExpectations(t)
		email.AssertExpectations(t)
	})

	t.Run("Late return bills the daily rate", func(t *testing.T) {
		store, m := newMockStore()
		doc := new(MockDocumentService)
		email := new(MockEmailService)
		svc := NewReturnService(store, doc, email, pricing.DefaultPolicy())

		// Two days past the 2025-03-12 17:00 deadline at a 1000/day rate.
		late := time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC)

		m.orders.On("GetByID", ctx, int64(9)).Return(returningOrder(), nil)
		m.items.On("ListByOrder", ctx, int64(9)).Return(items, nil)
		m.txs.On("SumPaidByOrder", ctx, int64(9)).Return(int64(0), nil)
		doc.On("NextNumber", ctx, "INV", late).Return("INV-2025-000124", nil)
		m.orders.On("UpdateStatus", ctx, int64(9), domain.OrderStatusReturned, true).Return(nil)
		m.cards.On("UpdateStatus", ctx, int64(9), domain.IssueCardStatusArchived).Return(nil)
		m.txs.On("Create", ctx, mock.Anything).Return(nil)
		email.On("SendSettlementReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := svc.ConfirmReturn(ctx, 9, ReturnRequest{ActualReturnAt: late})
		assert.NoError(t, err)
		assert.Equal(t, int64(2000), result.Settlement.LateFee)
		assert.Equal(t, int64(2000), result.Settlement.Withheld)
		assert.Equal(t, int64(500), result.Settlement.ToReturn)
	})

	t.Run("Receipt email failure does not fail the return", func(t *testing.T) {
		store, m := newMockStore()
		doc := new(MockDocumentService)
		email := new(MockEmailService)
		svc := NewReturnService(store, doc, email, pricing.DefaultPolicy())

		m.orders.On("GetByID", ctx, int64(9)).Return(returningOrder(), nil)
		m.items.On("ListByOrder", ctx, int64(9)).Return(items, nil)
		m.txs.On("SumPaidByOrder", ctx, int64(9)).Return(int64(0), nil)
		doc.On("NextNumber", ctx, "INV", onTime).Return("INV-2025-000125", nil)
		m.orders.On("UpdateStatus", ctx, int64(9), domain.OrderStatusReturned, true).Return(nil)
		m.cards.On("UpdateStatus", ctx, int64(9), domain.IssueCardStatusArchived).Return(nil)
		m.txs.On("Create", ctx, mock.Anything).Return(nil)
		email.On("SendSettlementReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		result, err := svc.ConfirmReturn(ctx, 9, ReturnRequest{ActualReturnAt: onTime})
		assert.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("Return not in progress", func(t *testing.T) {
		store, m := newMockStore()
		svc := NewReturnService(store, new(MockDocumentService), new(MockEmailService), pricing.DefaultPolicy())

		order := returningOrder()
		order.Status = domain.OrderStatusOnRent
		m.orders.On("GetByID", ctx, int64(9)).Return(order, nil)

		_, err := svc.ConfirmReturn(ctx, 9, ReturnRequest{ActualReturnAt: onTime})
		assert.ErrorIs(t, err, domain.ErrConflict)
		m.items.AssertNotCalled(t, "ListByOrder", mock.Anything, mock.Anything)
	})

	t.Run("Unknown unreturned item", func(t *testing.T) {
		store, m := newMockStore()
		svc := NewReturnService(store, new(MockDocumentService), new(MockEmailService), pricing.DefaultPolicy())

		m.orders.On("GetByID", ctx, int64(9)).Return(returningOrder(), nil)
		m.items.On("ListByOrder", ctx, int64(9)).Return(items, nil)

		_, err := svc.ConfirmReturn(ctx, 9, ReturnRequest{
			ActualReturnAt:    onTime,
			UnreturnedItemIDs: []int64{99},
		})
		assert.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func splitOrderFixture() (*domain.Order, []domain.OrderItem) {
	order := returningOrder()
	order.ID = 10
	order.OrderNumber = "OC-100"
	items := []domain.OrderItem{
		{ID: 1, OrderID: 10, ProductID: 7, Quantity: 1, DailyRate: 600, ReplacementCost: 2000},
		{ID: 2, OrderID: 10, ProductID: 8, Quantity: 1, DailyRate: 400, ReplacementCost: 3000},
	}
	return order, items
}

func TestConfirmReturnPartial(t *testing.T) {
	ctx := context.Background()
	onTime := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

	t.Run("Splits into a successor version", func(t *testing.T) {
		store, m := newMockStore()
		doc := new(MockDocumentService)
		email := new(MockEmailService)
		svc := NewReturnService(store, doc, email, pricing.DefaultPolicy())

		order, items := splitOrderFixture()
		order.CustomerEmail = ""

		m.orders.On("GetByID", ctx, int64(10)).Return(order, nil)
		m.items.On("ListByOrder", ctx, int64(10)).Return(items, nil)
		m.txs.On("SumPaidByOrder", ctx, int64(10)).Return(int64(0), nil)
		doc.On("NextNumber", ctx, "INV", onTime).Return("INV-2025-000200", nil)

		m.orders.On("UpdateStatus", ctx, int64(10), domain.OrderStatusReturned, true).Return(nil)
		m.cards.On("UpdateStatus", ctx, int64(10), domain.IssueCardStatusArchived).Return(nil)
		m.txs.On("Create", ctx, mock.Anything).Return(nil)
		m.orders.On("MaxVersionSuffix", ctx, "OC-100").Return(int32(0), nil)
		m.seqs.On("NextOrderVersion", ctx, "OC-100", int32(0)).Return(int32(1), nil)
		m.orders.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.OrderNumber == "OC-100(1)" &&
				o.Status == domain.OrderStatusPartialReturn &&
				o.TotalPrice == 400 &&
				o.DepositAmount == 1500 &&
				o.CustomerName == "Jane Smith"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 11
		}).Return(nil)
		m.items.On("CreateBatch", ctx, int64(11), mock.MatchedBy(func(copies []domain.OrderItem) bool {
			return len(copies) == 1 && copies[0].ID == 0 && copies[0].ProductID == 8
		})).Return(nil)
		m.cards.On("Upsert", ctx, mock.MatchedBy(func(card *domain.IssueCard) bool {
			return card.OrderID == 11 && card.Status == domain.IssueCardStatusPartialReturn
		})).Return(nil)

		result, err := svc.ConfirmReturn(ctx, 10, ReturnRequest{
			ActualReturnAt:    onTime,
			UnreturnedItemIDs: []int64{2},
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(11), result.SuccessorOrderID)
		assert.Equal(t, "OC-100(1)", result.SuccessorNumber)
		assert.Equal(t, int64(2500), result.Settlement.ToReturn)
		m.orders.AssertExpectations(t)
		m.items.AssertExpectations(t)
		m.cards.AssertExpectations(t)
		m.seqs.AssertExpectations(t)
	})

	t.Run("Retries once on a number collision", func(t *testing.T) {
		store, m := newMockStore()
		doc := new(MockDocumentService)
		email := new(MockEmailService)
		svc := NewReturnService(store, doc, email, pricing.DefaultPolicy())

		order, items := splitOrderFixture()
		order.CustomerEmail = ""

		m.orders.On("GetByID", ctx, int64(10)).Return(order, nil)
		m.items.On("ListByOrder", ctx, int64(10)).Return(items, nil)
		m.txs.On("SumPaidByOrder", ctx, int64(10)).Return(int64(0), nil)
		doc.On("NextNumber", ctx, "INV", onTime).Return("INV-2025-000201", nil)

		m.orders.On("UpdateStatus", ctx, int64(10), domain.OrderStatusReturned, true).Return(nil)
		m.cards.On("UpdateStatus", ctx, int64(10), domain.IssueCardStatusArchived).Return(nil)
		m.txs.On("Create", ctx, mock.Anything).Return(nil)
		m.orders.On("MaxVersionSuffix", ctx, "OC-100").Return(int32(1), nil)
		m.seqs.On("NextOrderVersion", ctx, "OC-100", int32(1)).Return(int32(2), nil).Once()
		m.seqs.On("NextOrderVersion", ctx, "OC-100", int32(1)).Return(int32(3), nil).Once()
		m.orders.On("Create", ctx, mock.Anything).
			Return(fmt.Errorf("order number OC-100(2) already exists: %w", domain.ErrConflict)).Once()
		m.orders.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 12
		}).Return(nil).Once()
		m.items.On("CreateBatch", ctx, int64(12), mock.Anything).Return(nil)
		m.cards.On("Upsert", ctx, mock.Anything).Return(nil)

		result, err := svc.ConfirmReturn(ctx, 10, ReturnRequest{
			ActualReturnAt:    onTime,
			UnreturnedItemIDs: []int64{2},
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(12), result.SuccessorOrderID)
		assert.Equal(t, "OC-100(3)", result.SuccessorNumber)
		m.seqs.AssertExpectations(t)
		m.orders.AssertExpectations(t)
	})

	t.Run("Item copy failure aborts the split", func(t *testing.T) {
		store, m := newMockStore()
		doc := new(MockDocumentService)
		email := new(MockEmailService)
		svc := NewReturnService(store, doc, email, pricing.DefaultPolicy())

		order, items := splitOrderFixture()
		order.CustomerEmail = ""

		m.orders.On("GetByID", ctx, int64(10)).Return(order, nil)
		m.items.On("ListByOrder", ctx, int64(10)).Return(items, nil)
		m.txs.On("SumPaidByOrder", ctx, int64(10)).Return(int64(0), nil)
		doc.On("NextNumber", ctx, "INV", onTime).Return("INV-2025-000202", nil)

		m.orders.On("UpdateStatus", ctx, int64(10), domain.OrderStatusReturned, true).Return(nil)
		m.cards.On("UpdateStatus", ctx, int64(10), domain.IssueCardStatusArchived).Return(nil)
		m.txs.On("Create", ctx, mock.Anything).Return(nil)
		m.orders.On("MaxVersionSuffix", ctx, "OC-100").Return(int32(0), nil)
		m.seqs.On("NextOrderVersion", ctx, "OC-100", int32(0)).Return(int32(1), nil)
		m.orders.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 13
		}).Return(nil)
		m.items.On("CreateBatch", ctx, int64(13), mock.Anything).Return(errors.New("insert failed"))

		result, err := svc.ConfirmReturn(ctx, 10, ReturnRequest{
			ActualReturnAt:    onTime,
			UnreturnedItemIDs: []int64{2},
		})
		assert.Error(t, err)
		assert.Nil(t, result)
		// Not a number collision, so no second allocation attempt.
		m.seqs.AssertNumberOfCalls(t, "NextOrderVersion", 1)
	})
}
