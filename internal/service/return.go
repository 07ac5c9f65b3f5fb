package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/logger"
	"proprent-backend/internal/pricing"
	"proprent-backend/internal/repository"
)

const receiptSeries = "INV"

type returnService struct {
	store    repository.Store
	docSvc   DocumentService
	emailSvc EmailService
	policy   pricing.Policy
}

func NewReturnService(store repository.Store, docSvc DocumentService, emailSvc EmailService, policy pricing.Policy) ReturnService {
	return &returnService{store: store, docSvc: docSvc, emailSvc: emailSvc, policy: policy}
}

// ConfirmReturn settles the deposit and closes the order. When items are
// missing it instead splits the order: the original closes as returned and a
// successor version carries the unreturned items back into the lifecycle.
func (s *returnService) ConfirmReturn(ctx context.Context, orderID int64, req ReturnRequest) (*ReturnResult, error) {
	repos := s.store.Repos()
	order, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusReturning {
		return nil, fmt.Errorf("order %s is %s, return not in progress: %w", order.OrderNumber, order.Status, domain.ErrConflict)
	}

	items, err := repos.OrderItems.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	unreturned, err := partitionUnreturned(items, req.UnreturnedItemIDs)
	if err != nil {
		return nil, err
	}

	var dailyRate int64
	for _, it := range items {
		dailyRate += it.DailyRate * int64(it.Quantity)
	}

	actualReturn := req.ActualReturnAt
	if actualReturn.IsZero() {
		actualReturn = time.Now()
	}
	lateFee, lateDays, err := s.policy.LateFee(order.RentalEndDate, actualReturn, dailyRate)
	if err != nil {
		return nil, err
	}

	recorded, err := repos.Transactions.SumPaidByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	snapshot, err := BuildSnapshot(s.policy, order, items, order.PrepaidAmount+recorded, actualReturn)
	if err != nil {
		return nil, err
	}
	unpaid := snapshot.RentSubtotal - snapshot.DiscountAmount + snapshot.ServicesTotal - snapshot.PaidAmount
	if unpaid < 0 {
		unpaid = 0
	}

	settlement, err := pricing.SettleDeposit(order.DepositAmount, req.DamageFee, lateFee, req.CleaningFee, unpaid)
	if err != nil {
		return nil, err
	}

	receipt, err := s.docSvc.NextNumber(ctx, receiptSeries, actualReturn)
	if err != nil {
		return nil, err
	}
	record := &domain.PaymentTransaction{
		OrderID:        order.ID,
		Type:           domain.TransactionTypeDepositSettled,
		ReceiptNumber:  receipt,
		Amount:         settlement.ToReturn,
		DamageFee:      settlement.DamageFee,
		CleaningFee:    settlement.CleaningFee,
		LateFee:        settlement.LateFee,
		ManagerComment: req.ManagerComment,
	}

	result := &ReturnResult{
		OrderID:       order.ID,
		Settlement:    settlement,
		ReceiptNumber: receipt,
	}

	if len(unreturned) == 0 {
		err = s.store.ExecTx(ctx, func(r *repository.Repositories) error {
			if err := r.Orders.UpdateStatus(ctx, order.ID, domain.OrderStatusReturned, true); err != nil {
				return err
			}
			if err := r.IssueCards.UpdateStatus(ctx, order.ID, domain.IssueCardStatusArchived); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return r.Transactions.Create(ctx, record)
		})
		if err != nil {
			return nil, err
		}
		logger.Info("order returned in full",
			"order_id", order.ID, "order_number", order.OrderNumber,
			"late_days", lateDays, "withheld", settlement.Withheld, "to_return", settlement.ToReturn)
	} else {
		successor, err := s.splitOrder(ctx, order, unreturned, record)
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent split of the same base raced us to the number;
			// reallocate once before giving up.
			logger.Warn("successor number collision, retrying allocation", "order_number", order.OrderNumber)
			successor, err = s.splitOrder(ctx, order, unreturned, record)
		}
		if err != nil {
			return nil, err
		}
		result.SuccessorOrderID = successor.ID
		result.SuccessorNumber = successor.OrderNumber
		logger.Info("order split on partial return",
			"order_id", order.ID, "order_number", order.OrderNumber,
			"successor_id", successor.ID, "successor_number", successor.OrderNumber,
			"unreturned_items", len(unreturned))
	}

	if order.CustomerEmail != "" {
		if err := s.emailSvc.SendSettlementReceipt(ctx, order.CustomerEmail, order.CustomerName, order.OrderNumber, receipt, settlement); err != nil {
			logger.Error("failed to send settlement receipt", "order_id", order.ID, "error", err)
		}
	}
	return result, nil
}

// splitOrder runs the partial-return split as one atomic unit: close the
// original, allocate the next version, insert the successor with its item
// copies and a fresh Issue Card. Any failure rolls the whole split back so a
// successor can never exist without a closed predecessor.
func (s *returnService) splitOrder(ctx context.Context, order *domain.Order, unreturned []domain.OrderItem, record *domain.PaymentTransaction) (*domain.Order, error) {
	var successor *domain.Order
	err := s.store.ExecTx(ctx, func(r *repository.Repositories) error {
		if err := r.Orders.UpdateStatus(ctx, order.ID, domain.OrderStatusReturned, true); err != nil {
			return err
		}
		if err := r.IssueCards.UpdateStatus(ctx, order.ID, domain.IssueCardStatusArchived); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := r.Transactions.Create(ctx, record); err != nil {
			return err
		}

		base, _ := domain.SplitOrderNumber(order.OrderNumber)
		seed, err := r.Orders.MaxVersionSuffix(ctx, base)
		if err != nil {
			return err
		}
		version, err := r.Sequences.NextOrderVersion(ctx, base, seed)
		if err != nil {
			return err
		}

		deposit, err := pricing.DepositForItems(unreturned)
		if err != nil {
			return err
		}
		var price int64
		for _, it := range unreturned {
			price += it.DailyRate * int64(it.Quantity)
		}

		successor = &domain.Order{
			OrderNumber:     domain.VersionedOrderNumber(base, version),
			CustomerName:    order.CustomerName,
			CustomerPhone:   order.CustomerPhone,
			CustomerEmail:   order.CustomerEmail,
			Source:          order.Source,
			Status:          domain.OrderStatusPartialReturn,
			RentalStartDate: order.RentalStartDate,
			RentalEndDate:   order.RentalEndDate,
			IssueTime:       order.IssueTime,
			ReturnTime:      order.ReturnTime,
			RentalDays:      order.RentalDays,
			TotalPrice:      price,
			DepositAmount:   deposit,
			Notes:           order.Notes,
		}
		if err := r.Orders.Create(ctx, successor); err != nil {
			return err
		}

		copies := make([]domain.OrderItem, len(unreturned))
		for i, it := range unreturned {
			copies[i] = domain.OrderItem{
				ProductID:       it.ProductID,
				Name:            it.Name,
				Quantity:        it.Quantity,
				DailyRate:       it.DailyRate,
				ReplacementCost: it.ReplacementCost,
			}
		}
		if err := r.OrderItems.CreateBatch(ctx, successor.ID, copies); err != nil {
			return err
		}

		return r.IssueCards.Upsert(ctx, &domain.IssueCard{
			OrderID: successor.ID,
			Status:  domain.IssueCardStatusPartialReturn,
		})
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

// partitionUnreturned resolves the unreturned item IDs against the order's
// item set; an unknown ID is a validation failure, not a silent skip.
func partitionUnreturned(items []domain.OrderItem, unreturnedIDs []int64) ([]domain.OrderItem, error) {
	byID := make(map[int64]domain.OrderItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	var unreturned []domain.OrderItem
	seen := make(map[int64]bool, len(unreturnedIDs))
	for _, id := range unreturnedIDs {
		it, ok := byID[id]
		if !ok {
			return nil, domain.NewValidationError("unreturned_item_ids", "item %d does not belong to the order", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		unreturned = append(unreturned, it)
	}
	return unreturned, nil
}
