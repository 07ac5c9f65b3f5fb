package service

import (
	"context"
	"time"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/pricing"
	"proprent-backend/internal/repository"
)

type financeService struct {
	store  repository.Store
	policy pricing.Policy
}

func NewFinanceService(store repository.Store, policy pricing.Policy) FinanceService {
	return &financeService{store: store, policy: policy}
}

func (s *financeService) Snapshot(ctx context.Context, orderID int64, now time.Time) (*domain.FinancialSnapshot, error) {
	repos := s.store.Repos()
	order, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := repos.OrderItems.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	recorded, err := repos.Transactions.SumPaidByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(s.policy, order, items, order.PrepaidAmount+recorded, now)
}

// BuildSnapshot assembles the financial view of one order. It is the single
// source of truth for derived totals; callers must not re-derive fee fields
// elsewhere.
func BuildSnapshot(policy pricing.Policy, order *domain.Order, items []domain.OrderItem, paid int64, now time.Time) (*domain.FinancialSnapshot, error) {
	days, err := policy.RentalDays(order.RentalStartDate, order.RentalEndDate, order.ReturnTime)
	if err != nil {
		return nil, err
	}

	var rentSubtotal, dailyRate int64
	for _, it := range items {
		if it.Quantity < 0 {
			return nil, domain.NewValidationError("quantity", "negative quantity %d for product %d", it.Quantity, it.ProductID)
		}
		dailyRate += it.DailyRate * int64(it.Quantity)
	}
	rentSubtotal = dailyRate * int64(days)

	rushFee, err := policy.RushFee(order.CreatedAt, order.RentalStartDate, order.IssueTime, rentSubtotal)
	if err != nil {
		return nil, err
	}

	issueAt, err := policy.IssueAt(order.RentalStartDate, order.IssueTime)
	if err != nil {
		return nil, err
	}
	returnAt, err := policy.ReturnAt(order.RentalEndDate, order.ReturnTime)
	if err != nil {
		return nil, err
	}
	outOfHoursFee := policy.OutOfHoursFee(issueAt, returnAt)
	minimumOrderFee := policy.MinimumOrderFee(rentSubtotal)

	// Late fee accrues on the snapshot while the goods are still out past the
	// deadline; damages and cleaning are only known at settlement.
	var lateFee int64
	if order.Status == domain.OrderStatusOnRent || order.Status == domain.OrderStatusReturning {
		lateFee, _, err = policy.LateFee(order.RentalEndDate, now, dailyRate)
		if err != nil {
			return nil, err
		}
	}

	servicesTotal := rushFee + outOfHoursFee + minimumOrderFee
	deposit, err := pricing.DepositForItems(items)
	if err != nil {
		return nil, err
	}

	rentDue := rentSubtotal - order.DiscountAmount + servicesTotal
	netDue := rentDue + lateFee - paid

	status := domain.FinanceStatusAwaitingPrepayment
	switch {
	case paid >= rentDue+deposit:
		status = domain.FinanceStatusPaidInFull
	case paid >= rentDue && rentDue > 0:
		status = domain.FinanceStatusPaidRent
	}

	return &domain.FinancialSnapshot{
		OrderID:         order.ID,
		RentSubtotal:    rentSubtotal,
		DiscountAmount:  order.DiscountAmount,
		RushFee:         rushFee,
		OutOfHoursFee:   outOfHoursFee,
		MinimumOrderFee: minimumOrderFee,
		ServicesTotal:   servicesTotal,
		DepositHold:     deposit,
		LateFee:         lateFee,
		PaidAmount:      paid,
		NetDue:          netDue,
		FinanceStatus:   status,
	}, nil
}
