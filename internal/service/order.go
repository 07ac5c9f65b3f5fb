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

// orderTransitions is the lifecycle table. A status maps to the set of
// statuses it may move to; anything else is a conflict. A partial_return
// successor re-enters the lifecycle as if freshly accepted or already out.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusAwaitingCustomer: {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing:       {domain.OrderStatusReadyForIssue, domain.OrderStatusCancelled},
	domain.OrderStatusReadyForIssue:    {domain.OrderStatusIssued, domain.OrderStatusCancelled},
	domain.OrderStatusIssued:           {domain.OrderStatusOnRent, domain.OrderStatusShipped},
	domain.OrderStatusShipped:          {domain.OrderStatusDelivered},
	domain.OrderStatusDelivered:        {domain.OrderStatusOnRent},
	domain.OrderStatusOnRent:           {domain.OrderStatusReturning},
	domain.OrderStatusReturning:        {domain.OrderStatusReturned, domain.OrderStatusPartialReturn},
	domain.OrderStatusPartialReturn:    {domain.OrderStatusProcessing, domain.OrderStatusOnRent},
	domain.OrderStatusReturned:         {},
	domain.OrderStatusCancelled:        {},
}

// CanTransition reports whether the lifecycle permits from → to.
func CanTransition(from, to domain.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type orderService struct {
	store  repository.Store
	policy pricing.Policy
}

func NewOrderService(store repository.Store, policy pricing.Policy) OrderService {
	return &orderService{store: store, policy: policy}
}

func (s *orderService) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	days, err := s.policy.RentalDays(order.RentalStartDate, order.RentalEndDate, order.ReturnTime)
	if err != nil {
		return nil, err
	}
	deposit, err := pricing.DepositForItems(items)
	if err != nil {
		return nil, err
	}

	var dailyRate int64
	for _, it := range items {
		dailyRate += it.DailyRate * int64(it.Quantity)
	}

	order.Status = domain.OrderStatusAwaitingCustomer
	order.IsArchived = false
	order.RentalDays = days
	order.DepositAmount = deposit
	order.TotalPrice = dailyRate * int64(days)
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	err = s.store.ExecTx(ctx, func(r *repository.Repositories) error {
		if order.OrderNumber == "" {
			seq, err := r.Sequences.NextOrderNumber(ctx)
			if err != nil {
				return err
			}
			order.OrderNumber = fmt.Sprintf("OC-%d", seq)
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		return r.OrderItems.CreateBatch(ctx, order.ID, items)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order created", "order_id", order.ID, "order_number", order.OrderNumber, "rental_days", days, "deposit", deposit)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, []domain.OrderItem, error) {
	repos := s.store.Repos()
	order, err := repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := repos.OrderItems.ListByOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

func (s *orderService) ListOrders(ctx context.Context, status string, includeArchived bool, page, pageSize int32) ([]domain.Order, int32, error) {
	return s.store.Repos().Orders.List(ctx, status, includeArchived, page, pageSize)
}

// transition moves the order to the target status after checking the
// lifecycle table. extra runs inside the same transaction for side effects.
func (s *orderService) transition(ctx context.Context, id int64, to domain.OrderStatus, extra func(*repository.Repositories, *domain.Order) error) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.ExecTx(ctx, func(r *repository.Repositories) error {
		var err error
		order, err = r.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, to) {
			return fmt.Errorf("order %s cannot move from %s to %s: %w", order.OrderNumber, order.Status, to, domain.ErrConflict)
		}
		from := order.Status
		order.Status = to
		if err := r.Orders.UpdateStatus(ctx, id, to, order.IsArchived); err != nil {
			return err
		}
		logger.Info("order status changed", "order_id", id, "from", from, "to", to)
		if extra != nil {
			return extra(r, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Accept moves a new order into preparation and stages its Issue Card.
func (s *orderService) Accept(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusProcessing, func(r *repository.Repositories, o *domain.Order) error {
		return r.IssueCards.Upsert(ctx, &domain.IssueCard{
			OrderID: o.ID,
			Status:  domain.IssueCardStatusPreparation,
		})
	})
}

func (s *orderService) MarkReady(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusReadyForIssue, nil)
}

func (s *orderService) Issue(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusIssued, func(r *repository.Repositories, o *domain.Order) error {
		err := r.IssueCards.UpdateStatus(ctx, o.ID, domain.IssueCardStatusIssued)
		if errors.Is(err, domain.ErrNotFound) {
			// Orders accepted before issue-card tracking have no card.
			return nil
		}
		return err
	})
}

func (s *orderService) Ship(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusShipped, nil)
}

func (s *orderService) Deliver(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusDelivered, nil)
}

func (s *orderService) StartRental(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusOnRent, nil)
}

func (s *orderService) BeginReturn(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusReturning, nil)
}

// Cancel is only legal before issuance and is the one move with no forward
// path out.
func (s *orderService) Cancel(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusCancelled, func(r *repository.Repositories, o *domain.Order) error {
		o.CancelReason = reason
		o.IsArchived = true
		return r.Orders.Update(ctx, o)
	})
}
