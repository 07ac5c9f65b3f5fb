package pricing

import (
	"proprent-backend/internal/domain"
	"proprent-backend/internal/logger"
)

// DepositForItems derives the deposit hold: half of the total full-loss value
// of the rented items. Callers must re-invoke it whenever the item set
// changes; the result is never cached.
func DepositForItems(items []domain.OrderItem) (int64, error) {
	var total int64
	for _, it := range items {
		if it.Quantity < 0 {
			return 0, domain.NewValidationError("quantity", "negative quantity %d for product %d", it.Quantity, it.ProductID)
		}
		if it.ReplacementCost < 0 {
			return 0, domain.NewValidationError("replacement_cost", "negative replacement cost %d for product %d", it.ReplacementCost, it.ProductID)
		}
		total += it.ReplacementCost * int64(it.Quantity)
	}
	return total / 2, nil
}

// SettleDeposit reconciles the held deposit against damages, late fee,
// cleaning fee and any unpaid balance. The withheld amount is clamped to the
// hold, so ToReturn + Withheld always equals DepositHeld; whatever the
// deposit cannot cover surfaces as RemainingBalance.
func SettleDeposit(depositHeld, damageFee, lateFee, cleaningFee, unpaidBalance int64) (domain.DepositSettlement, error) {
	for field, v := range map[string]int64{
		"deposit_held":   depositHeld,
		"damage_fee":     damageFee,
		"late_fee":       lateFee,
		"cleaning_fee":   cleaningFee,
		"unpaid_balance": unpaidBalance,
	} {
		if v < 0 {
			return domain.DepositSettlement{}, domain.NewValidationError(field, "must not be negative, got %d", v)
		}
	}

	unpaidApplied := unpaidBalance
	if unpaidApplied > depositHeld {
		unpaidApplied = depositHeld
	}

	withhold := damageFee + lateFee + cleaningFee + unpaidApplied
	if withhold > depositHeld {
		// Over-withholding is clamped, not surfaced: keeping the customer's
		// deposit whole is the defined behavior. Log it so the overflow is
		// visible to operations.
		logger.Warn("deposit withhold exceeds hold, clamping",
			"error", domain.ErrInvariantViolation,
			"withhold_raw", withhold,
			"deposit_held", depositHeld)
		withhold = depositHeld
	}

	remaining := damageFee + lateFee + cleaningFee + unpaidBalance - depositHeld
	if remaining < 0 {
		remaining = 0
	}

	return domain.DepositSettlement{
		DepositHeld:      depositHeld,
		DamageFee:        damageFee,
		LateFee:          lateFee,
		CleaningFee:      cleaningFee,
		UnpaidApplied:    unpaidApplied,
		Withheld:         withhold,
		ToReturn:         depositHeld - withhold,
		RemainingBalance: remaining,
	}, nil
}
