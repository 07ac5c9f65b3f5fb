package domain

type FinanceStatus string

const (
	FinanceStatusAwaitingPrepayment FinanceStatus = "awaiting_prepayment"
	FinanceStatusPaidRent           FinanceStatus = "paid_rent"
	FinanceStatusPaidInFull         FinanceStatus = "paid_in_full"
)

// FinancialSnapshot is the derived financial view of one order. It is
// recomputed from the order, its items and the clock on every change, never
// stored as a ledger of its own.
type FinancialSnapshot struct {
	OrderID         int64         `json:"order_id"`
	RentSubtotal    int64         `json:"rent_subtotal"`
	DiscountAmount  int64         `json:"discount_amount"`
	RushFee         int64         `json:"rush_fee"`
	OutOfHoursFee   int64         `json:"out_of_hours_fee"`
	MinimumOrderFee int64         `json:"minimum_order_fee"`
	ServicesTotal   int64         `json:"services_total"` // rush + out-of-hours + minimum-order
	DepositHold     int64         `json:"deposit_hold"`
	LateFee         int64         `json:"late_fee"`
	CleaningFee     int64         `json:"cleaning_fee"`
	DamageFee       int64         `json:"damage_fee"`
	PaidAmount      int64         `json:"paid_amount"`
	NetDue          int64         `json:"net_due"`
	FinanceStatus   FinanceStatus `json:"finance_status"`
}

// DepositSettlement is the ephemeral result of reconciling the held deposit
// at return time. to_return + withheld always equals deposit_held.
type DepositSettlement struct {
	DepositHeld      int64 `json:"deposit_held"`
	DamageFee        int64 `json:"damage_fee"`
	LateFee          int64 `json:"late_fee"`
	CleaningFee      int64 `json:"cleaning_fee"`
	UnpaidApplied    int64 `json:"unpaid_applied"` // unpaid balance covered by the deposit
	Withheld         int64 `json:"withheld"`
	ToReturn         int64 `json:"to_return"`
	RemainingBalance int64 `json:"remaining_balance"` // owed after the deposit is exhausted
}
