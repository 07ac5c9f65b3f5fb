package domain

import "time"

type TransactionType string

const (
	TransactionTypePrepayment       TransactionType = "PREPAYMENT"
	TransactionTypeDepositSettled   TransactionType = "DEPOSIT_SETTLED"
	TransactionTypeBalanceDue       TransactionType = "BALANCE_DUE"
	TransactionTypeManualAdjustment TransactionType = "MANUAL_ADJUSTMENT"
)

// PaymentTransaction records money movement against an order for the
// payments/ledger collaborator. Fee components are structured columns, not
// encoded in the description text.
type PaymentTransaction struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"order_id"`
	Type           TransactionType `json:"type"`
	ReceiptNumber  string          `json:"receipt_number,omitempty"` // SERIES-YEAR-SEQUENCE
	Amount         int64           `json:"amount"`                   // positive credit to customer, negative charge
	DamageFee      int64           `json:"damage_fee"`
	CleaningFee    int64           `json:"cleaning_fee"`
	LateFee        int64           `json:"late_fee"`
	ManagerComment string          `json:"manager_comment,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
