package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusAwaitingCustomer OrderStatus = "awaiting_customer"
	OrderStatusProcessing       OrderStatus = "processing"
	OrderStatusReadyForIssue    OrderStatus = "ready_for_issue"
	OrderStatusIssued           OrderStatus = "issued"
	OrderStatusOnRent           OrderStatus = "on_rent"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusReturning        OrderStatus = "returning"
	OrderStatusReturned         OrderStatus = "returned"
	OrderStatusPartialReturn    OrderStatus = "partial_return"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// IsTerminal reports whether an order in this status can never move again.
// Only terminal orders may carry the archived flag.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReturned || s == OrderStatusCancelled
}

type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"order_number"` // e.g. "OC-7293" or "OC-7293(2)"
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerEmail   string      `json:"customer_email"`
	Source          string      `json:"source"` // intake channel
	Status          OrderStatus `json:"status"`
	IsArchived      bool        `json:"is_archived"`
	RentalStartDate string      `json:"rental_start_date"` // yyyy-mm-dd, issue date
	RentalEndDate   string      `json:"rental_end_date"`   // yyyy-mm-dd, scheduled return date
	IssueTime       string      `json:"issue_time"`        // hh:mm, empty means opening hour
	ReturnTime      string      `json:"return_time"`       // hh:mm, empty means 17:00
	RentalDays      int32       `json:"rental_days"`
	TotalPrice      int64       `json:"total_price"` // rent subtotal before discount and fees
	DiscountAmount  int64       `json:"discount_amount"`
	DepositAmount   int64       `json:"deposit_amount"`
	PrepaidAmount   int64       `json:"prepaid_amount"`
	CancelReason    string      `json:"cancel_reason,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is a rental line item. Items belong to exactly one order; a
// partial-return split duplicates the unreturned lines into the successor
// order rather than sharing rows between the two.
type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	DailyRate int64  `json:"daily_rate"`
	// ReplacementCost is the full-loss liability per unit. The source catalog
	// stores it in a reused "EAN" attribute; it is not a barcode.
	ReplacementCost int64 `json:"replacement_cost"`
}

// SplitOrderNumber splits an order number into its base and version suffix.
// "OC-7293(2)" yields ("OC-7293", 2); a root number yields suffix 0.
func SplitOrderNumber(number string) (string, int32) {
	if !strings.HasSuffix(number, ")") {
		return number, 0
	}
	open := strings.LastIndex(number, "(")
	if open < 0 {
		return number, 0
	}
	n, err := strconv.Atoi(number[open+1 : len(number)-1])
	if err != nil || n < 1 {
		return number, 0
	}
	return number[:open], int32(n)
}

// VersionedOrderNumber renders "base(n)"; n must be >= 1.
func VersionedOrderNumber(base string, n int32) string {
	return fmt.Sprintf("%s(%d)", base, n)
}
