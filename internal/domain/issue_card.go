package domain

import "time"

type IssueCardStatus string

const (
	IssueCardStatusPreparation   IssueCardStatus = "preparation"
	IssueCardStatusIssued        IssueCardStatus = "issued"
	IssueCardStatusPartialReturn IssueCardStatus = "partial_return"
	IssueCardStatusArchived      IssueCardStatus = "archived"
)

// IssueCard is the warehouse pick list tracking preparation of an order's
// items before handoff. One card per order.
type IssueCard struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	Status    IssueCardStatus `json:"status"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
