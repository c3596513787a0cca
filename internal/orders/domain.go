package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order lifecycle statuses. Transition rules live in the UI layer;
// the core only validates membership.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether the status is a known lifecycle value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusAccepted, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// LineItem is a value object embedded in its order. It has no independent
// lifecycle.
type LineItem struct {
	ProductID int64           `json:"product_id"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Total returns quantity times unit price.
func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Qty))
}

// PurchaseOrder domain model. Number is assigned once at creation and is
// immutable thereafter.
type PurchaseOrder struct {
	ID         int64      `json:"id"`
	Number     string     `json:"order_number"`
	SupplierID int64      `json:"supplier_id"`
	Status     Status     `json:"status"`
	OrderDate  time.Time  `json:"order_date"`
	CreatedBy  int64      `json:"created_by"`
	Lines      []LineItem `json:"lines"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Total sums the line totals.
func (o PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Total())
	}
	return total
}
