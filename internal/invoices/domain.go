package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type selects the invoice counterparty: a client or a supplier.
type Type string

const (
	TypeClient   Type = "CLIENT"
	TypeSupplier Type = "SUPPLIER"
)

// Valid reports whether the type is known.
func (t Type) Valid() bool {
	return t == TypeClient || t == TypeSupplier
}

// PaymentStatus is always derived from amounts and dates, never stored as
// user input.
type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "UNPAID"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusPaid          PaymentStatus = "PAID"
	StatusOverdue       PaymentStatus = "OVERDUE"
)

// Invoice domain model. ClientID and SupplierID are mutually exclusive,
// selected by Type; zero means unset. OrderID optionally links the invoice
// to a purchase order.
type Invoice struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number"`
	Type        Type            `json:"type"`
	OrderID     int64           `json:"order_id,omitempty"`
	ClientID    int64           `json:"client_id,omitempty"`
	SupplierID  int64           `json:"supplier_id,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	DueDate     time.Time       `json:"due_date"`
	PaymentDate *time.Time      `json:"payment_date"`
	Status      PaymentStatus   `json:"payment_status"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
