package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeriveStatus maps amounts and dates to a payment status and payment date.
// Pure and total: it never errors for any decimal/date input.
//
// The rules apply in order: full payment wins outright and stamps the
// payment date; otherwise a partial or zero payment classifies the invoice,
// and a past due date overrides the result with OVERDUE. Paid is never
// downgraded to Overdue.
func DeriveStatus(total, paid decimal.Decimal, dueDate, now time.Time) (PaymentStatus, *time.Time) {
	if paid.GreaterThanOrEqual(total) {
		paymentDate := now
		return StatusPaid, &paymentDate
	}

	status := StatusUnpaid
	if paid.IsPositive() {
		status = StatusPartiallyPaid
	}
	if dueDate.Before(now) {
		status = StatusOverdue
	}
	return status, nil
}
