package invoices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 14)
	past := now.AddDate(0, 0, -14)

	dec := func(s string) decimal.Decimal {
		return decimal.RequireFromString(s)
	}

	tests := []struct {
		name       string
		total      string
		paid       string
		dueDate    time.Time
		wantStatus PaymentStatus
		wantPaidAt bool
	}{
		{"fully paid", "100", "100", future, StatusPaid, true},
		{"overpaid", "100", "150", future, StatusPaid, true},
		{"partially paid", "100", "50", future, StatusPartiallyPaid, false},
		{"nothing paid", "100", "0", future, StatusUnpaid, false},
		{"unpaid past due", "100", "0", past, StatusOverdue, false},
		{"partial past due", "100", "50", past, StatusOverdue, false},
		{"paid past due stays paid", "100", "150", past, StatusPaid, true},
		{"zero total counts as paid", "0", "0", future, StatusPaid, true},
		{"exact decimal comparison", "100.00", "99.999", future, StatusPartiallyPaid, false},
		{"due exactly now is not overdue", "100", "0", now, StatusUnpaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, paymentDate := DeriveStatus(dec(tt.total), dec(tt.paid), tt.dueDate, now)
			require.Equal(t, tt.wantStatus, status)
			if tt.wantPaidAt {
				require.NotNil(t, paymentDate)
				require.Equal(t, now, *paymentDate)
			} else {
				require.Nil(t, paymentDate)
			}
		})
	}
}

func TestDeriveStatusIsPure(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("42.50")
	paid := decimal.RequireFromString("42.50")

	first, firstDate := DeriveStatus(total, paid, now.AddDate(0, 1, 0), now)
	second, secondDate := DeriveStatus(total, paid, now.AddDate(0, 1, 0), now)
	require.Equal(t, first, second)
	require.Equal(t, *firstDate, *secondDate)
}
