package render

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders a monetary value with exactly two decimal places,
// digit grouping and the configured currency prefix.
func formatAmount(prefix string, v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return prefix + amountPrinter.Sprintf("%.2f", f)
}

// vatAmount computes round(subtotal * percent / 100, 2).
func vatAmount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}
