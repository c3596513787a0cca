// Package render turns resolved purchase orders and invoices into paginated
// PDF documents. The layout is a single linear pass that emits draw
// instructions (text and rules at explicit coordinates); the PDF writer then
// serialises those instructions deterministically.
package render

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind selects the document template.
type DocumentKind string

const (
	KindPurchaseOrder DocumentKind = "purchase_order"
	KindInvoice       DocumentKind = "invoice"
)

// Party is a fully resolved counterparty block.
type Party struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Issuer identifies who emits the document: the company when configured,
// otherwise the authoring user.
type Issuer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Line is one fully resolved line item, in submitted order.
type Line struct {
	Name        string
	Description string
	Qty         int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Document is the input snapshot for one render. It carries no identifiers;
// every reference has already been expanded by the resolver.
type Document struct {
	Number       string
	OrderDate    time.Time
	DueDate      *time.Time
	Issuer       Issuer
	Counterparty Party
	Lines        []Line
}

// fontID selects one of the embedded base fonts.
type fontID int

const (
	fontRegular fontID = iota
	fontBold
)

// textOp draws a string at an explicit baseline position.
type textOp struct {
	x, y  float64
	size  float64
	font  fontID
	value string
}

// ruleOp draws a horizontal line.
type ruleOp struct {
	x1, y1, x2, y2 float64
	width          float64
}

// pageOps collects the draw instructions of one page.
type pageOps struct {
	texts []textOp
	rules []ruleOp
}
