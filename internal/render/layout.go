package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// A4 in points, with fixed margins.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	margin     = 40.0

	rowHeight  = 18.0
	bodySize   = 9.0
	labelSize  = 10.0
	titleSize  = 16.0
	issuerSize = 13.0

	// Rows never descend into the footer reserve.
	footerY       = margin
	contentBottom = margin + 30.0
)

// Table column geometry. Price, qty and amount are right-aligned.
const (
	colItemX      = margin
	colDescX      = 205.0
	colPriceRight = 430.0
	colQtyRight   = 475.0
	colTotalRight = pageWidth - margin
)

// Options configures a Renderer.
type Options struct {
	// CurrencyPrefix precedes every formatted amount.
	CurrencyPrefix string
	// VATPercent is applied to the subtotal in the totals block.
	VATPercent decimal.Decimal
	// Clock supplies the header timestamp. Output is byte-identical for
	// equal input and clock.
	Clock func() time.Time
}

// Renderer lays out documents. It holds no mutable state between calls and
// is safe for concurrent use.
type Renderer struct {
	opts Options
}

// New constructs a Renderer.
func New(opts Options) *Renderer {
	if opts.CurrencyPrefix == "" {
		opts.CurrencyPrefix = "$"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Renderer{opts: opts}
}

// Render produces the PDF bytes for one document. Unsupported kinds and
// structurally incomplete documents fail before any layout work begins.
func (r *Renderer) Render(kind DocumentKind, doc Document) ([]byte, error) {
	var title string
	switch kind {
	case KindPurchaseOrder:
		title = "PURCHASE ORDER"
	case KindInvoice:
		title = "INVOICE"
	default:
		return nil, fmt.Errorf("render: unsupported document kind %q: %w", kind, shared.ErrValidation)
	}
	if strings.TrimSpace(doc.Counterparty.Name) == "" {
		return nil, fmt.Errorf("render: counterparty is required: %w", shared.ErrValidation)
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("render: at least one line item is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(doc.Issuer.Name) == "" {
		return nil, fmt.Errorf("render: issuer is required: %w", shared.ErrValidation)
	}

	b := newBuilder()
	r.writeHeader(b, doc)
	r.writeMetadata(b, title, doc)
	r.writeLines(b, doc.Lines)
	r.writeTotals(b, doc.Lines)
	writeFooter(b)

	return buildPDF(b.pages), nil
}

// builder holds the vertical cursor while one document is assembled. It is
// created per call, so rendering stays stateless between calls.
type builder struct {
	pages []*pageOps
	cur   *pageOps
	y     float64
}

func newBuilder() *builder {
	b := &builder{}
	b.newPage()
	return b
}

func (b *builder) newPage() {
	page := &pageOps{}
	b.pages = append(b.pages, page)
	b.cur = page
	b.y = pageHeight - margin
}

func (b *builder) text(x, size float64, font fontID, value string) {
	b.cur.texts = append(b.cur.texts, textOp{x: x, y: b.y, size: size, font: font, value: value})
}

func (b *builder) textRight(right, size float64, font fontID, value string) {
	b.text(right-textWidth(value, size, font), size, font, value)
}

func (b *builder) rule(x1, x2, width float64) {
	b.cur.rules = append(b.cur.rules, ruleOp{x1: x1, y1: b.y, x2: x2, y2: b.y, width: width})
}

func (b *builder) advance(dy float64) {
	b.y -= dy
}

// formatDate renders a date as YYYY/M/D without zero padding.
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Year(), int(t.Month()), t.Day())
}

func (r *Renderer) writeHeader(b *builder, doc Document) {
	b.advance(issuerSize)
	b.text(colItemX, issuerSize, fontBold, doc.Issuer.Name)
	b.textRight(colTotalRight, bodySize, fontRegular, formatDate(r.opts.Clock()))
	for _, contact := range []string{doc.Issuer.Email, doc.Issuer.Phone, doc.Issuer.Address} {
		if contact == "" {
			continue
		}
		b.advance(12)
		b.text(colItemX, bodySize, fontRegular, contact)
	}
}

func (r *Renderer) writeMetadata(b *builder, title string, doc Document) {
	b.advance(34)
	b.text(colItemX, titleSize, fontBold, title)

	b.advance(20)
	b.text(colItemX, labelSize, fontBold, "No. "+doc.Number)
	b.advance(14)
	b.text(colItemX, bodySize, fontRegular, "Date: "+formatDate(doc.OrderDate))
	if doc.DueDate != nil {
		b.advance(12)
		b.text(colItemX, bodySize, fontRegular, "Due: "+formatDate(*doc.DueDate))
	}

	b.advance(18)
	b.text(colItemX, labelSize, fontBold, "To: "+doc.Counterparty.Name)
	for _, contact := range []string{doc.Counterparty.Email, doc.Counterparty.Phone, doc.Counterparty.Address} {
		if contact == "" {
			continue
		}
		b.advance(12)
		b.text(colItemX, bodySize, fontRegular, contact)
	}
}

func (b *builder) writeTableHead() {
	b.advance(rowHeight)
	b.text(colItemX, bodySize, fontBold, "Item")
	b.text(colDescX, bodySize, fontBold, "Description")
	b.textRight(colPriceRight, bodySize, fontBold, "Unit Price")
	b.textRight(colQtyRight, bodySize, fontBold, "Qty")
	b.textRight(colTotalRight, bodySize, fontBold, "Amount")
	b.advance(5)
	b.rule(colItemX, colTotalRight, 0.8)
}

// ensureSpace paginates when dy would descend into the footer reserve.
// A fresh page repeats the table head so rows stay readable.
func (b *builder) ensureSpace(dy float64) {
	if b.y-dy < contentBottom {
		b.newPage()
		b.writeTableHead()
	}
}

func (r *Renderer) writeLines(b *builder, lines []Line) {
	b.advance(16)
	b.writeTableHead()
	for _, line := range lines {
		b.ensureSpace(rowHeight)
		b.advance(rowHeight)
		description := line.Description
		if description == "" {
			description = "N/A"
		}
		b.text(colItemX, bodySize, fontRegular, line.Name)
		b.text(colDescX, bodySize, fontRegular, description)
		b.textRight(colPriceRight, bodySize, fontRegular, formatAmount(r.opts.CurrencyPrefix, line.UnitPrice))
		b.textRight(colQtyRight, bodySize, fontRegular, fmt.Sprintf("%d", line.Qty))
		b.textRight(colTotalRight, bodySize, fontRegular, formatAmount(r.opts.CurrencyPrefix, line.Total))
		b.advance(5)
		b.rule(colItemX, colTotalRight, 0.4)
	}
}

func (r *Renderer) writeTotals(b *builder, lines []Line) {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total)
	}
	vat := vatAmount(subtotal, r.opts.VATPercent)
	grand := subtotal.Add(vat)

	b.ensureSpace(3*rowHeight + 10)
	labelRight := colQtyRight

	b.advance(rowHeight + 4)
	b.textRight(labelRight, bodySize, fontRegular, "Subtotal")
	b.textRight(colTotalRight, bodySize, fontRegular, formatAmount(r.opts.CurrencyPrefix, subtotal))

	b.advance(rowHeight)
	b.textRight(labelRight, bodySize, fontRegular, fmt.Sprintf("VAT %s%%", r.opts.VATPercent.String()))
	b.textRight(colTotalRight, bodySize, fontRegular, formatAmount(r.opts.CurrencyPrefix, vat))

	b.advance(rowHeight)
	b.textRight(labelRight, labelSize, fontBold, "Total")
	b.textRight(colTotalRight, labelSize, fontBold, formatAmount(r.opts.CurrencyPrefix, grand))
}

// writeFooter pins the closing text to the bottom margin of every page,
// regardless of how far the content above reaches.
func writeFooter(b *builder) {
	const closing = "Thank you for your business."
	for _, page := range b.pages {
		x := (pageWidth - textWidth(closing, bodySize, fontRegular)) / 2
		page.texts = append(page.texts, textOp{x: x, y: footerY, size: bodySize, font: fontRegular, value: closing})
	}
}
