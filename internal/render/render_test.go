package render

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/shared"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
}

func testRenderer() *Renderer {
	return New(Options{
		CurrencyPrefix: "$",
		VATPercent:     decimal.RequireFromString("10"),
		Clock:          fixedClock,
	})
}

func testDocument() Document {
	return Document{
		Number:    "000042",
		OrderDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Issuer: Issuer{
			Name:  "Stockdesk Ltd",
			Email: "office@stockdesk.test",
			Phone: "+1 555 0100",
		},
		Counterparty: Party{
			Name:    "Acme Industrial",
			Email:   "orders@acme.test",
			Address: "12 Forge Street",
		},
		Lines: []Line{
			{Name: "M8 Bolt", Description: "Zinc plated", Qty: 100, UnitPrice: decimal.RequireFromString("0.35"), Total: decimal.RequireFromString("35.00")},
			{Name: "M8 Nut", Qty: 100, UnitPrice: decimal.RequireFromString("0.15"), Total: decimal.RequireFromString("15.00")},
		},
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := testRenderer()

	first, err := r.Render(KindPurchaseOrder, testDocument())
	require.NoError(t, err)
	second, err := r.Render(KindPurchaseOrder, testDocument())
	require.NoError(t, err)
	require.True(t, bytes.Equal(first, second), "equal input must produce identical bytes")
}

func TestRenderProducesValidPDFEnvelope(t *testing.T) {
	r := testRenderer()

	pdf, err := r.Render(KindPurchaseOrder, testDocument())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-1.4")))
	require.True(t, bytes.HasSuffix(pdf, []byte("%%EOF\n")))
	require.Contains(t, string(pdf), "/Type /Catalog")
	require.Contains(t, string(pdf), "/BaseFont /Helvetica")
}

func TestRenderHeaderAndTotals(t *testing.T) {
	r := testRenderer()

	pdf, err := r.Render(KindPurchaseOrder, testDocument())
	require.NoError(t, err)
	content := string(pdf)

	require.Contains(t, content, "(PURCHASE ORDER)")
	require.Contains(t, content, "(No. 000042)")
	// Header timestamp from the fixed clock, no zero padding.
	require.Contains(t, content, "(2026/3/5)")
	require.Contains(t, content, "(Date: 2026/3/1)")
	require.Contains(t, content, "(Acme Industrial)")
	// Subtotal 50.00, VAT 10% = 5.00, total 55.00.
	require.Contains(t, content, "($50.00)")
	require.Contains(t, content, "($5.00)")
	require.Contains(t, content, "($55.00)")
}

func TestRenderInvoiceKind(t *testing.T) {
	r := testRenderer()

	due := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	doc := testDocument()
	doc.DueDate = &due
	pdf, err := r.Render(KindInvoice, doc)
	require.NoError(t, err)
	content := string(pdf)
	require.Contains(t, content, "(INVOICE)")
	require.Contains(t, content, "(Due: 2026/4/30)")
}

func TestRenderUnknownKindFails(t *testing.T) {
	r := testRenderer()

	_, err := r.Render(DocumentKind("receipt"), testDocument())
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "receipt")
}

func TestRenderRejectsIncompleteDocuments(t *testing.T) {
	r := testRenderer()

	doc := testDocument()
	doc.Counterparty = Party{}
	_, err := r.Render(KindPurchaseOrder, doc)
	require.ErrorIs(t, err, shared.ErrValidation)

	doc = testDocument()
	doc.Lines = nil
	_, err = r.Render(KindPurchaseOrder, doc)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRenderPaginatesLongTables(t *testing.T) {
	r := testRenderer()

	doc := testDocument()
	doc.Lines = nil
	for i := 0; i < 120; i++ {
		doc.Lines = append(doc.Lines, Line{
			Name:      fmt.Sprintf("Item %03d", i),
			Qty:       1,
			UnitPrice: decimal.RequireFromString("1.00"),
			Total:     decimal.RequireFromString("1.00"),
		})
	}
	pdf, err := r.Render(KindPurchaseOrder, doc)
	require.NoError(t, err)

	pageCount := bytes.Count(pdf, []byte("/Type /Page "))
	require.Greater(t, pageCount, 1, "120 rows must not fit one page")
	// The footer is pinned to the bottom of every page.
	require.Equal(t, pageCount, bytes.Count(pdf, []byte("(Thank you for your business.)")))
}

func TestRenderEscapesSpecialCharacters(t *testing.T) {
	r := testRenderer()

	doc := testDocument()
	doc.Counterparty.Name = `Acme (Holdings) \ Co`
	pdf, err := r.Render(KindPurchaseOrder, doc)
	require.NoError(t, err)
	require.Contains(t, string(pdf), `(To: Acme \(Holdings\) \\ Co)`)
}

func TestVATAmountRounding(t *testing.T) {
	subtotal := decimal.RequireFromString("33.33")
	vat := vatAmount(subtotal, decimal.RequireFromString("10"))
	require.True(t, vat.Equal(decimal.RequireFromString("3.33")), "got %s", vat)

	vat = vatAmount(decimal.RequireFromString("0.05"), decimal.RequireFromString("10"))
	require.True(t, vat.Equal(decimal.RequireFromString("0.01")), "got %s", vat)
}

func TestFormatAmountGroupsThousands(t *testing.T) {
	require.Equal(t, "$1,234.50", formatAmount("$", decimal.RequireFromString("1234.5")))
	require.Equal(t, "$0.35", formatAmount("$", decimal.RequireFromString("0.35")))
}
