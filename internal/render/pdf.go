package render

import (
	"bytes"
	"fmt"
	"strconv"
)

// buildPDF serialises pages into a minimal PDF 1.4 file. Objects are emitted
// in a fixed order and streams stay uncompressed, so equal input always
// produces equal bytes. No document metadata (and in particular no creation
// timestamp) is written.
func buildPDF(pages []*pageOps) []byte {
	var buf bytes.Buffer
	offsets := []int{0} // object 0 is the xref free entry

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Fixed object layout: 1 catalog, 2 page tree, 3 regular font, 4 bold
	// font, then a page/content pair per rendered page.
	kids := make([]byte, 0, 16*len(pages))
	for i := range pages {
		kids = fmt.Appendf(kids, "%d 0 R ", 5+2*i)
	}
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	for i, page := range pages {
		content := contentStream(page)
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			coord(pageWidth), coord(pageHeight), 6+2*i))
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xrefStart)
	return buf.Bytes()
}

// contentStream renders one page's draw instructions as PDF operators.
func contentStream(page *pageOps) string {
	var sb bytes.Buffer
	for _, op := range page.rules {
		fmt.Fprintf(&sb, "%s w %s %s m %s %s l S\n",
			coord(op.width), coord(op.x1), coord(op.y1), coord(op.x2), coord(op.y2))
	}
	for _, op := range page.texts {
		name := "/F1"
		if op.font == fontBold {
			name = "/F2"
		}
		fmt.Fprintf(&sb, "BT %s %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET\n",
			name, coord(op.size), coord(op.x), coord(op.y), escapeText(op.value))
	}
	return sb.String()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// escapeText makes a string safe for a PDF literal. Characters outside
// WinAnsi's reliable range degrade to '?' rather than corrupting the stream.
func escapeText(s string) string {
	var sb bytes.Buffer
	for _, r := range s {
		switch {
		case r == '\\' || r == '(' || r == ')':
			sb.WriteByte('\\')
			sb.WriteByte(byte(r))
		case r < 32 || r > 255:
			sb.WriteByte('?')
		default:
			sb.WriteByte(byte(r))
		}
	}
	return sb.String()
}

// Helvetica advance widths for ASCII 32..126, in 1/1000 em. Values are the
// standard Adobe core font metrics; anything outside the table falls back to
// the respective font's average width.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278,
	584, 584, 584, 556, 1015, 667, 667, 722, 722, 667, 611, 778, 722, 278,
	500, 667, 556, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 278, 278, 278, 469, 556, 333, 556, 556, 500, 556, 556,
	278, 556, 556, 222, 222, 500, 222, 833, 556, 556, 556, 556, 333, 500,
	278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333,
	584, 584, 584, 611, 975, 722, 722, 722, 722, 667, 611, 778, 722, 278,
	556, 722, 611, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 333, 278, 333, 584, 556, 333, 556, 611, 556, 611, 556,
	333, 611, 611, 278, 278, 556, 278, 889, 611, 611, 611, 611, 389, 556,
	333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

// textWidth measures a string in points for the given size and font, used
// for right alignment and centering.
func textWidth(s string, size float64, font fontID) float64 {
	widths := &helveticaWidths
	avg := 556
	if font == fontBold {
		widths = &helveticaBoldWidths
		avg = 584
	}
	total := 0
	for _, r := range s {
		if r >= 32 && r <= 126 {
			total += widths[r-32]
		} else {
			total += avg
		}
	}
	return float64(total) * size / 1000
}
