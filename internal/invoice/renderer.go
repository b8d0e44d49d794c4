package invoice

import (
	"bytes"
	"errors"
	"fmt"

	"api_pos/internal/sales"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrRender is returned when a document cannot be produced in full.
var ErrRender = errors.New("invoice render failed")

const (
	// MimeType of rendered documents.
	MimeType = "application/pdf"

	mmPerInch = 25.4
	margin    = 0.5 * mmPerInch
)

var (
	companyWidths = [3]float64{2.5 * mmPerInch, 2 * mmPerInch, 2.5 * mmPerInch}
	itemWidths    = [5]float64{0.5 * mmPerInch, 3.5 * mmPerInch, 1 * mmPerInch, 1.2 * mmPerInch, 1.3 * mmPerInch}
	itemAligns    = [5]string{"C", "L", "R", "R", "R"}
	totalsOffset  = 4.5 * mmPerInch
	totalsWidth   = 1.5 * mmPerInch
)

// Filename is the suggested download name for a sale's invoice.
func Filename(saleID int64) string {
	return fmt.Sprintf("invoice_%d.pdf", saleID)
}

// Render produces the PDF invoice of a sale. Identical input yields identical
// bytes. Text the core PDF fonts cannot encode fails the render.
func Render(sale sales.Sale, items []sales.SaleItem, employeeName string) ([]byte, error) {
	l, err := encodeLayout(Compose(sale, items, employeeName))
	if err != nil {
		return nil, err
	}
	return draw(l)
}

func draw(l Layout) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreationDate(l.CreatedAt)
	pdf.SetModificationDate(l.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(l.Meta[0], false)
	pdf.AddPage()

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)

	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 12, l.Title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	for i := range l.Company {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(companyWidths[0], 6, l.Company[i], "", 0, "L", false, 0, "")
		pdf.CellFormat(companyWidths[1], 6, "", "", 0, "L", false, 0, "")
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(companyWidths[2], 6, l.Meta[i], "", 1, "R", false, 0, "")
	}
	pdf.Ln(7.5)

	if len(l.Customer) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, l.Customer[0], "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, line := range l.Customer[1:] {
			pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(0, 0, 0)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetLineWidth(0.35)
	for i, h := range l.Header {
		pdf.CellFormat(itemWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range l.Rows {
		cells := [5]string{row.No, row.Name, row.Qty, row.Price, row.Subtotal}
		for i, c := range cells {
			pdf.CellFormat(itemWidths[i], 8, c, "1", 0, itemAligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(7.5)

	totals := [3][2]string{
		{labelSubtotal, l.Totals.Subtotal},
		{labelDiscount, l.Totals.Discount},
		{labelTotal, l.Totals.Total},
	}
	for i, t := range totals {
		style, size := "", 10.0
		if i == len(totals)-1 {
			style, size = "B", 12
		}
		pdf.SetFont("Helvetica", style, size)
		pdf.SetX(margin + totalsOffset)
		pdf.CellFormat(totalsWidth, 7, t[0], "1", 0, "R", false, 0, "")
		pdf.CellFormat(totalsWidth, 7, t[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(12.7)

	pageWidth, _ := pdf.GetPageSize()
	y := pdf.GetY()
	pdf.SetLineWidth(0.2)
	pdf.Line(margin, y, pageWidth-margin, y)
	pdf.Ln(2.5)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, l.Footer[0], "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, l.Footer[1], "", 1, "C", false, 0, "")
	pdf.Ln(2.5)
	pdf.CellFormat(0, 5, l.Footer[2], "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// encodeLayout converts every string to Windows-1252, the encoding of the
// core PDF fonts.
func encodeLayout(l Layout) (Layout, error) {
	e := &encoder{enc: charmap.Windows1252.NewEncoder()}

	l.Title = e.text(l.Title)
	for i := range l.Company {
		l.Company[i] = e.text(l.Company[i])
	}
	for i := range l.Meta {
		l.Meta[i] = e.text(l.Meta[i])
	}
	customer := make([]string, len(l.Customer))
	for i, line := range l.Customer {
		customer[i] = e.text(line)
	}
	l.Customer = customer
	for i := range l.Header {
		l.Header[i] = e.text(l.Header[i])
	}
	rows := make([]Row, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = Row{No: r.No, Name: e.text(r.Name), Qty: r.Qty, Price: r.Price, Subtotal: r.Subtotal}
	}
	l.Rows = rows
	for i := range l.Footer {
		l.Footer[i] = e.text(l.Footer[i])
	}

	if e.err != nil {
		return Layout{}, e.err
	}
	return l, nil
}

type encoder struct {
	enc *encoding.Encoder
	err error
}

func (e *encoder) text(s string) string {
	if e.err != nil {
		return ""
	}
	out, err := e.enc.String(s)
	if err != nil {
		e.err = fmt.Errorf("%w: cannot encode %q: %v", ErrRender, s, err)
		return ""
	}
	return out
}
