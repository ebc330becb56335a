// Package export implements the printable session sheet,
// by wrapping github.com/jung-kurt/gofpdf.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/benoitkugler/equimark/internal/session"
)

// page layout, in millimeters
const (
	marginX    = 15
	imageWidth = 180
)

// SessionSheet renders one session as an A4 document: a field
// summary on the first page, then each marked diagram on its own
// page. The returned bytes are a complete PDF file.
func SessionSheet(rec session.Record, leftPNG, rightPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Session Summary: "+rec.Horse))
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	field(pdf, tr, "Date", rec.DateString())
	field(pdf, tr, "Amount", fmt.Sprintf("$%.2f", rec.Amount))
	paid := "not paid"
	if rec.Paid {
		paid = "paid"
	}
	field(pdf, tr, "Paid", paid)
	if rec.Email != "" {
		field(pdf, tr, "Client", rec.Email)
	}
	if rec.Notes != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(30, 7, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(rec.Notes), "", "L", false)
	}

	diagramPage(pdf, "Left side", "left.png", leftPNG)
	diagramPage(pdf, "Right side", "right.png", rightPNG)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("session sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// field writes one "label: value" row.
func field(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
}

// diagramPage registers the PNG under `name` and draws it on a
// fresh page, scaled to the printable width.
func diagramPage(pdf *gofpdf.Fpdf, caption, name string, png []byte) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, caption)
	pdf.Ln(12)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, marginX, 0, imageWidth, 0, true, opts, 0, "")
}
