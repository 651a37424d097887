package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin      = 50.0
	pdfRowsPerPage = 20
	pdfRowHeight   = 18.0
	pdfCellLimit   = 50
)

// RenderPDF lays the table out on A4 landscape pages, twenty rows per page,
// with the title and applied filters above the first table.
func RenderPDF(table Table, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("{nb}")

	generated := now.UTC().Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		_, pageHeight := pdf.GetPageSize()
		pdf.SetY(pageHeight - pdfMargin + 10)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb} | Generated on %s", pdf.PageNo(), generated), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	title := table.Title
	if title == "" {
		title = "Export"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 24, title, "", 1, "L", false, 0, "")

	if len(table.Filters) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 14, "Applied Filters:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, f := range table.Filters {
			pdf.CellFormat(0, 12, fmt.Sprintf("%s: %s", f.Label, f.Value), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(8)

	if table.Len() == 0 || len(table.Columns) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 20, "No data available", "", 1, "L", false, 0, "")
		return output(pdf)
	}

	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 2*pdfMargin) / float64(len(table.Columns))

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, column := range table.Columns {
			pdf.CellFormat(colWidth, pdfRowHeight, Truncate(column, pdfCellLimit), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 7)
	}

	writeHeader()
	for i, row := range table.Rows {
		if i > 0 && i%pdfRowsPerPage == 0 {
			pdf.AddPage()
			writeHeader()
		}
		for c := range table.Columns {
			var value string
			if c < len(row) {
				value = Truncate(FormatValue(row[c]), pdfCellLimit)
			}
			pdf.CellFormat(colWidth, pdfRowHeight, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// PageCount returns how many pages a table of n rows occupies.
func PageCount(n int) int {
	if n <= pdfRowsPerPage {
		return 1
	}
	return (n + pdfRowsPerPage - 1) / pdfRowsPerPage
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
