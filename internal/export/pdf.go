// Package export renders a search view as a printable PDF report.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/starford/hoursheet/internal/present"
)

const (
	margin    = 15.0
	rowHeight = 6.0
)

// WritePDF writes a one-table report of v to w. Views without rows
// produce a single page carrying the status message.
func WritePDF(w io.Writer, title string, v present.View, generated time.Time) error {
	orientation := "P"
	if v.HasTable() && len(v.Table.Headers) > 4 {
		orientation = "L"
	}

	pdf := fpdf.New(orientation, "mm", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*margin

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(margin, margin, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(margin+2, margin+1.5)
	pdf.CellFormat(contentW-4, 7, tr(title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetY(margin + 13)
	pdf.SetFont("Helvetica", "", 9)
	meta := "Generated " + generated.Format("2006-01-02 15:04 MST")
	if v.Query != "" {
		meta = fmt.Sprintf("Search: %q   %s", v.Query, meta)
	}
	pdf.CellFormat(contentW, 5, tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if !v.HasTable() {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(contentW, 6, tr(v.Message), "", "L", false)
		return pdf.Output(w)
	}

	colW := contentW / float64(len(v.Table.Headers))
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		for _, h := range v.Table.Headers {
			pdf.CellFormat(colW, rowHeight+1, fit(pdf, tr, h, colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	header()
	_, pageH := pdf.GetPageSize()
	for _, row := range v.Table.Rows {
		if pdf.GetY()+rowHeight > pageH-margin-8 {
			pdf.AddPage()
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colW, rowHeight, fit(pdf, tr, cell, colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, tr(v.TotalLine()), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// fit shortens the UTF-8 text s with an ellipsis until it fits a cell of
// width w, and returns it translated for the core fonts. Widths are measured
// on the translated form, where every character is one byte.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(tr(s)) <= limit {
		return tr(s)
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > limit {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
