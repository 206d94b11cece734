package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/starford/hoursheet/internal/models"
	"github.com/starford/hoursheet/internal/present"
)

var generated = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func resultsView(rows int) present.View {
	recs := make([]models.Record, 0, rows)
	cols := models.DefaultColumns()
	for i := 0; i < rows; i++ {
		row := models.Row{
			{Column: cols.Code, Value: models.Text("E1")},
			{Column: cols.Name, Value: models.Text("Alice")},
			{Column: cols.Hours, Value: models.Number(1.5)},
		}
		recs = append(recs, models.NewRecord(row, cols))
	}
	return present.Results("ali", []string{cols.Code, cols.Name, cols.Hours}, recs, cols.Hours)
}

func TestWritePDF_Results(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, "Employee Hours", resultsView(3), generated); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:16])
	}
}

func TestWritePDF_ManyRowsPaginates(t *testing.T) {
	var small, large bytes.Buffer
	if err := WritePDF(&small, "Employee Hours", resultsView(2), generated); err != nil {
		t.Fatal(err)
	}
	if err := WritePDF(&large, "Employee Hours", resultsView(200), generated); err != nil {
		t.Fatal(err)
	}
	if large.Len() <= small.Len() {
		t.Fatalf("expected larger output for 200 rows")
	}
	if n := strings.Count(large.String(), "/Type /Page\n"); n < 2 {
		t.Errorf("pages = %d, want at least 2", n)
	}
}

func TestWritePDF_MessageOnly(t *testing.T) {
	var buf bytes.Buffer
	v := present.Results("zzz", nil, nil, "Hours")
	if err := WritePDF(&buf, "Employee Hours", v, generated); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}

func TestFit(t *testing.T) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if got := fit(pdf, tr, "short", 50); got != "short" {
		t.Errorf("fit short = %q", got)
	}
	long := strings.Repeat("wide text ", 20)
	got := fit(pdf, tr, long, 30)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("fit long = %q, want ellipsis", got)
	}
	if w := pdf.GetStringWidth(got); w > 28 {
		t.Errorf("fitted width = %.1f, want <= 28", w)
	}
}

func TestFit_AccentedTextStaysSingleByte(t *testing.T) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	name := strings.Repeat("José Müller ", 10)
	got := fit(pdf, tr, name, 30)

	// cp1252: é is 0xE9, ü is 0xFC. A mangled cell would carry the
	// three-byte replacement character instead.
	if strings.Contains(got, "\uFFFD") || strings.Contains(got, "\xef\xbf\xbd") {
		t.Fatalf("fit produced replacement characters: %q", got)
	}
	if !strings.HasPrefix(got, "Jos\xe9 M\xfcller") {
		t.Errorf("fit = %q, want cp1252 prefix of the name", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("fit = %q, want ellipsis", got)
	}
}
