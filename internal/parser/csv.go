package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/starford/hoursheet/internal/apperr"
	"github.com/starford/hoursheet/internal/models"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV decodes comma-separated text whose first non-blank line is the
// header. Lines with nothing but separators or whitespace are skipped and
// cells stay textual; numeric interpretation happens at aggregation time.
// Rows whose field count differs from the header, or unterminated quotes,
// fail with a ParseError wrapping the *csv.ParseError.
func ParseCSV(data []byte) (models.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Table{}, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := nextRecord(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Table{}, nil
		}
		return models.Table{}, csvErr(err)
	}

	var columns []string
	for _, h := range header {
		columns = appendColumn(columns, h)
	}

	var rows []models.Row
	for {
		rec, err := nextRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Table{}, csvErr(err)
		}
		if len(rec) != len(header) {
			line, col := r.FieldPos(0)
			return models.Table{}, csvErr(&csv.ParseError{
				StartLine: line, Line: line, Column: col, Err: csv.ErrFieldCount,
			})
		}
		row := make(models.Row, 0, len(columns))
		for i, h := range header {
			row = row.Set(h, models.Text(rec[i]))
		}
		rows = append(rows, row)
	}

	return models.Table{Columns: columns, Rows: rows}, nil
}

// nextRecord reads the next record that has at least one non-blank field.
func nextRecord(r *csv.Reader) ([]string, error) {
	for {
		rec, err := r.Read()
		if err != nil {
			return nil, err
		}
		if !blankRecord(rec) {
			return rec, nil
		}
	}
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// FetchCSV retrieves location with f and parses the body as CSV.
func FetchCSV(ctx context.Context, f Fetcher, location string) (models.Table, error) {
	data, err := f.Fetch(ctx, location)
	if err != nil {
		return models.Table{}, err
	}
	return ParseCSV(data)
}

// DropBlank removes records that have neither a code nor a name. Such rows
// are usually trailing separator-only lines in exported sheets.
func DropBlank(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Code) == "" && strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func csvErr(err error) error {
	return &apperr.ParseError{Format: string(FormatCSV), Err: err}
}
