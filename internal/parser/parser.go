// Package parser turns raw data source bodies into ordered tables.
//
// Two input shapes are supported: the Google visualization JSON response
// wrapped in a JavaScript callback (FormatGviz) and comma-separated text
// with a header line (FormatCSV). Both produce a models.Table whose
// columns follow the source order.
package parser

import (
	"context"
	"fmt"

	"github.com/starford/hoursheet/internal/models"
)

// Format selects the parsing strategy.
type Format string

const (
	FormatGviz Format = "gviz"
	FormatCSV  Format = "csv"
)

// Fetcher retrieves the raw body of a data source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Parse decodes data according to format. env is only consulted for
// FormatGviz.
func Parse(format Format, data []byte, env Envelope) (models.Table, error) {
	switch format {
	case FormatGviz:
		return ParseGviz(data, env)
	case FormatCSV:
		return ParseCSV(data)
	default:
		return models.Table{}, fmt.Errorf("parser: unknown format %q", format)
	}
}

// appendColumn adds name to cols unless already present.
func appendColumn(cols []string, name string) []string {
	for _, c := range cols {
		if c == name {
			return cols
		}
	}
	return append(cols, name)
}
