// Package search filters records by employee code or name and totals a
// numeric column over the matches.
package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/hoursheet/internal/models"
)

// Normalize trims and lower-cases a search term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Filter returns, in their original order, the records whose code or name
// contains term as a case-insensitive substring. An empty term matches
// nothing: results are only revealed by searching.
func Filter(records []models.Record, term string) []models.Record {
	term = Normalize(term)
	if term == "" {
		return nil
	}
	var out []models.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Code), term) ||
			strings.Contains(strings.ToLower(r.Name), term) {
			out = append(out, r)
		}
	}
	return out
}

// Total sums the numeric interpretation of column across records.
// Missing, blank and non-numeric values count as zero.
func Total(records []models.Record, column string) float64 {
	var sum float64
	for _, r := range records {
		sum += ParseNumber(r.Value(column))
	}
	return sum
}

// FormatTotal renders a total with exactly two decimals.
func FormatTotal(total float64) string {
	return fmt.Sprintf("%.2f", total)
}

var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseNumber interprets v as a float the way spreadsheet exports are
// usually read: numbers are taken as-is and text contributes its leading
// numeric prefix ("7.5h" is 7.5). Anything else is zero.
func ParseNumber(v models.Value) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	if v.Kind() != models.KindText {
		return 0
	}
	m := numberPrefix.FindString(strings.TrimSpace(v.String()))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
