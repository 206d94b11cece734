// Package present turns search results and session states into
// display-ready views, and renders them as HTML or terminal text.
package present

import (
	"fmt"

	"github.com/starford/hoursheet/internal/models"
	"github.com/starford/hoursheet/internal/search"
)

// Status identifies which state a View shows. States are mutually
// exclusive: rendering one replaces whatever was shown before.
type Status string

const (
	StatusLoading      Status = "loading"
	StatusLoadFailed   Status = "load_failed"
	StatusReady        Status = "ready"
	StatusEmptyDataset Status = "empty_dataset"
	StatusNoResults    Status = "no_results"
	StatusResults      Status = "results"
)

const (
	MsgLoading      = "Loading data from Google Sheet..."
	MsgLoadFailed   = "Error loading live data. Please check the data source settings and ensure the sheet is published to the web."
	MsgReady        = "Search to see your data."
	MsgEmptyDataset = "No usable records were found in the data source."
	MsgNoResults    = "No data found for your search term."
)

// Table is the display shape of a record subset.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// View is everything a shell needs to draw the results region and the
// aggregate line.
type View struct {
	Status     Status  `json:"status"`
	Message    string  `json:"message,omitempty"`
	Detail     string  `json:"detail,omitempty"`
	Query      string  `json:"query,omitempty"`
	Table      *Table  `json:"table,omitempty"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
	TotalText  string  `json:"total_text,omitempty"`
	TotalLabel string  `json:"total_label,omitempty"`
}

// HasTable reports whether the view carries result rows.
func (v View) HasTable() bool {
	return v.Table != nil && len(v.Table.Rows) > 0
}

// TotalLine is the aggregate text, for example "Total Hours Found: 7.50".
func (v View) TotalLine() string {
	if v.Status != StatusResults {
		return ""
	}
	return fmt.Sprintf("%s: %s", v.TotalLabel, v.TotalText)
}

// Loading is shown while the dataset is being fetched.
func Loading() View {
	return View{Status: StatusLoading, Message: MsgLoading}
}

// LoadFailed is the terminal error state. err is kept as detail for
// diagnostics; the message itself stays generic.
func LoadFailed(err error) View {
	v := View{Status: StatusLoadFailed, Message: MsgLoadFailed}
	if err != nil {
		v.Detail = err.Error()
	}
	return v
}

// Ready is the post-load placeholder. A dataset with no usable records
// gets its own status so it is not mistaken for an empty search.
func Ready(records int) View {
	if records == 0 {
		return View{Status: StatusEmptyDataset, Message: MsgEmptyDataset}
	}
	return View{Status: StatusReady, Message: MsgReady, Count: records}
}

// Results builds the table and total for a filtered subset. headers is
// the stable column list captured at load; records missing a column
// render an empty cell.
func Results(query string, headers []string, records []models.Record, hoursColumn string) View {
	if len(records) == 0 {
		return View{Status: StatusNoResults, Message: MsgNoResults, Query: query}
	}

	tbl := &Table{
		Headers: append([]string(nil), headers...),
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = r.Value(h).String()
		}
		tbl.Rows = append(tbl.Rows, cells)
	}

	total := search.Total(records, hoursColumn)
	return View{
		Status:     StatusResults,
		Query:      query,
		Table:      tbl,
		Count:      len(records),
		Total:      total,
		TotalText:  search.FormatTotal(total),
		TotalLabel: fmt.Sprintf("Total %s Found", hoursColumn),
	}
}
