package present

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderTable draws the result table with a normal border.
func RenderTable(t *Table) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// WriteText writes v for a terminal: the table and total line for
// results, the status message otherwise.
func WriteText(w io.Writer, v View) error {
	var err error
	switch v.Status {
	case StatusResults:
		_, err = fmt.Fprintf(w, "%s\n%s\n", RenderTable(v.Table), totalStyle.Render(v.TotalLine()))
	case StatusLoadFailed:
		msg := v.Message
		if v.Detail != "" {
			msg += "\n" + v.Detail
		}
		_, err = fmt.Fprintln(w, errorStyle.Render(msg))
	default:
		_, err = fmt.Fprintln(w, mutedStyle.Render(v.Message))
	}
	return err
}
