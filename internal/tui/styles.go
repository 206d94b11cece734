package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorFailure = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#374151")

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(colorPrimary).
			Padding(0, 1)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleFailure = lipgloss.NewStyle().Foreground(colorFailure)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleTotal   = lipgloss.NewStyle().Bold(true)
)

func joinHelp(parts []string) string {
	return styleMuted.Render(strings.Join(parts, " • "))
}
