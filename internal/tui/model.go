// Package tui is the terminal shell for the hours search: a search box,
// a scrollable results table and the total line.
package tui

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/session"
)

const maxColumnWidth = 32

type loadedMsg struct{ err error }

type reloadedMsg struct {
	replaced bool
	err      error
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	title  string
	input  textinput.Model
	table  table.Model
	view   present.View
	status string
	width  int
	height int
}

// New returns a model bound to sess. The session is loaded by Init.
func New(ctx context.Context, sess *session.Session, title string) Model {
	ti := textinput.New()
	ti.Placeholder = "Employee code or name"
	ti.CharLimit = 128
	ti.Focus()

	t := table.New(table.WithFocused(true), table.WithHeight(10))

	return Model{
		ctx:   ctx,
		sess:  sess,
		title: title,
		input: ti,
		table: t,
		view:  sess.View(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load())
}

func (m Model) load() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: sess.Load(ctx)}
	}
}

func (m Model) reload() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		replaced, err := sess.Reload(ctx)
		return reloadedMsg{replaced: replaced, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 4
		m.table.SetHeight(max(msg.Height-9, 3))
		return m, nil

	case loadedMsg:
		m.setView(m.sess.View())
		return m, nil

	case reloadedMsg:
		switch {
		case msg.err != nil:
			m.status = "Reload failed: " + msg.err.Error()
		case msg.replaced:
			m.status = "Data reloaded."
		default:
			m.status = "Data unchanged."
		}
		if m.view.Status == present.StatusLoadFailed || m.view.Status == present.StatusLoading {
			m.setView(m.sess.View())
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Search):
			m.status = ""
			m.setView(m.sess.Search(m.input.Value()))
			return m, nil
		case key.Matches(msg, keys.Reload):
			m.status = "Reloading..."
			return m, m.reload()
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// setView replaces the results region. Only one state is shown at a time,
// so the table is cleared whenever v has no rows.
func (m *Model) setView(v present.View) {
	m.view = v
	m.table.SetRows(nil)
	if !v.HasTable() {
		m.table.SetColumns(nil)
		return
	}

	cols := make([]table.Column, len(v.Table.Headers))
	for i, h := range v.Table.Headers {
		w := utf8.RuneCountInString(h)
		for _, row := range v.Table.Rows {
			w = max(w, utf8.RuneCountInString(row[i]))
		}
		cols[i] = table.Column{Title: h, Width: min(w, maxColumnWidth)}
	}
	rows := make([]table.Row, len(v.Table.Rows))
	for i, r := range v.Table.Rows {
		rows[i] = table.Row(r)
	}
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleHeader.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.view.Status {
	case present.StatusResults:
		b.WriteString(stylePane.Render(m.table.View()))
		b.WriteString("\n")
		b.WriteString(styleTotal.Render(m.view.TotalLine()))
	case present.StatusLoadFailed:
		b.WriteString(styleFailure.Render(m.view.Message))
	default:
		b.WriteString(styleMuted.Render(m.view.Message))
	}
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(keys.help())
	return b.String()
}
