package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/testutil"
)

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func enter(m tea.Model) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func loaded(t *testing.T, f *testutil.Fetcher) Model {
	t.Helper()
	m := New(context.Background(), testutil.CSVSession(f), "Employee Hours")
	if !strings.Contains(m.View(), present.MsgLoading) {
		t.Fatalf("initial view should show loading:\n%s", m.View())
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.Update(m.load()())
	return next.(Model)
}

func TestSearchShowsResultsAndTotal(t *testing.T) {
	m := loaded(t, testutil.NewFetcher(testutil.HoursCSV))
	if !strings.Contains(m.View(), present.MsgReady) {
		t.Fatalf("view after load:\n%s", m.View())
	}

	out := enter(typeText(m, "ali")).View()
	for _, want := range []string{"Alice", "Malika", "Total Hours Found: 7.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Bob") {
		t.Errorf("view shows a non-matching row")
	}
}

func TestSearchNoResultsClearsTable(t *testing.T) {
	m := loaded(t, testutil.NewFetcher(testutil.HoursCSV))

	next := enter(typeText(m, "ali"))
	for range 3 {
		next, _ = next.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	out := enter(typeText(next, "zzz")).View()

	if !strings.Contains(out, present.MsgNoResults) {
		t.Errorf("view missing no-results message:\n%s", out)
	}
	if strings.Contains(out, "Alice") || strings.Contains(out, "Total Hours") {
		t.Errorf("previous results still shown:\n%s", out)
	}
}

func TestLoadFailure(t *testing.T) {
	f := testutil.NewFetcher("")
	f.Fail(errors.New("offline"))
	m := loaded(t, f)

	if !strings.Contains(m.View(), "Error loading live data") {
		t.Errorf("view missing error message:\n%s", m.View())
	}
}

func TestReload(t *testing.T) {
	f := testutil.NewFetcher(testutil.HoursCSV)
	m := loaded(t, f)

	f.Set(testutil.HoursCSV + "E4,Alina,2\n")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	next, _ = next.Update(cmd())
	if !strings.Contains(next.View(), "Data reloaded.") {
		t.Errorf("status not shown:\n%s", next.View())
	}

	out := enter(typeText(next, "ali")).View()
	if !strings.Contains(out, "Total Hours Found: 9.50") {
		t.Errorf("reloaded data not searched:\n%s", out)
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t, testutil.NewFetcher(testutil.HoursCSV))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("ctrl+c did not quit")
	}
}
