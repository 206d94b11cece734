// Package testutil provides shared fixtures for data source bodies and
// ready-to-search sessions.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/hoursheet/internal/apperr"
	"github.com/starford/hoursheet/internal/models"
	"github.com/starford/hoursheet/internal/parser"
	"github.com/starford/hoursheet/internal/session"
)

// HoursCSV is a small employee hours sheet in CSV form. The trailing
// separator-only line is dropped at load.
const HoursCSV = "Employee Code,Employee Name,Hours\n" +
	"E1,Alice,3.5\n" +
	"E2,Bob,not-a-number\n" +
	"E3,Malika,4\n" +
	",,\n"

// HoursGviz is the same sheet as a wrapped visualization response.
const HoursGviz = parser.GvizPrefix + `{"version":"0.6","status":"ok","table":{"cols":[` +
	`{"id":"A","label":"Employee Code","type":"string"},` +
	`{"id":"B","label":"Employee Name","type":"string"},` +
	`{"id":"C","label":"Hours","type":"number"}],"rows":[` +
	`{"c":[{"v":"E1"},{"v":"Alice"},{"v":3.5}]},` +
	`{"c":[{"v":"E2"},{"v":"Bob"},null]},` +
	`{"c":[{"v":"E3"},{"v":"Malika"},{"v":4}]}]}}` + parser.GvizSuffix

// Fetcher serves a fixed body and can be swapped between calls.
type Fetcher struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls int
}

// NewFetcher returns a Fetcher serving body.
func NewFetcher(body string) *Fetcher {
	return &Fetcher{body: []byte(body)}
}

// Fetch returns the configured body or error.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, &apperr.NetworkError{URL: location, Err: err}
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(nil), f.body...), nil
}

// Set replaces the served body and clears any error.
func (f *Fetcher) Set(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body, f.err = []byte(body), nil
}

// Fail makes subsequent fetches return err.
func (f *Fetcher) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls returns how many fetches were made.
func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CSVSession returns an unloaded CSV session backed by fetcher.
func CSVSession(fetcher *Fetcher) *session.Session {
	return session.New(session.Config{
		Format:   parser.FormatCSV,
		Location: "mem://hours.csv",
		Envelope: parser.DefaultEnvelope(),
		Columns:  models.DefaultColumns(),
	}, fetcher, Logger())
}

// ReadySession returns a session already loaded from HoursCSV.
func ReadySession(t *testing.T) *session.Session {
	t.Helper()
	s := CSVSession(NewFetcher(HoursCSV))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load fixture session: %v", err)
	}
	return s
}

// WriteCSV writes body to a temporary CSV file and returns its path.
func WriteCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hours.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
