// Package session owns the loaded dataset and drives the
// load → ready → search lifecycle shared by every shell.
package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/starford/hoursheet/internal/checksum"
	"github.com/starford/hoursheet/internal/models"
	"github.com/starford/hoursheet/internal/parser"
	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/search"
	"github.com/starford/hoursheet/internal/source"
)

// State is the controller state.
type State int

const (
	StateLoading State = iota
	StateReady
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateLoadFailed:
		return "load_failed"
	default:
		return "loading"
	}
}

// Event kinds passed to listeners.
const (
	EventLoaded   = "loaded"
	EventReloaded = "reloaded"
	EventFailed   = "failed"
)

// Config describes where the dataset comes from and which columns matter.
type Config struct {
	Format   parser.Format
	Location string
	Envelope parser.Envelope
	Columns  models.Columns
}

// Snapshot is a read-only summary of the session for status endpoints.
type Snapshot struct {
	State    string     `json:"state"`
	Records  int        `json:"records"`
	Columns  []string   `json:"columns"`
	Version  string     `json:"version,omitempty"`
	LoadID   string     `json:"load_id,omitempty"`
	Source   string     `json:"source"`
	Format   string     `json:"format"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Listener is notified after every load attempt that changes something.
type Listener func(kind string, snap Snapshot)

// Session holds the dataset for the lifetime of the process. The dataset
// is replaced wholesale on reload and never mutated, so searches only need
// a read lock to pick up the current pointer.
type Session struct {
	cfg     Config
	fetcher source.Fetcher
	logger  *slog.Logger
	group   singleflight.Group

	mu      sync.RWMutex
	state   State
	dataset *models.Dataset
	lastErr error

	lmu       sync.Mutex
	listeners []Listener
}

// New creates a session in the Loading state.
func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cfg: cfg, fetcher: fetcher, logger: logger}
}

// OnChange registers l for load events.
func (s *Session) OnChange(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

// State returns the current controller state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dataset returns the loaded dataset, or nil before a successful load.
func (s *Session) Dataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Columns returns the designated column names.
func (s *Session) Columns() models.Columns {
	return s.cfg.Columns
}

// Load performs the initial fetch and parse. Failure moves the session to
// LoadFailed; the error is logged here and surfaced through View.
func (s *Session) Load(ctx context.Context) error {
	_, err := s.Reload(ctx)
	return err
}

// Reload fetches and parses the source again. Concurrent calls share one
// fetch. It reports whether the dataset was replaced: an unchanged body
// keeps the current dataset, and a failed reload after a successful load
// keeps serving the previous one.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	v, err, _ := s.group.Do("load", func() (any, error) {
		return s.reload(ctx)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s *Session) reload(ctx context.Context) (bool, error) {
	ds, err := s.fetch(ctx)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
		if s.state == StateLoading {
			s.state = StateLoadFailed
		}
		hadData := s.dataset != nil
		s.mu.Unlock()

		if hadData {
			s.logger.Warn("reload failed, keeping previous dataset",
				slog.String("source", s.cfg.Location),
				slog.String("error", err.Error()))
		} else {
			s.logger.Error("failed to load dataset",
				slog.String("source", s.cfg.Location),
				slog.String("error", err.Error()))
		}
		s.notify(EventFailed)
		return false, err
	}

	if s.dataset != nil && s.dataset.Version == ds.Version {
		s.lastErr = nil
		s.mu.Unlock()
		s.logger.Debug("dataset unchanged", slog.String("version", checksum.Short(ds.Version)))
		return false, nil
	}

	kind := EventReloaded
	if s.dataset == nil {
		kind = EventLoaded
	}
	s.dataset = ds
	s.state = StateReady
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		slog.String("source", ds.Source),
		slog.Int("records", len(ds.Records)),
		slog.String("version", checksum.Short(ds.Version)),
		slog.String("load_id", ds.LoadID))
	s.notify(kind)
	return true, nil
}

func (s *Session) fetch(ctx context.Context) (*models.Dataset, error) {
	data, err := s.fetcher.Fetch(ctx, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	tbl, err := parser.Parse(s.cfg.Format, data, s.cfg.Envelope)
	if err != nil {
		return nil, err
	}

	for _, col := range []string{s.cfg.Columns.Code, s.cfg.Columns.Name, s.cfg.Columns.Hours} {
		if len(tbl.Columns) > 0 && !slices.Contains(tbl.Columns, col) {
			s.logger.Warn("source is missing a designated column", slog.String("column", col))
		}
	}

	records := make([]models.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		records = append(records, models.NewRecord(row, s.cfg.Columns))
	}
	if s.cfg.Format == parser.FormatCSV {
		records = parser.DropBlank(records)
	}

	return &models.Dataset{
		Columns:  tbl.Columns,
		Records:  records,
		Version:  checksum.Sum(data),
		LoadID:   uuid.NewString(),
		Source:   s.cfg.Location,
		LoadedAt: time.Now(),
	}, nil
}

// Search filters the current dataset by term and builds the results view.
// While loading it returns the loading view; after a failed initial load
// it searches an empty dataset.
func (s *Session) Search(term string) present.View {
	s.mu.RLock()
	state, ds := s.state, s.dataset
	s.mu.RUnlock()

	if state == StateLoading {
		return present.Loading()
	}

	var records []models.Record
	var headers []string
	if ds != nil {
		records, headers = ds.Records, ds.Columns
	}
	matches := search.Filter(records, term)
	return present.Results(term, headers, matches, s.cfg.Columns.Hours)
}

// View returns the status view for the current state, without a search.
func (s *Session) View() present.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateLoadFailed:
		return present.LoadFailed(s.lastErr)
	case StateReady:
		return present.Ready(s.dataset.Len())
	default:
		return present.Loading()
	}
}

// Snapshot summarises the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		State:   s.state.String(),
		Source:  s.cfg.Location,
		Format:  string(s.cfg.Format),
		Columns: []string{},
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	if ds := s.dataset; ds != nil {
		loaded := ds.LoadedAt
		snap.Records = len(ds.Records)
		snap.Columns = append(snap.Columns, ds.Columns...)
		snap.Version = ds.Version
		snap.LoadID = ds.LoadID
		snap.LoadedAt = &loaded
	}
	return snap
}

// RunRefresh reloads the dataset every interval until ctx is cancelled.
func (s *Session) RunRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.Reload(ctx); err != nil && ctx.Err() == nil {
				s.logger.Debug("scheduled reload failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Session) notify(kind string) {
	snap := s.Snapshot()
	s.lmu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.lmu.Unlock()
	for _, l := range ls {
		l(kind, snap)
	}
}
