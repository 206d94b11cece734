package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after a debounced change to the watched file.
type ChangeFunc func()

// Watch observes the file at path until ctx is cancelled and calls
// onChange once per burst of writes, creates or renames.
//
// The parent directory is watched rather than the file itself: editors and
// sheet exporters usually replace the file through a rename, which would
// silently drop a watch placed on the old inode.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange ChangeFunc) error {
	abs, err := filepath.Abs(LocalPath(path))
	if err != nil {
		return fmt.Errorf("source: resolve watch path: %w", err)
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("source: new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("source: watch %s: %w", filepath.Dir(abs), err)
	}

	logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			timer = nil
			fire = nil
			logger.Debug("watcher: source changed", slog.String("path", abs))
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
