// Package source retrieves raw data source bodies over HTTP or from the
// local file system, and watches local sources for changes.
package source

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves the raw body stored at location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Options tunes remote retrieval.
type Options struct {
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
	MaxBytes     int64
	Logger       *slog.Logger
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// LocalPath converts a file:// location to a plain path.
func LocalPath(location string) string {
	return strings.TrimPrefix(location, "file://")
}

// New returns an HTTP fetcher for remote locations and a File fetcher
// otherwise.
func New(location string, opts Options) Fetcher {
	if IsRemote(location) {
		return NewHTTP(&http.Client{Timeout: opts.Timeout}, opts)
	}
	return NewFile(opts.MaxBytes)
}
