// Package apperr defines the error kinds shared across hoursheet layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork  = errors.New("network error")
	ErrParse    = errors.New("parse error")
	ErrNotReady = errors.New("dataset not ready")
)

// NetworkError reports a failed retrieval of the data source, either a
// transport failure or a non-success response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: failed", e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ParseError reports malformed source data. Err is the underlying decoder
// error (for example *csv.ParseError or *json.SyntaxError) and stays
// reachable through errors.As.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
