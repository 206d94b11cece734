package internal

import (
	"io"

	"github.com/starford/hoursheet/internal/source"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	fetcher   source.Fetcher
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sends structured logs to w instead of the command's
// default destination.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithFetcher replaces the fetcher chosen from the source location.
func WithFetcher(f source.Fetcher) Option {
	return func(a *application) {
		a.fetcher = f
	}
}
