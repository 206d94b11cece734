package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hoursheet/internal/models"
	"github.com/starford/hoursheet/internal/parser"
)

// gvizURLFormat builds the visualization query URL of one sheet tab.
const gvizURLFormat = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:json&gid=%s"

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Source  SourceConfig      `yaml:"source"`
	Columns models.Columns    `yaml:"columns"`
	Reload  ReloadConfig      `yaml:"reload"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := validateColumns(&c.Columns); err != nil {
		return err
	}
	if err := c.Reload.Validate(); err != nil {
		return err
	}
	if c.Reload.Watch && c.Source.Path == "" {
		return errors.New("reload: watch requires source.path")
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	Title    string     `yaml:"title"`
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig says where the sheet lives and how to read it.
//
// The location comes from exactly one of URL, SpreadsheetID (with GID)
// or Path.
type SourceConfig struct {
	Format        string          `yaml:"format"`
	URL           string          `yaml:"url"`
	SpreadsheetID string          `yaml:"spreadsheet_id"`
	GID           string          `yaml:"gid"`
	Path          string          `yaml:"path"`
	Timeout       time.Duration   `yaml:"timeout"`
	Retries       int             `yaml:"retries"`
	RetryBackoff  time.Duration   `yaml:"retry_backoff"`
	MaxBytes      int64           `yaml:"max_bytes"`
	Envelope      parser.Envelope `yaml:"envelope"`
}

// Location returns the resolved fetch location.
func (c *SourceConfig) Location() string {
	switch {
	case c.URL != "":
		return c.URL
	case c.SpreadsheetID != "":
		return fmt.Sprintf(gvizURLFormat, url.PathEscape(c.SpreadsheetID), url.QueryEscape(c.GID))
	default:
		return c.Path
	}
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required,
			validation.In(string(parser.FormatGviz), string(parser.FormatCSV))),
		validation.Field(&c.URL, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.RetryBackoff, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxBytes, validation.Min(int64(0))),
	); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	set := 0
	for _, s := range []string{c.URL, c.SpreadsheetID, c.Path} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return errors.New("source: exactly one of url, spreadsheet_id or path must be set")
	}
	if c.SpreadsheetID != "" && c.Format != string(parser.FormatGviz) {
		return errors.New("source: spreadsheet_id requires format gviz")
	}

	if c.Format == string(parser.FormatGviz) {
		return validation.ValidateStruct(&c.Envelope,
			validation.Field(&c.Envelope.Prefix, validation.Required),
			validation.Field(&c.Envelope.Suffix, validation.Required),
		)
	}
	return nil
}

func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func validateColumns(c *models.Columns) error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Code, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Hours, validation.Required),
	); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	return nil
}

// ReloadConfig controls re-fetching the source while the process runs.
// A zero Interval disables periodic reloads.
type ReloadConfig struct {
	Interval time.Duration `yaml:"interval"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the reload configuration.
func (c *ReloadConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.Min(time.Duration(0))),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// Enabled reports whether anything triggers a reload after startup.
func (c *ReloadConfig) Enabled() bool {
	return c.Interval > 0 || c.Watch
}

// NewDefaultConfig returns a new Config with sensible default values.
// The source location is left empty and must come from the config file.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			Title:    "Employee Hours Search",
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			Format:       string(parser.FormatGviz),
			Timeout:      15 * time.Second,
			Retries:      2,
			RetryBackoff: 500 * time.Millisecond,
			MaxBytes:     32 << 20,
			Envelope:     parser.DefaultEnvelope(),
		},
		Columns: models.DefaultColumns(),
		Reload: ReloadConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}
