// Package config loads YAML configuration files with environment variable
// expansion and validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load reads filename into target, which should already hold defaults.
// ${VAR} and ${VAR:-fallback} references are expanded before parsing, and
// unknown keys are rejected so a misspelt setting does not silently fall
// back to its default.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := Decode(data, target); err != nil {
		return fmt.Errorf("config file %s: %w", filename, err)
	}
	return nil
}

// LoadOptional is Load, except that a missing file leaves target as is.
// The result is validated either way.
func LoadOptional[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return validate(target)
	}
	return Load(filename, target)
}

// Decode expands, parses and validates YAML data into target.
func Decode[T any](data []byte, target *T) error {
	expanded := os.Expand(string(data), lookupEnv)

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return validate(target)
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// lookupEnv resolves NAME or NAME:-fallback.
func lookupEnv(key string) string {
	name, fallback, hasFallback := strings.Cut(key, ":-")
	if v, ok := os.LookupEnv(name); ok && (v != "" || !hasFallback) {
		return v
	}
	return fallback
}
