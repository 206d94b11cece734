package parser

import (
	"errors"
	"strings"

	"github.com/starford/hoursheet/internal/apperr"
)

// Google wraps visualization query responses in a callback invocation.
const (
	GvizPrefix = "/*O_o*/\ngoogle.visualization.Query.setResponse("
	GvizSuffix = ");"
)

// Envelope is the fixed non-JSON wrapper around a JSON payload.
type Envelope struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

// DefaultEnvelope returns the Google visualization wrapper.
func DefaultEnvelope() Envelope {
	return Envelope{Prefix: GvizPrefix, Suffix: GvizSuffix}
}

// StripEnvelope removes env from text and returns the embedded payload.
// Trailing line breaks after the suffix are tolerated.
func StripEnvelope(text string, env Envelope) (string, error) {
	text = strings.TrimRight(text, "\r\n")
	if len(text) < len(env.Prefix)+len(env.Suffix) {
		return "", &apperr.ParseError{Format: string(FormatGviz), Err: errors.New("response shorter than envelope")}
	}
	if !strings.HasPrefix(text, env.Prefix) {
		return "", &apperr.ParseError{Format: string(FormatGviz), Err: errors.New("envelope prefix not found")}
	}
	if !strings.HasSuffix(text, env.Suffix) {
		return "", &apperr.ParseError{Format: string(FormatGviz), Err: errors.New("envelope suffix not found")}
	}
	return text[len(env.Prefix) : len(text)-len(env.Suffix)], nil
}
