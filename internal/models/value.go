// Package models holds the record and dataset types shared by the parser,
// search, and presentation layers.
package models

import (
	"encoding/json"
	"strconv"
)

// Kind identifies the dynamic type carried by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
)

// Value is a single cell: text, number, bool or empty.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Empty returns the blank cell value.
func Empty() Value { return Value{} }

// Text returns a text value. The empty string is still a text value;
// callers that want a blank cell should use Empty.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

// IsBlank reports whether the value renders as an empty string.
func (v Value) IsBlank() bool {
	return v.kind == KindEmpty || (v.kind == KindText && v.text == "")
}

// Float returns the numeric payload for number values.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String returns the display form. Numbers use the shortest decimal
// representation ("3.5", "8").
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// MarshalJSON keeps numbers and bools typed; everything else is a string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.String())
	}
}
