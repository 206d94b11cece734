package models

import (
	"encoding/json"
	"time"
)

// Field is one column/value pair of a Row.
type Field struct {
	Column string
	Value  Value
}

// Row is an ordered column-to-value mapping as produced by the parser.
// Order follows the source columns.
type Row []Field

// Get returns the value stored for column.
func (r Row) Get(column string) (Value, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set stores v under column. An existing column keeps its position and
// takes the new value.
func (r Row) Set(column string, v Value) Row {
	for i := range r {
		if r[i].Column == column {
			r[i].Value = v
			return r
		}
	}
	return append(r, Field{Column: column, Value: v})
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, f := range r {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// Table is the parser output: the header list plus one Row per data line.
type Table struct {
	Columns []string
	Rows    []Row
}

// Columns names the designated columns the search pipeline relies on.
type Columns struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Hours string `yaml:"hours"`
}

// DefaultColumns returns the column contract of the employee hours sheet.
func DefaultColumns() Columns {
	return Columns{
		Code:  "Employee Code",
		Name:  "Employee Name",
		Hours: "Hours",
	}
}

// Record is a Row narrowed to the designated columns. Fields still holds
// every column, in source order, for display.
type Record struct {
	Code   string
	Name   string
	Hours  Value
	Fields Row
}

// NewRecord narrows row using cols. Missing columns become empty values.
func NewRecord(row Row, cols Columns) Record {
	code, _ := row.Get(cols.Code)
	name, _ := row.Get(cols.Name)
	hours, _ := row.Get(cols.Hours)
	return Record{
		Code:   code.String(),
		Name:   name.String(),
		Hours:  hours,
		Fields: row,
	}
}

// Value returns the value of column, or an empty value when absent.
func (r Record) Value(column string) Value {
	v, _ := r.Fields.Get(column)
	return v
}

// Dataset is the session-lifetime collection of records. It is never
// mutated after construction.
type Dataset struct {
	Columns  []string
	Records  []Record
	Version  string
	LoadID   string
	Source   string
	LoadedAt time.Time
}

// Len returns the number of records, tolerating a nil dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
