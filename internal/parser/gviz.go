package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/hoursheet/internal/apperr"
	"github.com/starford/hoursheet/internal/models"
)

type gvizResponse struct {
	Status string      `json:"status"`
	Errors []gvizError `json:"errors"`
	Table  *gvizTable  `json:"table"`
}

type gvizError struct {
	Reason          string `json:"reason"`
	Message         string `json:"message"`
	DetailedMessage string `json:"detailed_message"`
}

type gvizTable struct {
	Cols []gvizColumn `json:"cols"`
	Rows []gvizRow    `json:"rows"`
}

type gvizColumn struct {
	ID    string  `json:"id"`
	Label *string `json:"label"`
	Type  string  `json:"type"`
}

type gvizRow struct {
	C []*gvizCell `json:"c"`
}

type gvizCell struct {
	V json.RawMessage `json:"v"`
}

// ParseGviz strips env from data and decodes the visualization table.
// Columns with an empty label are dropped; every retained column takes the
// cell at its own index in each row. Null or missing cells become empty
// values and numeric cells stay numeric.
func ParseGviz(data []byte, env Envelope) (models.Table, error) {
	payload, err := StripEnvelope(string(data), env)
	if err != nil {
		return models.Table{}, err
	}

	var resp gvizResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return models.Table{}, gvizErr(err)
	}
	if resp.Status == "error" {
		return models.Table{}, gvizErr(errors.New(resp.errorText()))
	}
	if resp.Table == nil || resp.Table.Cols == nil || resp.Table.Rows == nil {
		return models.Table{}, gvizErr(errors.New("response has no table.cols/table.rows"))
	}

	type retained struct {
		index int
		label string
	}
	var keep []retained
	var columns []string
	for i, c := range resp.Table.Cols {
		if c.Label == nil || *c.Label == "" {
			continue
		}
		keep = append(keep, retained{index: i, label: *c.Label})
		columns = appendColumn(columns, *c.Label)
	}

	rows := make([]models.Row, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		row := make(models.Row, 0, len(columns))
		for _, k := range keep {
			v := models.Empty()
			if k.index < len(r.C) && r.C[k.index] != nil {
				v = cellValue(r.C[k.index].V)
			}
			row = row.Set(k.label, v)
		}
		rows = append(rows, row)
	}

	return models.Table{Columns: columns, Rows: rows}, nil
}

func cellValue(raw json.RawMessage) models.Value {
	if len(raw) == 0 {
		return models.Empty()
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return models.Text(string(raw))
	}
	switch x := v.(type) {
	case nil:
		return models.Empty()
	case string:
		return models.Text(x)
	case bool:
		return models.Bool(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return models.Text(x.String())
		}
		return models.Number(f)
	default:
		return models.Text(string(raw))
	}
}

func (r gvizResponse) errorText() string {
	if len(r.Errors) == 0 {
		return "query returned status error"
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msg := e.DetailedMessage
		if msg == "" {
			msg = e.Message
		}
		if e.Reason != "" {
			msg = fmt.Sprintf("%s: %s", e.Reason, msg)
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}

func gvizErr(err error) error {
	return &apperr.ParseError{Format: string(FormatGviz), Err: err}
}
