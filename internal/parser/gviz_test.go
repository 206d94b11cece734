package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/hoursheet/internal/apperr"
	"github.com/starford/hoursheet/internal/models"
)

const samplePayload = `{"version":"0.6","reqId":"0","status":"ok","table":{` +
	`"cols":[{"id":"A","label":"Employee Code","type":"string"},` +
	`{"id":"B","label":"Employee Name","type":"string"},` +
	`{"id":"C","label":"","type":"string"},` +
	`{"id":"D","label":"Hours","type":"number"}],` +
	`"rows":[{"c":[{"v":"E1"},{"v":"Alice"},{"v":"ignored"},{"v":3.5,"f":"3.5"}]},` +
	`{"c":[{"v":"E2"},{"v":"Bob"},null,null]},` +
	`{"c":[{"v":"E3"},{"v":null}]}]}}`

func wrap(payload string) []byte {
	return []byte(GvizPrefix + payload + GvizSuffix)
}

func TestParseGviz_Headers(t *testing.T) {
	tbl, err := ParseGviz(wrap(samplePayload), DefaultEnvelope())
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	want := []string{"Employee Code", "Employee Name", "Hours"}
	if diff := cmp.Diff(want, tbl.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tbl.Rows))
	}
}

func TestParseGviz_CellsFollowColumnIndex(t *testing.T) {
	tbl, err := ParseGviz(wrap(samplePayload), DefaultEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	hours, _ := tbl.Rows[0].Get("Hours")
	f, ok := hours.Float()
	if !ok || f != 3.5 {
		t.Errorf("hours = %v, want number 3.5", hours)
	}
}

func TestParseGviz_NullAndMissingCells(t *testing.T) {
	tbl, err := ParseGviz(wrap(samplePayload), DefaultEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	bob := tbl.Rows[1]
	if v, _ := bob.Get("Hours"); v.Kind() != models.KindEmpty || v.String() != "" {
		t.Errorf("null cell = %#v, want empty", v)
	}
	short := tbl.Rows[2]
	if v, ok := short.Get("Hours"); !ok || !v.IsBlank() {
		t.Errorf("missing cell = %#v (present=%v), want empty value", v, ok)
	}
	if v, _ := short.Get("Employee Name"); !v.IsBlank() {
		t.Errorf("null value = %#v, want empty", v)
	}
}

func TestParseGviz_RoundTripLossless(t *testing.T) {
	payload := `{"table":{"cols":[{"label":"Employee Code"},{"label":"Hours"}],` +
		`"rows":[{"c":[{"v":"E9"},{"v":7.25}]},{"c":[null,{"v":2}]}]}}`
	stripped, err := StripEnvelope(string(wrap(payload)), DefaultEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	if stripped != payload {
		t.Fatalf("stripped payload differs")
	}
	tbl, err := ParseGviz(wrap(payload), DefaultEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(tbl.Rows)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"Employee Code":"E9","Hours":7.25},{"Employee Code":"","Hours":2}]`
	if string(out) != want {
		t.Errorf("rows json = %s, want %s", out, want)
	}
}

func TestParseGviz_InvalidJSON(t *testing.T) {
	_, err := ParseGviz(wrap(`{"table":`), DefaultEnvelope())
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		t.Errorf("underlying json error not reachable: %v", err)
	}
}

func TestParseGviz_MissingTable(t *testing.T) {
	for _, payload := range []string{`{}`, `{"table":{"cols":[]}}`, `{"table":{"rows":[]}}`} {
		if _, err := ParseGviz(wrap(payload), DefaultEnvelope()); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("%s: err = %v, want ErrParse", payload, err)
		}
	}
}

func TestParseGviz_StatusError(t *testing.T) {
	payload := `{"status":"error","errors":[{"reason":"access_denied","message":"Access denied","detailed_message":"Sheet is not published"}]}`
	_, err := ParseGviz(wrap(payload), DefaultEnvelope())
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "Sheet is not published") {
		t.Errorf("error text = %q", err.Error())
	}
}

func TestParse_Dispatch(t *testing.T) {
	if _, err := Parse(Format("xml"), nil, DefaultEnvelope()); err == nil {
		t.Fatal("unknown format should fail")
	}
	tbl, err := Parse(FormatCSV, []byte("a,b\n1,2\n"), DefaultEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 1 {
		t.Errorf("rows = %d", len(tbl.Rows))
	}
}
