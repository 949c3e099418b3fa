package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

func TestBuildOutput(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("a.txt", []byte("ab\ncde\n"), 0)

	c := diag.NewCollector()
	c.Submit(diag.MustFinish(diag.NewError("later").
		WithPrimaryLabel(source.NewSpan(id, 3, 6), "bad")))
	c.Submit(diag.MustFinish(diag.NewWarning("earlier").
		WithCode("W1").
		WithPrimaryLabel(source.NewSpan(id, 0, 2), "").
		WithNote("a note")))

	out, err := BuildOutput(c, fs, JSONOpts{IncludePositions: true})
	if err != nil {
		t.Fatalf("BuildOutput failed: %v", err)
	}
	if out.Count != 2 {
		t.Fatalf("Count = %d", out.Count)
	}
	// display order, not submission order
	if out.Diagnostics[0].Message != "earlier" || out.Diagnostics[1].Message != "later" {
		t.Errorf("order = %q, %q", out.Diagnostics[0].Message, out.Diagnostics[1].Message)
	}

	first := out.Diagnostics[0]
	if first.Severity != "warning" || first.Code != "W1" {
		t.Errorf("first = %+v", first)
	}
	if len(first.Labels) != 1 || first.Labels[0].Role != "primary" {
		t.Fatalf("labels = %+v", first.Labels)
	}
	loc := first.Labels[0].Location
	if loc == nil || loc.File != "a.txt" || loc.StartByte != 0 || loc.EndByte != 2 {
		t.Errorf("location = %+v", loc)
	}
	if loc.StartLine != 1 || loc.StartCol != 1 || loc.EndLine != 1 || loc.EndCol != 3 {
		t.Errorf("positions = %+v", loc)
	}
}

func TestBuildOutputMax(t *testing.T) {
	fs := source.NewFileSet()
	c := diag.NewCollector()
	for i := 0; i < 5; i++ {
		c.Submit(diag.MustFinish(diag.NewError("e")))
	}
	out, err := BuildOutput(c, fs, JSONOpts{Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Errorf("Max ignored: count=%d len=%d", out.Count, len(out.Diagnostics))
	}
}

func TestBuildOutputMalformed(t *testing.T) {
	fs := source.NewFileSet()
	c := diag.NewCollector()
	c.Submit(diag.MustFinish(diag.NewError("bad").
		WithPrimaryLabel(source.NewSpan(source.FileID(7), 0, 1), "")))

	if _, err := BuildOutput(c, fs, JSONOpts{}); !errors.Is(err, ErrMalformedDiagnostic) {
		t.Errorf("err = %v, want ErrMalformedDiagnostic", err)
	}
}

// Diagnostics survive a JSON round trip through the wire schema.
func TestJSONParseRoundTrip(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("a.txt", []byte("ab\ncde\n"), 0)

	c := diag.NewCollector()
	c.Submit(diag.MustFinish(diag.NewError("unexpected token").
		WithCode("E1").
		WithPrimaryLabel(source.NewSpan(id, 3, 6), "bad token").
		WithSecondaryLabel(source.Unspanned(), "from the command line").
		WithNote("note one")))

	var buf bytes.Buffer
	if err := JSON(&buf, c, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	parsed, err := ParseDiagnostics(buf.Bytes(), fs.Latest)
	if err != nil {
		t.Fatalf("ParseDiagnostics failed: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d diagnostics", len(parsed))
	}
	d := parsed[0]
	if d.Severity != diag.SevError || d.Code != "E1" || d.Message != "unexpected token" {
		t.Errorf("head = %+v", d)
	}
	if len(d.Labels) != 2 {
		t.Fatalf("labels = %+v", d.Labels)
	}
	if d.Labels[0].Span != source.NewSpan(id, 3, 6) || d.Labels[0].Msg != "bad token" {
		t.Errorf("primary = %+v", d.Labels[0])
	}
	if !d.Labels[1].Span.IsUnspanned() {
		t.Errorf("secondary should stay unspanned: %+v", d.Labels[1])
	}
	if len(d.Notes) != 1 || d.Notes[0] != "note one" {
		t.Errorf("notes = %v", d.Notes)
	}
}

func TestParseDiagnosticsRejects(t *testing.T) {
	fs := source.NewFileSet()
	fs.Add("known.txt", []byte("x"), 0)

	payload := func(mutate func(*DiagnosticsOutput)) []byte {
		out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{{
			Severity: "error",
			Message:  "m",
			Labels: []LabelJSON{{
				Role:     "primary",
				Location: &LocationJSON{File: "known.txt", StartByte: 0, EndByte: 1},
			}},
		}}, Count: 1}
		mutate(&out)
		data, err := json.Marshal(out)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	if _, err := ParseDiagnostics(payload(func(o *DiagnosticsOutput) {
		o.Diagnostics[0].Severity = "fatal"
	}), fs.Latest); err == nil {
		t.Error("unknown severity accepted")
	}

	if _, err := ParseDiagnostics(payload(func(o *DiagnosticsOutput) {
		o.Diagnostics[0].Labels[0].Location.File = "missing.txt"
	}), fs.Latest); err == nil {
		t.Error("unknown file accepted")
	}

	if _, err := ParseDiagnostics(payload(func(o *DiagnosticsOutput) {
		o.Diagnostics[0].Labels[0].Role = "tertiary"
	}), fs.Latest); err == nil {
		t.Error("unknown role accepted")
	}

	if _, err := ParseDiagnostics(payload(func(o *DiagnosticsOutput) {
		o.Diagnostics[0].Labels[0].Role = "secondary"
	}), fs.Latest); !errors.Is(err, diag.ErrInvalidDiagnostic) {
		t.Error("secondary-only diagnostic accepted")
	}
}
