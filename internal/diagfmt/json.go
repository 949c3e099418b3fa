package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// LocationJSON is a span in the wire schema. File paths plus byte offsets are
// the canonical coordinates; line/col pairs are an optional convenience.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// LabelJSON is one label in the wire schema.
type LabelJSON struct {
	Role     string        `json:"role"` // "primary" | "secondary"
	Message  string        `json:"message,omitempty"`
	Location *LocationJSON `json:"location,omitempty"` // nil for unspanned labels
}

// DiagnosticJSON is one diagnostic in the wire schema.
type DiagnosticJSON struct {
	Severity string      `json:"severity"`
	Code     string      `json:"code,omitempty"`
	Message  string      `json:"message"`
	Labels   []LabelJSON `json:"labels,omitempty"`
	Notes    []string    `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the wire schema.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(sp source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{
		File:      fs.PathFor(sp.File, opts.PathMode),
		StartByte: sp.Start,
		EndByte:   sp.End,
	}
	if opts.IncludePositions {
		if start, end, err := fs.Resolve(sp); err == nil {
			loc.StartLine = start.Line
			loc.StartCol = start.Col
			loc.EndLine = end.Line
			loc.EndCol = end.Col
		}
	}
	return loc
}

// BuildOutput assembles the wire structure without serializing it.
// Diagnostics appear in the same display order Pretty uses, and the same
// malformed-diagnostic policy applies: one bad span fails the whole batch.
func BuildOutput(c *diag.Collector, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	items := c.All()
	for i, d := range items {
		if err := validateDiagnostic(d, fs); err != nil {
			return DiagnosticsOutput{}, fmt.Errorf("diagnostic %d (%q): %w", i, d.Message, err)
		}
	}
	order := displayOrder(items)
	if opts.Max > 0 && opts.Max < len(order) {
		order = order[:opts.Max]
	}

	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(order))}
	for _, idx := range order {
		d := items[idx]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Notes:    d.Notes,
		}
		for _, l := range d.Labels {
			lj := LabelJSON{Role: l.Role.String(), Message: l.Msg}
			if !l.Span.IsUnspanned() {
				loc := makeLocation(l.Span, fs, opts)
				lj.Location = &loc
			}
			dj.Labels = append(dj.Labels, lj)
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON renders the collector as indented JSON.
func JSON(w io.Writer, c *diag.Collector, fs *source.FileSet, opts JSONOpts) error {
	out, err := BuildOutput(c, fs, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ParseDiagnostics reads the wire schema back into diagnostics. lookup maps
// a file path from the payload to a registered FileID; a miss fails the
// whole parse, since offsets are meaningless without their file.
//
// This is the CLI's inbound format: any front end that can emit this JSON
// can have its findings rendered here.
func ParseDiagnostics(data []byte, lookup func(path string) (source.FileID, bool)) ([]diag.Diagnostic, error) {
	var payload DiagnosticsOutput
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}

	diags := make([]diag.Diagnostic, 0, len(payload.Diagnostics))
	for i, dj := range payload.Diagnostics {
		sev, ok := diag.ParseSeverity(dj.Severity)
		if !ok {
			return nil, fmt.Errorf("diagnostic %d: unknown severity %q", i, dj.Severity)
		}
		b := diag.New(sev, dj.Message).WithCode(diag.Code(dj.Code))
		for _, lj := range dj.Labels {
			sp := source.Unspanned()
			if lj.Location != nil {
				id, ok := lookup(lj.Location.File)
				if !ok {
					return nil, fmt.Errorf("diagnostic %d: unknown file %q", i, lj.Location.File)
				}
				sp = source.NewSpan(id, lj.Location.StartByte, lj.Location.EndByte)
			}
			switch lj.Role {
			case "primary":
				b = b.WithPrimaryLabel(sp, lj.Message)
			case "secondary":
				b = b.WithSecondaryLabel(sp, lj.Message)
			default:
				return nil, fmt.Errorf("diagnostic %d: unknown label role %q", i, lj.Role)
			}
		}
		for _, note := range dj.Notes {
			b = b.WithNote(note)
		}
		d, err := b.Finish()
		if err != nil {
			return nil, fmt.Errorf("diagnostic %d: %w", i, err)
		}
		diags = append(diags, d)
	}
	return diags, nil
}
