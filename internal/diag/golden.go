package diag

import (
	"fmt"
	"sort"
	"strings"

	"lumen/internal/source"
)

type goldenEntry struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGolden renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and the CLI's short output.
// Entries are sorted deterministically and returned as a single string
// (empty when nothing remains). Unspanned diagnostics use the "<none>"
// pseudo path and sort last.
//
// With includeDetails, secondary labels and free-text notes follow as their
// own lines so goldens capture the whole diagnostic, not just its locus.
func FormatGolden(diags []Diagnostic, fs *source.FileSet, includeDetails bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenEntry, 0, len(diags))
	for _, d := range diags {
		rendered = appendGolden(rendered, d, fs, includeDetails)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			// "<none>" is ASCII-less-than most paths; force it last instead
			if di.Path == unspannedPath {
				return false
			}
			if dj.Path == unspannedPath {
				return true
			}
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, e := range rendered {
		if e.Path == unspannedPath {
			fmt.Fprintf(&b, "%s %s %s", e.Severity, orDash(e.Code), e.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", e.Severity, orDash(e.Code), e.Path, e.Line, e.Column, e.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const unspannedPath = "<none>"

func orDash(code string) string {
	if code == "" {
		return "-"
	}
	return code
}

func appendGolden(out []goldenEntry, d Diagnostic, fs *source.FileSet, includeDetails bool) []goldenEntry {
	entry := goldenEntry{
		Severity: d.Severity.String(),
		Code:     d.Code.String(),
		Path:     unspannedPath,
		Message:  sanitizeMessage(d.Message),
	}
	primary, hasPrimary := d.PrimaryLabel()
	if hasPrimary && !primary.Span.IsUnspanned() {
		if loc, err := fs.ResolveOffset(primary.Span.File, primary.Span.Start); err == nil {
			entry.Path = fs.PathFor(primary.Span.File, source.PathRelative)
			entry.Line = loc.Line
			entry.Column = loc.Col
		}
	}
	out = append(out, entry)

	if !includeDetails {
		return out
	}
	for _, l := range d.Labels {
		if l.Role != LabelSecondary || l.Span.IsUnspanned() || l.Msg == "" {
			continue
		}
		loc, err := fs.ResolveOffset(l.Span.File, l.Span.Start)
		if err != nil {
			continue
		}
		out = append(out, goldenEntry{
			Severity: "context",
			Code:     d.Code.String(),
			Path:     fs.PathFor(l.Span.File, source.PathRelative),
			Line:     loc.Line,
			Column:   loc.Col,
			Message:  sanitizeMessage(l.Msg),
		})
	}
	for _, note := range d.Notes {
		e := entry
		e.Severity = "note"
		e.Message = sanitizeMessage(note)
		out = append(out, e)
	}
	return out
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
