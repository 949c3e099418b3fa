package diagfmt

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// ErrMalformedDiagnostic reports a diagnostic whose span references an
// unregistered file or offsets past the end of its file. That is a defect in
// the producing code, so the whole render call fails before emitting a single
// block; drivers fall back to a bare summary instead of garbled context.
var ErrMalformedDiagnostic = errors.New("malformed diagnostic")

var (
	noteStyle    = color.New(color.FgCyan, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
	bugStyle     = color.New(color.FgMagenta, color.Bold)
)

func severityStyle(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevWarning:
		return warningStyle
	case diag.SevError:
		return errorStyle
	case diag.SevBug:
		return bugStyle
	default:
		return noteStyle
	}
}

// Pretty renders the collector's diagnostics as human-readable blocks with
// source context, one block per diagnostic, separated by blank lines.
// Rendering a given snapshot is deterministic: same input, same bytes.
func Pretty(w io.Writer, c *diag.Collector, fs *source.FileSet, opts PrettyOpts) error {
	blocks, err := PrettyBlocks(c, fs, opts)
	if err != nil {
		return err
	}
	for i, block := range blocks {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, block); err != nil {
			return err
		}
	}
	return nil
}

// PrettyBlocks renders one text block per diagnostic, in display order:
// primary label's file first (unspanned diagnostics last), then primary
// start offset, then submission order as the final tie-break.
func PrettyBlocks(c *diag.Collector, fs *source.FileSet, opts PrettyOpts) ([]string, error) {
	items := c.All()
	order := displayOrder(items)

	// Validate everything up front: no partial output on a malformed batch.
	for i, d := range items {
		if err := validateDiagnostic(d, fs); err != nil {
			return nil, fmt.Errorf("diagnostic %d (%q): %w", i, d.Message, err)
		}
	}

	blocks := make([]string, 0, len(items))
	for _, idx := range order {
		blocks = append(blocks, renderBlock(items[idx], fs, opts))
	}
	return blocks, nil
}

// displayOrder sorts indices into items for display without disturbing the
// collector's raw submission order.
func displayOrder(items []diag.Diagnostic) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	key := func(i int) (unspanned bool, file source.FileID, start uint32) {
		primary, ok := items[i].PrimaryLabel()
		if !ok || primary.Span.IsUnspanned() {
			return true, 0, 0
		}
		return false, primary.Span.File, primary.Span.Start
	}
	sort.SliceStable(order, func(a, b int) bool {
		aNone, aFile, aStart := key(order[a])
		bNone, bFile, bStart := key(order[b])
		if aNone != bNone {
			return bNone
		}
		if aFile != bFile {
			return aFile < bFile
		}
		return aStart < bStart
	})
	return order
}

func validateDiagnostic(d diag.Diagnostic, fs *source.FileSet) error {
	for _, l := range d.Labels {
		sp := l.Span
		if sp.IsUnspanned() {
			continue
		}
		f, ok := fs.Get(sp.File)
		if !ok {
			return fmt.Errorf("%w: label references unregistered file %d", ErrMalformedDiagnostic, sp.File)
		}
		if sp.Start > sp.End || int(sp.End) > len(f.Content) {
			return fmt.Errorf("%w: label span %s exceeds %s (len %d)", ErrMalformedDiagnostic, sp, f.Path, len(f.Content))
		}
	}
	return nil
}

// placedLabel is a label with both endpoints resolved.
type placedLabel struct {
	lab      diag.Label
	startLC  source.LineCol
	endLC    source.LineCol
	lastLine uint32 // line that carries the label message
}

func renderBlock(d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) string {
	var b strings.Builder

	// Headline: "error[E0425]: message" (code bracket only when present).
	tag := d.Severity.Tag()
	if !d.Code.IsZero() {
		tag = tag + "[" + d.Code.String() + "]"
	}
	if opts.Color {
		tag = severityStyle(d.Severity).Sprint(tag)
	}
	b.WriteString(tag)
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')

	// Group spanned labels by file, primary label's file first, remaining
	// files in label insertion order.
	type fileGroup struct {
		file   source.FileID
		labels []placedLabel
	}
	var groups []fileGroup
	groupOf := func(id source.FileID) *fileGroup {
		for i := range groups {
			if groups[i].file == id {
				return &groups[i]
			}
		}
		groups = append(groups, fileGroup{file: id})
		return &groups[len(groups)-1]
	}
	if primary, ok := d.PrimaryLabel(); ok && !primary.Span.IsUnspanned() {
		groupOf(primary.Span.File)
	}
	for _, l := range d.Labels {
		if l.Span.IsUnspanned() {
			continue
		}
		start, end, err := fs.Resolve(l.Span)
		if err != nil {
			// validated beforehand; resolution cannot fail here
			continue
		}
		// An exclusive end on column 1 covers nothing on that line; the
		// label effectively stops on the previous one.
		lastLine := end.Line
		if lastLine > start.Line && end.Col == 1 {
			lastLine--
		}
		g := groupOf(l.Span.File)
		g.labels = append(g.labels, placedLabel{lab: l, startLC: start, endLC: end, lastLine: lastLine})
	}

	for i, g := range groups {
		renderFileGroup(&b, d, fs, g.file, g.labels, i == 0, opts)
	}

	for _, note := range d.Notes {
		b.WriteString("  note: ")
		b.WriteString(note)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderFileGroup(b *strings.Builder, d diag.Diagnostic, fs *source.FileSet, id source.FileID, labels []placedLabel, isPrimary bool, opts PrettyOpts) {
	if len(labels) == 0 {
		return
	}
	f, _ := fs.Get(id)
	path := fs.PathFor(id, opts.PathMode)
	lastLine := uint32(len(f.LineIdx) + 1)

	minLine, maxLine := labels[0].startLC.Line, labels[0].lastLine
	for _, pl := range labels[1:] {
		if pl.startLC.Line < minLine {
			minLine = pl.startLC.Line
		}
		if pl.lastLine > maxLine {
			maxLine = pl.lastLine
		}
	}
	if ctx := uint32(max(opts.Context, 0)); ctx > 0 {
		if minLine > ctx {
			minLine -= ctx
		} else {
			minLine = 1
		}
		if maxLine+ctx <= lastLine {
			maxLine += ctx
		} else {
			maxLine = lastLine
		}
	}

	// Locus header. The primary block points at the primary label's position
	// regardless of where it sits in insertion order; secondary files never
	// merge into the primary gutter, they open their own block.
	if isPrimary {
		locus := labels[0]
		for _, pl := range labels {
			if pl.lab.Role == diag.LabelPrimary {
				locus = pl
				break
			}
		}
		fmt.Fprintf(b, "--> %s:%d:%d\n", path, locus.startLC.Line, locus.startLC.Col)
	} else {
		fmt.Fprintf(b, "also see %s:%d\n", path, labels[0].startLC.Line)
	}

	gutterW := len(strconv.FormatUint(uint64(maxLine), 10))
	blank := strings.Repeat(" ", gutterW)

	for line := minLine; line <= maxLine; line++ {
		text, err := fs.LineText(id, line)
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "%*d | %s\n", gutterW, line, text)

		// One underline row per label covering this line, stacked in label
		// insertion order.
		// column 1 of an in-range line; validated beforehand, cannot fail
		lineStart, _ := fs.Offset(id, source.LineCol{Line: line, Col: 1})
		for _, pl := range labels {
			if line < pl.startLC.Line || line > pl.lastLine {
				continue
			}
			row := underlineRow(f, pl, line, lineStart, text)
			if pl.lab.Msg != "" && line == pl.lastLine {
				row += " " + pl.lab.Msg
			}
			if opts.Color {
				row = severityStyle(d.Severity).Sprint(row)
			}
			fmt.Fprintf(b, "%s | %s\n", blank, row)
		}
	}
}

// underlineRow builds the marker row for one label on one line: spaces over
// the unspanned prefix, then ^^^ (primary) or --- (secondary) over the
// spanned part. Widths count display columns so multi-byte runes stay
// aligned; span math itself stays in bytes.
func underlineRow(f *source.File, pl placedLabel, line, lineStart uint32, text string) string {
	lineEnd := lineStart + uint32(len(text))

	hs := pl.lab.Span.Start
	if hs < lineStart {
		hs = lineStart
	}
	he := pl.lab.Span.End
	if he > lineEnd {
		he = lineEnd
	}
	if he < hs {
		he = hs
	}

	pad := runewidth.StringWidth(string(f.Content[lineStart:hs]))
	width := runewidth.StringWidth(string(f.Content[hs:he]))
	if width == 0 {
		// empty spans (EOF errors and insert points) still get one caret
		width = 1
	}

	marker := "^"
	if pl.lab.Role == diag.LabelSecondary {
		marker = "-"
	}
	return strings.Repeat(" ", pad) + strings.Repeat(marker, width)
}

// Summary returns the classic tally line ("2 errors, 1 warning"), or "" for
// an empty collector. Drivers print it after the blocks, and fall back to it
// alone when rendering fails.
func Summary(c *diag.Collector) string {
	parts := make([]string, 0, 4)
	appendPart := func(n int, singular, plural string) {
		switch {
		case n == 1:
			parts = append(parts, "1 "+singular)
		case n > 1:
			parts = append(parts, strconv.Itoa(n)+" "+plural)
		}
	}
	appendPart(c.Count(diag.SevBug), "internal error", "internal errors")
	appendPart(c.Count(diag.SevError), "error", "errors")
	appendPart(c.Count(diag.SevWarning), "warning", "warnings")
	appendPart(c.Count(diag.SevNote), "note", "notes")
	return strings.Join(parts, ", ")
}
