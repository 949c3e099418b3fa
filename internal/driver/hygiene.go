package driver

import (
	"context"
	"strings"
	"unicode/utf8"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// Codes emitted by the built-in hygiene pass. They follow the opaque-code
// contract: meaning lives with the host, the renderer only carries them.
const (
	CodeInvalidUTF8    diag.Code = "LNT0001"
	CodeTrailingSpace  diag.Code = "LNT0002"
	CodeLongLine       diag.Code = "LNT0003"
	CodeNoFinalNewline diag.Code = "LNT0004"
)

// HygieneCheck returns the built-in demo producer: line-hygiene findings
// (encoding, trailing whitespace, overlong lines, missing final newline).
// It exists to exercise the whole pipeline end to end and doubles as the
// reference for writing real producers: submit and keep going, never abort
// on a finding.
func HygieneCheck(maxWidth int) CheckFunc {
	if maxWidth <= 0 {
		maxWidth = 120
	}
	return func(ctx context.Context, files *source.FileSet, id source.FileID, r diag.Reporter) error {
		f, ok := files.Get(id)
		if !ok {
			return nil
		}
		content := f.Content

		if !utf8.Valid(content) {
			off := invalidOffset(content)
			d, err := diag.NewError("file is not valid UTF-8").
				WithCode(CodeInvalidUTF8).
				WithPrimaryLabel(source.NewSpan(id, off, off+1), "first invalid byte").
				Finish()
			if err != nil {
				return err
			}
			r.Report(d)
			// offsets past this point are unreliable; stop at the one finding
			return nil
		}

		lines := len(f.LineIdx) + 1
		for line := 1; line <= lines; line++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := files.LineText(id, uint32(line))
			if err != nil {
				return err
			}
			lineStart, err := files.Offset(id, source.LineCol{Line: uint32(line), Col: 1})
			if err != nil {
				return err
			}

			if trimmed := strings.TrimRight(text, " \t"); len(trimmed) < len(text) {
				sp := source.NewSpan(id, lineStart+uint32(len(trimmed)), lineStart+uint32(len(text)))
				d, err := diag.NewWarning("trailing whitespace").
					WithCode(CodeTrailingSpace).
					WithPrimaryLabel(sp, "remove this whitespace").
					Finish()
				if err != nil {
					return err
				}
				r.Report(d)
			}

			if width := utf8.RuneCountInString(text); width > maxWidth {
				overflow := byteOffsetOfRune(text, maxWidth)
				sp := source.NewSpan(id, lineStart+overflow, lineStart+uint32(len(text)))
				d, err := diag.NewWarning("line too long").
					WithCode(CodeLongLine).
					WithPrimaryLabel(sp, "past the limit").
					WithNote("lines wider than the configured limit are hard to review side by side").
					Finish()
				if err != nil {
					return err
				}
				r.Report(d)
			}
		}

		if n := len(content); n > 0 && content[n-1] != '\n' {
			eof := uint32(n)
			d, err := diag.NewNote("no newline at end of file").
				WithCode(CodeNoFinalNewline).
				WithPrimaryLabel(source.NewSpan(id, eof, eof), "expected newline here").
				Finish()
			if err != nil {
				return err
			}
			r.Report(d)
		}
		return nil
	}
}

func invalidOffset(content []byte) uint32 {
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError && size == 1 {
			return uint32(i)
		}
		i += size
	}
	return 0
}

// byteOffsetOfRune returns the byte offset of the n-th rune in s (n counted
// from 0), or len(s) when the line is shorter.
func byteOffsetOfRune(s string, n int) uint32 {
	count := 0
	for i := range s {
		if count == n {
			return uint32(i)
		}
		count++
	}
	return uint32(len(s))
}
