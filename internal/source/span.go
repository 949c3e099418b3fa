package source

import (
	"fmt"
	"math"
)

// NoFile is the sentinel FileID used by unspanned diagnostics (problems with
// no source anchor, e.g. command-line errors). It never collides with a real
// registration: FileSet.Add panics long before 2^32-1 files.
const NoFile = FileID(math.MaxUint32)

// Span is a half-open byte range [Start, End) inside one registered file.
// Spans are plain values: copyable, comparable, independent of any FileSet.
// Resolution to line/column happens only at render time, so spans may be
// constructed before their file is fully read as long as offsets are known.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// NewSpan builds a span over [start, end) in file id.
func NewSpan(id FileID, start, end uint32) Span {
	return Span{File: id, Start: start, End: end}
}

// Unspanned returns the distinguished no-location span.
func Unspanned() Span {
	return Span{File: NoFile}
}

// IsUnspanned reports whether the span carries no source anchor.
func (s Span) IsUnspanned() bool {
	return s.File == NoFile
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if s.IsUnspanned() {
		return "<no location>"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover widens s to include other. Spans in different files (or unspanned
// operands) leave s unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File || s.IsUnspanned() {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
