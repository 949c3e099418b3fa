package diag

import "lumen/internal/source"

// LabelRole distinguishes the label carrying the diagnostic's locus from
// supporting context labels.
type LabelRole uint8

const (
	// LabelPrimary marks the span the diagnostic is about. Rendered with ^^^.
	LabelPrimary LabelRole = iota
	// LabelSecondary marks supporting context. Rendered with ---.
	LabelSecondary
)

func (r LabelRole) String() string {
	if r == LabelPrimary {
		return "primary"
	}
	return "secondary"
}

// Label anchors part of a diagnostic to a source range, optionally with a
// short message rendered next to the underline.
type Label struct {
	Span source.Span
	Role LabelRole
	Msg  string
}

// Diagnostic is one reported problem. It is immutable once built: construct
// it through a Builder, then hand it to a Collector. Submission is a one-way
// move; nothing may mutate a diagnostic afterwards.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Labels   []Label // insertion order preserved
	Notes    []string
}

// PrimaryLabel returns the first primary label, if any.
func (d Diagnostic) PrimaryLabel() (Label, bool) {
	for _, l := range d.Labels {
		if l.Role == LabelPrimary {
			return l, true
		}
	}
	return Label{}, false
}

// Unspanned reports whether the diagnostic has no source anchor at all:
// either no labels, or only labels with the no-location span.
func (d Diagnostic) Unspanned() bool {
	for _, l := range d.Labels {
		if !l.Span.IsUnspanned() {
			return false
		}
	}
	return true
}
