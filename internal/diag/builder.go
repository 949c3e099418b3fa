package diag

import (
	"errors"

	"lumen/internal/source"
)

// ErrInvalidDiagnostic reports a draft that violates the label invariant:
// if any label exists, at least one must be primary (unless every label is
// unspanned). This is always a defect in the producing code, never in the
// user's source, so it is surfaced as a hard failure and never dropped.
var ErrInvalidDiagnostic = errors.New("invalid diagnostic: labels present but no primary label")

// Builder accumulates a diagnostic across a pass. Each With* call returns the
// updated draft by value, so partially built diagnostics can be handed
// between helper functions without aliasing surprises; no draft is shared
// before Finish.
type Builder struct {
	d Diagnostic
}

// New starts a draft with a severity and headline message.
func New(sev Severity, msg string) Builder {
	return Builder{d: Diagnostic{Severity: sev, Message: msg}}
}

// NewNote starts a SevNote draft.
func NewNote(msg string) Builder { return New(SevNote, msg) }

// NewWarning starts a SevWarning draft.
func NewWarning(msg string) Builder { return New(SevWarning, msg) }

// NewError starts a SevError draft.
func NewError(msg string) Builder { return New(SevError, msg) }

// NewBug starts a SevBug draft for host-internal inconsistencies.
func NewBug(msg string) Builder { return New(SevBug, msg) }

// WithCode attaches a stable code identifier.
func (b Builder) WithCode(code Code) Builder {
	b.d.Code = code
	return b
}

// WithPrimaryLabel attaches the span the diagnostic is about. msg may be
// empty when the headline already says everything.
func (b Builder) WithPrimaryLabel(sp source.Span, msg string) Builder {
	b.d.Labels = append(b.d.Labels, Label{Span: sp, Role: LabelPrimary, Msg: msg})
	return b
}

// WithSecondaryLabel attaches a supporting context span.
func (b Builder) WithSecondaryLabel(sp source.Span, msg string) Builder {
	b.d.Labels = append(b.d.Labels, Label{Span: sp, Role: LabelSecondary, Msg: msg})
	return b
}

// WithNote appends a free-text note rendered under the source block.
func (b Builder) WithNote(text string) Builder {
	b.d.Notes = append(b.d.Notes, text)
	return b
}

// Finish validates the draft and yields the immutable diagnostic.
func (b Builder) Finish() (Diagnostic, error) {
	if len(b.d.Labels) > 0 && !b.d.Unspanned() {
		if _, ok := b.d.PrimaryLabel(); !ok {
			return Diagnostic{}, ErrInvalidDiagnostic
		}
	}
	return b.d, nil
}

// MustFinish is Finish for statically well-formed diagnostics, typically in
// tests and drivers. It panics on an invalid draft.
func MustFinish(b Builder) Diagnostic {
	d, err := b.Finish()
	if err != nil {
		panic(err)
	}
	return d
}

// Emit finishes the draft and submits it to r in one call. The error is the
// same caller defect Finish reports; producers that can prove validity use
// the Must variant and move on.
func (b Builder) Emit(r Reporter) error {
	d, err := b.Finish()
	if err != nil {
		return err
	}
	r.Report(d)
	return nil
}
