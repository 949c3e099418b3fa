package diag

// Code is an opaque stable identifier for a class of finding. Its meaning
// lives in an externally supplied registry; this package only carries it
// through to rendering, where a non-empty code appears as a bracketed token
// after the severity tag ("error[E0425]: ..."). The empty code means the
// diagnostic has no code and renders without the bracket.
type Code string

// NoCode is the zero Code.
const NoCode Code = ""

func (c Code) IsZero() bool {
	return c == NoCode
}

func (c Code) String() string {
	return string(c)
}
