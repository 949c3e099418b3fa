package diag

// Severity defines the importance of a diagnostic. The order is total:
// Note < Warning < Error < Bug.
type Severity uint8

const (
	// SevNote is for informational findings.
	SevNote Severity = iota
	// SevWarning is for findings the pipeline may proceed past.
	SevWarning
	// SevError is for findings that must stop the pipeline before output.
	SevError
	// SevBug marks an internal-consistency failure of the host tool itself
	// (an ICE), distinct from any user error.
	SevBug
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevBug:
		return "bug"
	}
	return "unknown"
}

// ParseSeverity maps the String form back to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "note":
		return SevNote, true
	case "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	case "bug":
		return SevBug, true
	}
	return SevNote, false
}

// Tag returns the leading headline tag used by renderers.
func (s Severity) Tag() string {
	if s == SevBug {
		return "internal error"
	}
	return s.String()
}
