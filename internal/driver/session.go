package driver

import (
	"os"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// Session owns the per-run state the core deliberately does not: one FileSet,
// one Collector, and the file I/O needed to fill the former. Producers share
// the session's collector; independent sessions never share one.
type Session struct {
	Files *source.FileSet
	Diags *diag.Collector
}

// NewSession creates a fresh session.
func NewSession() *Session {
	return &Session{
		Files: source.NewFileSet(),
		Diags: diag.NewCollector(),
	}
}

// LoadFile reads path from disk, normalizes BOM/CRLF and registers the
// content. Reading happens here, in the driver, because the core itself
// performs no I/O.
func (s *Session) LoadFile(path string) (source.FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := source.NormalizeContent(content)
	return s.Files.Add(path, content, flags), nil
}

// AddSource registers in-memory content (stdin, tests, editor buffers).
func (s *Session) AddSource(name string, content []byte) source.FileID {
	normalized, flags := source.NormalizeContent(content)
	return s.Files.Add(name, normalized, flags|source.FileVirtual)
}

// ExitCode maps the collector's state to the process exit policy: 0 for a
// clean run (notes and warnings included), 1 when any error was recorded,
// 2 when a host-internal bug was recorded.
func (s *Session) ExitCode() int {
	switch {
	case s.Diags.HasSeverityAtLeast(diag.SevBug):
		return 2
	case s.Diags.HasSeverityAtLeast(diag.SevError):
		return 1
	default:
		return 0
	}
}
