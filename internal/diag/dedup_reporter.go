package diag

import (
	"sync"

	"lumen/internal/source"
)

type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary span and message. Retrying passes
// (e.g. a re-parse after recovery) otherwise report the same finding twice.
type DedupReporter struct {
	mu   sync.Mutex
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that forwards unique diagnostics to
// next and drops the rest.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := dedupKey{code: d.Code, sev: d.Severity, msg: d.Message}
	if primary, ok := d.PrimaryLabel(); ok {
		key.span = primary.Span
	} else {
		key.span = source.Unspanned()
	}

	r.mu.Lock()
	_, dup := r.seen[key]
	if !dup {
		r.seen[key] = struct{}{}
	}
	r.mu.Unlock()

	if !dup && r.next != nil {
		r.next.Report(d)
	}
}
