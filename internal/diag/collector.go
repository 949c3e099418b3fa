package diag

import (
	"slices"
	"sync"
)

// Collector is the session-scoped accumulation point for diagnostics. One
// live Collector exists per compilation session; it is threaded explicitly
// through the call graph (never a hidden global), filled by producers, read
// by renderers and discarded when the session ends.
//
// Submit is safe for concurrent producers. Rendering reads a snapshot via
// All; callers must quiesce producers (join their workers) before rendering —
// the Collector does not enforce that itself.
type Collector struct {
	mu     sync.Mutex
	items  []Diagnostic
	counts [SevBug + 1]int
	max    Severity
	any    bool
}

// NewCollector creates an empty Collector for a fresh session.
func NewCollector() *Collector {
	return &Collector{}
}

// Submit appends d and folds it into the severity bookkeeping. It never
// fails and never blocks on I/O; producers submit and move on, they do not
// branch on submission.
func (c *Collector) Submit(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.counts[d.Severity]++
	if !c.any || d.Severity > c.max {
		c.max = d.Severity
	}
	c.any = true
	c.mu.Unlock()
}

// Report makes the Collector the canonical Reporter implementation.
func (c *Collector) Report(d Diagnostic) {
	c.Submit(d)
}

// HasSeverityAtLeast reports whether any submitted diagnostic reached sev.
// This is the single decision point drivers use to halt a pipeline; once
// true for a given sev it stays true for the session's lifetime.
func (c *Collector) HasSeverityAtLeast(sev Severity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.any && c.max >= sev
}

// Count returns how many diagnostics were submitted at exactly sev.
func (c *Collector) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sev > SevBug {
		return 0
	}
	return c.counts[sev]
}

// Len returns the total number of submitted diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// MaxSeverity returns the worst severity observed, and false for an empty
// session.
func (c *Collector) MaxSeverity() (Severity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max, c.any
}

// All returns a snapshot of every diagnostic in raw submission order. The
// slice is a copy; renderers re-sort their own view, while callers that care
// about "first error encountered" heuristics read this order directly.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}
