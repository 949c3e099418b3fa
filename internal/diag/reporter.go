package diag

// Reporter is the minimal fan-in contract producers hold. Implementations:
// Collector (accumulates), NopReporter (discards), DedupReporter (filters).
type Reporter interface {
	Report(d Diagnostic)
}

// NopReporter discards everything. Useful for probing passes whose findings
// the caller intends to throw away.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
