package diagfmt

import "lumen/internal/source"

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	// Color applies ANSI styles to severity tags and underline rows. The
	// driver decides whether color is appropriate (TTY detection is its
	// job); the renderer only obeys.
	Color bool
	// Context is the number of extra source lines shown above and below the
	// labeled range.
	Context int
	// PathMode selects how file paths are displayed in locus lines.
	PathMode source.PathMode
}

// JSONOpts configures machine-readable output.
type JSONOpts struct {
	// IncludePositions adds resolved line/col pairs next to byte offsets.
	IncludePositions bool
	PathMode         source.PathMode
	// Max truncates the emitted list (not the collector). 0 means all.
	Max int
}
