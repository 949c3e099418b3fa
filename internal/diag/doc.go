// Package diag defines the diagnostic model shared by every producing pass
// and the accumulation point they all feed.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by lexing / parsing / checking passes.
//   - Offer light-weight utilities (Reporter, Collector) that let producers
//     emit diagnostics without coupling to storage or formatting layers.
//   - Keep the accumulate-and-continue contract honest: a producer submits a
//     diagnostic, returns a placeholder value through its normal return
//     channel and keeps going. Nothing here ever asks a producer to branch
//     on whether reporting "succeeded".
//
// # Scope
//
// Package diag performs no formatting, IO, CLI integration or interactive
// behaviour. Rendering lives in internal/diagfmt; orchestration (sessions,
// parallel producers, caching) lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – four-level total order (Note < Warning < Error < Bug)
//     defined in severity.go. Bug is reserved for host-internal
//     inconsistencies, the "must not ship" class.
//   - Code – opaque string identifier (code.go). Meaning lives in an
//     external registry; this package only carries it through.
//   - Message – human oriented headline; keep it short and actionable.
//   - Labels – ordered source.Span anchors with a Primary/Secondary role and
//     an optional short message next to the underline.
//   - Notes – ordered free-text lines rendered under the source block.
//
// Diagnostics are built through the Builder (builder.go), whose Finish
// enforces the one invariant the model has: a diagnostic with labels must
// carry a primary label unless it is explicitly unspanned. Violations are
// producer defects and fail fast with ErrInvalidDiagnostic.
//
// # Collection
//
// Collector accumulates submitted diagnostics for one session and answers
// the queries drivers act on: HasSeverityAtLeast, Count, MaxSeverity, All.
// Submit is safe for concurrent producers; rendering happens over a
// snapshot after producers have been joined.
//
// Producers that need fan-in indirection hold a Reporter instead of the
// concrete Collector; DedupReporter decorates any Reporter with duplicate
// suppression.
package diag
