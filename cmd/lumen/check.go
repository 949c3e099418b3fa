package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/internal/diag"
	"lumen/internal/driver"
	"lumen/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file...>",
	Short: "Run the built-in line-hygiene checks over source files",
	Long: `Check runs lumen's built-in hygiene producer (encoding, trailing
whitespace, overlong lines) over the given files in parallel and renders
whatever it finds`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Int("max-width", 120, "line width limit for the long-line check")
	checkCmd.Flags().Bool("cache", false, "reuse cached findings for unchanged files")
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, format, err := resolveRenderOptions(cmd)
	if err != nil {
		return err
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	maxWidth, _ := cmd.Flags().GetInt("max-width")
	useCache, _ := cmd.Flags().GetBool("cache")

	session := driver.NewSession()
	ids := make([]source.FileID, 0, len(args))
	for _, path := range args {
		id, err := session.LoadFile(path)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	var cache *driver.Cache
	if useCache {
		if cache, err = driver.OpenDefaultCache("lumen"); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	// Cache hits are replayed straight into the collector; only misses run
	// the producer.
	pending := ids
	if cache != nil {
		pending = pending[:0:0]
		for _, id := range ids {
			f, _ := session.Files.Get(id)
			if diags, ok := cache.Load(f); ok {
				for _, d := range diags {
					session.Diags.Submit(d)
				}
				continue
			}
			pending = append(pending, id)
		}
	}

	if err := driver.RunChecks(cmd.Context(), session, pending, jobs, driver.HygieneCheck(maxWidth)); err != nil {
		return err
	}

	if cache != nil {
		all := session.Diags.All()
		for _, id := range pending {
			f, _ := session.Files.Get(id)
			if err := cache.Store(f, fileDiagnostics(all, id)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache store %s: %v\n", f.Path, err)
			}
		}
	}

	emit(session, format, opts)
	return nil
}

// fileDiagnostics filters the session's findings down to those anchored in
// file id, the only ones the per-file cache can rebind on load.
func fileDiagnostics(all []diag.Diagnostic, id source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(all))
	for _, d := range all {
		if d.Unspanned() || !driver.Cacheable(d, id) {
			continue
		}
		if primary, ok := d.PrimaryLabel(); ok && primary.Span.File == id {
			out = append(out, d)
		}
	}
	return out
}
