package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// CheckFunc is one producer pass over one file. It submits findings through
// the reporter and returns an error only for infrastructure failures —
// user-visible problems go into the reporter, not the error channel.
type CheckFunc func(ctx context.Context, files *source.FileSet, id source.FileID, r diag.Reporter) error

// RunChecks fans check out over files with at most jobs workers (0 = one per
// CPU), all submitting into the session's shared collector. It returns after
// every worker has finished, so the collector is quiescent and safe to
// render. Context cancellation stops scheduling; the first infrastructure
// error aborts the group and is returned.
func RunChecks(ctx context.Context, s *Session, ids []source.FileID, jobs int, check CheckFunc) error {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return check(ctx, s.Files, id, s.Diags)
		})
	}
	return g.Wait()
}
