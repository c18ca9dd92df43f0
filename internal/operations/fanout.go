package operations

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachLimit calls fn for i in [0, n) with at most workers calls in flight.
// fn reports per-item failures itself; its return value is never propagated,
// so one failing item does not cancel its siblings. Items not yet started
// when ctx is cancelled are not run, and ctx.Err() is returned.
func forEachLimit(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) error {
	if workers < 1 {
		workers = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}
