package ledger

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchScheduler runs work in fixed-size groups. Members of a group run
// concurrently and the whole group is joined before the next starts; a fixed
// pause separates groups. It is the only rate control on body fetches.
type BatchScheduler struct {
	Size  int
	Delay time.Duration

	// Sleep waits between groups. Defaults to a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// AfterBatch, if set, is called after each group is joined.
	AfterBatch func(batch, size int)
}

// Run calls fn once for each index in [0, n). An error from fn cancels the
// context of the rest of its group and stops Run once the group is joined.
// Per-item failures that should not stop the run must be handled inside fn.
func (s *BatchScheduler) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	size := s.Size
	if size < 1 {
		size = 1
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for batch, start := 0, 0; start < n; batch, start = batch+1, start+size {
		end := min(start+size, n)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				return fn(gctx, i)
			})
		}
		err := g.Wait()

		if s.AfterBatch != nil {
			s.AfterBatch(batch, end-start)
		}
		if err != nil {
			return err
		}

		if end < n && s.Delay > 0 {
			if err := sleep(ctx, s.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
