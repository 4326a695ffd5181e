package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchScheduler_GroupsAndJoins(t *testing.T) {
	var (
		mu      sync.Mutex
		order   []string
		running atomic.Int32
		peak    atomic.Int32
	)
	var sleeps []time.Duration

	s := &BatchScheduler{
		Size:  3,
		Delay: 500 * time.Millisecond,
		Sleep: func(_ context.Context, d time.Duration) error {
			mu.Lock()
			order = append(order, "sleep")
			mu.Unlock()
			sleeps = append(sleeps, d)
			return nil
		},
		AfterBatch: func(batch, size int) {
			mu.Lock()
			order = append(order, "batch")
			mu.Unlock()
		},
	}

	seen := make([]bool, 7)
	err := s.Run(context.Background(), 7, func(_ context.Context, i int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		seen[i] = true
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)

	for i, ok := range seen {
		assert.True(t, ok, "index %d not processed", i)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
	// Three groups (3, 3, 1) and a pause only between groups.
	assert.Equal(t, []string{"batch", "sleep", "batch", "sleep", "batch"}, order)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, sleeps)
}

func TestBatchScheduler_Empty(t *testing.T) {
	called := false
	s := &BatchScheduler{Size: 3, Sleep: func(context.Context, time.Duration) error {
		called = true
		return nil
	}}
	err := s.Run(context.Background(), 0, func(context.Context, int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestBatchScheduler_SleepErrorStops(t *testing.T) {
	var processed atomic.Int32
	s := &BatchScheduler{
		Size:  2,
		Delay: time.Second,
		Sleep: func(context.Context, time.Duration) error { return context.Canceled },
	}

	err := s.Run(context.Background(), 5, func(context.Context, int) error {
		processed.Add(1)
		return nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(2), processed.Load())
}

func TestBatchScheduler_DefaultSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &BatchScheduler{Size: 1, Delay: time.Hour}
	err := s.Run(ctx, 2, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchScheduler_SizeFloor(t *testing.T) {
	var batches int
	s := &BatchScheduler{Size: 0, AfterBatch: func(int, int) { batches++ }}
	require.NoError(t, s.Run(context.Background(), 3, func(context.Context, int) error { return nil }))
	assert.Equal(t, 3, batches)
}

func TestBatchScheduler_MemberErrorStops(t *testing.T) {
	var (
		processed atomic.Int32
		batches   int
		canceled  atomic.Bool
	)
	boom := errors.New("boom")
	s := &BatchScheduler{
		Size:       2,
		AfterBatch: func(int, int) { batches++ },
	}

	err := s.Run(context.Background(), 6, func(ctx context.Context, i int) error {
		processed.Add(1)
		if i == 2 {
			return boom
		}
		if i == 3 {
			<-ctx.Done()
			canceled.Store(true)
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	// The failing group is joined and its sibling sees cancellation; later groups never run.
	assert.Equal(t, int32(4), processed.Load())
	assert.True(t, canceled.Load())
	assert.Equal(t, 2, batches)
}
