package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("Should run submitted tokens concurrently up to the worker count", func(t *testing.T) {
		p, err := NewPool(WithWorkerCount(4))
		require.NoError(t, err)
		ctx := context.Background()

		var running int32
		var maxRunning int32
		release := make(chan struct{})

		var handles []*WorkHandle
		for i := 0; i < 4; i++ {
			h, err := p.Submit(ctx, WorkToken{
				ID: "t",
				Work: func(ctx context.Context) error {
					n := atomic.AddInt32(&running, 1)
					for {
						cur := atomic.LoadInt32(&maxRunning)
						if n <= cur || atomic.CompareAndSwapInt32(&maxRunning, cur, n) {
							break
						}
					}
					<-release
					atomic.AddInt32(&running, -1)
					return nil
				},
			})
			require.NoError(t, err)
			handles = append(handles, h)
		}

		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&maxRunning) == 4
		}, time.Second, time.Millisecond)

		close(release)
		for _, h := range handles {
			require.NoError(t, h.Wait())
		}
	})

	t.Run("Should resolve a WorkHandle with the token's error", func(t *testing.T) {
		p, err := NewPool(WithWorkerCount(2))
		require.NoError(t, err)
		boom := errors.New("boom")

		h, err := p.Submit(context.Background(), WorkToken{
			ID:   "failing",
			Work: func(context.Context) error { return boom },
		})
		require.NoError(t, err)
		assert.ErrorIs(t, h.Wait(), boom)
	})

	t.Run("Should run on_start before work and on_complete after, even on failure", func(t *testing.T) {
		p, err := NewPool(WithWorkerCount(1))
		require.NoError(t, err)

		var order []string
		boom := errors.New("boom")
		h, err := p.Submit(context.Background(), WorkToken{
			ID: "ordered",
			OnStart: func(context.Context) error {
				order = append(order, "start")
				return nil
			},
			Work: func(context.Context) error {
				order = append(order, "work")
				return boom
			},
			OnComplete: func(_ context.Context, err error) {
				order = append(order, "complete")
				assert.ErrorIs(t, err, boom)
			},
		})
		require.NoError(t, err)
		require.ErrorIs(t, h.Wait(), boom)
		assert.Equal(t, []string{"start", "work", "complete"}, order)
	})

	t.Run("Should recover from a panicking token instead of crashing the pool", func(t *testing.T) {
		p, err := NewPool(WithWorkerCount(2))
		require.NoError(t, err)

		h, err := p.Submit(context.Background(), WorkToken{
			ID:   "panicky",
			Work: func(context.Context) error { panic("kaboom") },
		})
		require.NoError(t, err)

		werr := h.Wait()
		require.Error(t, werr)
		assert.True(t, p.AnyPanicked())

		// the pool keeps accepting work afterward
		h2, err := p.Submit(context.Background(), WorkToken{
			ID:   "fine",
			Work: func(context.Context) error { return nil },
		})
		require.NoError(t, err)
		assert.NoError(t, h2.Wait())
	})

	t.Run("Should block Submit until a worker slot frees up", func(t *testing.T) {
		p, err := NewPool(WithWorkerCount(1))
		require.NoError(t, err)

		release := make(chan struct{})
		first, err := p.Submit(context.Background(), WorkToken{
			ID:   "first",
			Work: func(context.Context) error { <-release; return nil },
		})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = p.Submit(ctx, WorkToken{ID: "second", Work: func(context.Context) error { return nil }})
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		close(release)
		require.NoError(t, first.Wait())
	})

	t.Run("Should report Join true only after a panic occurred", func(t *testing.T) {
		p, err := NewPool(WithWorkerCount(1))
		require.NoError(t, err)

		h, err := p.Submit(context.Background(), WorkToken{
			ID:   "ok",
			Work: func(context.Context) error { return nil },
		})
		require.NoError(t, err)
		require.NoError(t, h.Wait())
		assert.False(t, p.Join())
	})
}
