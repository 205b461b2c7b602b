package config

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher(t *testing.T) {
	t.Run("Should construct and close cleanly with nothing watched", func(t *testing.T) {
		w, err := NewWatcher()
		require.NoError(t, err)
		assert.NoError(t, w.Close())
	})

	t.Run("Should invoke every registered callback on a file write", func(t *testing.T) {
		tmp, err := os.CreateTemp(t.TempDir(), "assemble-*.yaml")
		require.NoError(t, err)
		require.NoError(t, tmp.Close())

		w, err := NewWatcher()
		require.NoError(t, err)
		defer w.Close()

		var mu sync.Mutex
		fired := 0
		var wg sync.WaitGroup
		wg.Add(1)
		w.OnChange(func() {
			mu.Lock()
			fired++
			mu.Unlock()
			wg.Done()
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, w.Watch(ctx, tmp.Name()))
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, os.WriteFile(tmp.Name(), []byte("workers: 2\n"), 0o644))

		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for watcher callback")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.GreaterOrEqual(t, fired, 1)
	})

	t.Run("Should be safe to close twice", func(t *testing.T) {
		w, err := NewWatcher()
		require.NoError(t, err)
		require.NoError(t, w.Close())
		assert.NoError(t, w.Close())
	})
}
