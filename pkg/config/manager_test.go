package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Load(t *testing.T) {
	t.Run("Should resolve compiled-in defaults when given no sources", func(t *testing.T) {
		m := NewManager()
		cfg, err := m.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Defaults(), cfg)
	})

	t.Run("Should let a later source override an earlier one", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/ws/assemble.yaml", []byte("workers: 4\n"), 0o644))

		m := NewManager()
		cfg, err := m.Load(
			context.Background(),
			NewYAMLProvider(fs, "/ws/assemble.yaml"),
			NewCLIProvider(map[string]any{"workers": 8}),
		)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Workers)
	})

	t.Run("Should fail when the resolved configuration is invalid", func(t *testing.T) {
		m := NewManager()
		_, err := m.Load(
			context.Background(),
			NewCLIProvider(map[string]any{"log_level": "verbose"}),
		)
		assert.Error(t, err)
	})

	t.Run("Should cache the resolved configuration on Get", func(t *testing.T) {
		m := NewManager()
		cfg, err := m.Load(context.Background())
		require.NoError(t, err)
		assert.Same(t, cfg, m.Get())
	})
}

func TestManager_Watch(t *testing.T) {
	t.Run("Should reload and notify subscribers when assemble.yaml changes", func(t *testing.T) {
		dir := t.TempDir()
		path := dir + "/assemble.yaml"
		require.NoError(t, afero.WriteFile(afero.NewOsFs(), path, []byte("workers: 2\n"), 0o644))

		m := NewManager()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, err := m.Load(ctx, NewYAMLProvider(afero.NewOsFs(), path))
		require.NoError(t, err)

		changed := make(chan *Config, 1)
		m.OnChange(func(cfg *Config) { changed <- cfg })

		require.NoError(t, afero.WriteFile(afero.NewOsFs(), path, []byte("workers: 6\n"), 0o644))

		select {
		case cfg := <-changed:
			assert.Equal(t, 6, cfg.Workers)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for config reload")
		}

		require.NoError(t, m.Close())
	})
}
