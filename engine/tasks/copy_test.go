package tasks

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/engine/fingerprint"
	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
)

func TestCopy(t *testing.T) {
	t.Run("Should copy on first run then report up to date on a no-op rerun", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/in.txt", []byte("payload"), 0o644))
		store, err := fingerprint.NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)
		id, err := identifier.NewTaskID(root.ID(), "sync")
		require.NoError(t, err)

		var result CopyResult
		v := Copy{From: "/in.txt", Into: "/out.txt", Result: &result}
		handle := task.NewHandle(id, "Copy", root, v, nil)

		require.NoError(t, runCopy(context.Background(), handle, fs, store, v))
		assert.True(t, result.DidWork)
		assert.False(t, result.UpToDate)
		content, err := afero.ReadFile(fs, "/out.txt")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(content))

		require.NoError(t, runCopy(context.Background(), handle, fs, store, v))
		assert.False(t, result.DidWork)
		assert.True(t, result.UpToDate)
	})

	t.Run("Should force a rerun when the context marks one forced", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/in.txt", []byte("payload"), 0o644))
		store, err := fingerprint.NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)
		id, err := identifier.NewTaskID(root.ID(), "sync")
		require.NoError(t, err)

		var result CopyResult
		v := Copy{From: "/in.txt", Into: "/out.txt", Result: &result}
		handle := task.NewHandle(id, "Copy", root, v, nil)

		require.NoError(t, runCopy(context.Background(), handle, fs, store, v))
		require.True(t, result.DidWork)

		forced := fingerprint.ContextWithRerun(context.Background(), true)
		require.NoError(t, runCopy(forced, handle, fs, store, v))
		assert.True(t, result.DidWork)
		assert.False(t, result.UpToDate)
	})

	t.Run("Should register through a project's task container", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := fingerprint.NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)

		var result CopyResult
		_, err = RegisterCopy(root.Tasks(), root, "sync", fs, store, Copy{
			From: "/in.txt", Into: "/out.txt", Result: &result,
		})
		require.NoError(t, err)

		id, err := root.FindTaskID("sync")
		require.NoError(t, err)
		_, ok := root.LookupTask(id)
		assert.True(t, ok)
	})
}
