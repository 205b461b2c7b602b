package fingerprint

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/engine/identifier"
)

func mustTaskID(t *testing.T, s string) identifier.TaskID {
	t.Helper()
	id, err := identifier.Parse(s)
	require.NoError(t, err)
	return id
}

func TestStoreRoundTrip(t *testing.T) {
	t.Run("Should return nil for a task with no persisted record", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		rec, err := store.Load(mustTaskID(t, "app:compile"))
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Should save and reload a record", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		id := mustTaskID(t, "app:compile")
		rec := &Record{TaskID: id.String(), Inputs: []InputEntry{{Name: "src", Digest: "abc"}}}
		require.NoError(t, store.Save(id, rec))

		got, err := store.Load(id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.Inputs, got.Inputs)
	})

	t.Run("Should serve reads through the in-memory LRU without re-reading the filesystem", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 8)
		require.NoError(t, err)

		id := mustTaskID(t, "app:compile")
		require.NoError(t, store.Save(id, &Record{TaskID: id.String()}))

		first, err := store.Load(id)
		require.NoError(t, err)
		require.NoError(t, fs.Remove(store.pathFor(id)))

		second, err := store.Load(id)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})
}

func TestWorkHandlerUpToDateCheck(t *testing.T) {
	t.Run("Should not be up to date when no previous record exists", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		w := NewWorkHandler(fs)
		w.RegisterValueInput("greeting", func() (any, error) { return "hello", nil })

		upToDate, current, err := w.Check(context.Background(), store, mustTaskID(t, "app:greet"), nil, false, nil)
		require.NoError(t, err)
		assert.False(t, upToDate)
		require.Len(t, current.Inputs, 1)
		assert.Equal(t, "greeting", current.Inputs[0].Name)
	})

	t.Run("Should be up to date when inputs and outputs match the previous record", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/out/result.txt", []byte("built"), 0o644))

		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		id := mustTaskID(t, "app:greet")
		w := NewWorkHandler(fs)
		w.RegisterValueInput("greeting", func() (any, error) { return "hello", nil })
		w.RegisterOutput("result", func() (string, error) { return "/out/result.txt", nil })

		upToDate, current, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		assert.False(t, upToDate)

		require.NoError(t, w.Commit(context.Background(), store, id, current.Inputs, nil))

		upToDate, _, err = w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		assert.True(t, upToDate)
	})

	t.Run("Should not be up to date when an input value changes", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		id := mustTaskID(t, "app:greet")
		greeting := "hello"
		w := NewWorkHandler(fs)
		w.RegisterValueInput("greeting", func() (any, error) { return greeting, nil })

		_, current, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		require.NoError(t, w.Commit(context.Background(), store, id, current.Inputs, nil))

		greeting = "goodbye"
		upToDate, _, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		assert.False(t, upToDate)
	})

	t.Run("Should not be up to date when an output file is missing", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/out/result.txt", []byte("built"), 0o644))
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		id := mustTaskID(t, "app:greet")
		w := NewWorkHandler(fs)
		w.RegisterOutput("result", func() (string, error) { return "/out/result.txt", nil })

		_, current, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		require.NoError(t, w.Commit(context.Background(), store, id, current.Inputs, nil))

		require.NoError(t, fs.Remove("/out/result.txt"))
		upToDate, _, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		assert.False(t, upToDate)
	})

	t.Run("Should force re-run when rerunForced is true even if everything matches", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		id := mustTaskID(t, "app:greet")
		w := NewWorkHandler(fs)
		_, current, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		require.NoError(t, w.Commit(context.Background(), store, id, current.Inputs, nil))

		upToDate, _, err := w.Check(context.Background(), store, id, nil, true, nil)
		require.NoError(t, err)
		assert.False(t, upToDate)
	})

	t.Run("Should let an override veto an otherwise up-to-date result", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store, err := NewStore(fs, "/cache", 0)
		require.NoError(t, err)

		id := mustTaskID(t, "app:greet")
		w := NewWorkHandler(fs)
		_, current, err := w.Check(context.Background(), store, id, nil, false, nil)
		require.NoError(t, err)
		require.NoError(t, w.Commit(context.Background(), store, id, current.Inputs, nil))

		vetoAlways := func(context.Context) (bool, error) { return false, nil }
		upToDate, _, err := w.Check(context.Background(), store, id, vetoAlways, false, nil)
		require.NoError(t, err)
		assert.False(t, upToDate)
	})
}
