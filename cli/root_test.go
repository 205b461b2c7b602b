package cli

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/settings"
	"github.com/assemble-build/assemble/engine/task"
)

type noop struct{}

func TestRun(t *testing.T) {
	t.Run("Should run the requested task end to end", func(t *testing.T) {
		ran := false
		def := BuildDefinition{
			RootName:  "app",
			RootDir:   "/",
			FS:        afero.NewMemMapFs(),
			Configure: func(*settings.Settings) error { return nil },
			RegisterTasks: func(root *project.Project) error {
				_, err := project.RegisterTaskWith(root.Tasks(), root, "hello", noop{},
					func(h *task.TaskHandle[noop]) error {
						h.SetWork(func(context.Context, noop) error {
							ran = true
							return nil
						})
						return nil
					},
				)
				return err
			},
		}

		err := run(context.Background(), def, []string{"hello"})
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("Should fail when no task is requested", func(t *testing.T) {
		def := BuildDefinition{
			RootName:  "app",
			RootDir:   "/",
			FS:        afero.NewMemMapFs(),
			Configure: func(*settings.Settings) error { return nil },
		}
		err := run(context.Background(), def, nil)
		assert.Error(t, err)
	})

	t.Run("Should fail when the requested task doesn't exist", func(t *testing.T) {
		def := BuildDefinition{
			RootName:  "app",
			RootDir:   "/",
			FS:        afero.NewMemMapFs(),
			Configure: func(*settings.Settings) error { return nil },
		}
		err := run(context.Background(), def, []string{"missing"})
		assert.Error(t, err)
	})
}
