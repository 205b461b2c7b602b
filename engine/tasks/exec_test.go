package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/option"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
)

func TestExec(t *testing.T) {
	t.Run("Should capture stdout from a successful command", func(t *testing.T) {
		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)
		id, err := identifier.NewTaskID(root.ID(), "greet")
		require.NoError(t, err)

		var result ExecResult
		v := Exec{Command: "echo", Args: []string{"hello"}, Result: &result}
		handle := task.NewHandle(id, "Exec", root, v, nil)

		require.NoError(t, runExec(context.Background(), handle, v))
		assert.Contains(t, result.Stdout, "hello")
	})

	t.Run("Should report TaskFailed when the command exits non-zero", func(t *testing.T) {
		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)
		id, err := identifier.NewTaskID(root.ID(), "boom")
		require.NoError(t, err)

		v := Exec{Command: "false"}
		handle := task.NewHandle(id, "Exec", root, v, nil)

		err = runExec(context.Background(), handle, v)
		assert.Error(t, err)
	})

	t.Run("Should append context-supplied args to the declared ones", func(t *testing.T) {
		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)
		id, err := identifier.NewTaskID(root.ID(), "greet")
		require.NoError(t, err)

		var result ExecResult
		v := Exec{Command: "echo", Args: []string{"hello"}, Result: &result}
		handle := task.NewHandle(id, "Exec", root, v, nil)

		ctx := option.ContextWithTaskValues(context.Background(), option.PerTaskValues{
			id.String(): {"args": {"world"}},
		})
		require.NoError(t, runExec(ctx, handle, v))
		assert.Contains(t, result.Stdout, "hello world")
	})

	t.Run("Should register through a project's task container", func(t *testing.T) {
		root, err := project.NewRoot("app", "/")
		require.NoError(t, err)
		_, err = RegisterExec(root.Tasks(), root, "greet", Exec{Command: "echo", Args: []string{"hi"}})
		require.NoError(t, err)
		id, err := root.FindTaskID("greet")
		require.NoError(t, err)
		_, ok := root.LookupTask(id)
		assert.True(t, ok)
	})
}
