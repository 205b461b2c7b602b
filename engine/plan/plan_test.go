package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/engine/graph"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
)

type buildTask struct{}
type testTask struct{}
type packageTask struct{}
type deployTask struct{}
type cleanupTask struct{}

func TestBuildPlan(t *testing.T) {
	t.Run("Should normalize DependsOn into a RunAfter predecessor", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		build, err := project.RegisterTask(root.Tasks(), root, "build", buildTask{})
		require.NoError(t, err)
		_, err = project.RegisterTaskWith(
			root.Tasks(), root, "test", testTask{},
			func(h *task.TaskHandle[testTask]) error {
				h.DependsOn(buildable.Self(build.ID()))
				return nil
			},
		)
		require.NoError(t, err)

		g, err := graph.Build(root, []string{"test"})
		require.NoError(t, err)
		p, err := Build(g)
		require.NoError(t, err)

		testID, err := root.FindTaskID("test")
		require.NoError(t, err)
		preds := p.Predecessors(testID)
		require.Len(t, preds, 1)
		assert.Equal(t, "app:build", preds[0].String())
	})

	t.Run("Should flip RunsBefore into a RunAfter edge on the other side", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		pkg, err := project.RegisterTask(root.Tasks(), root, "package", packageTask{})
		require.NoError(t, err)
		_, err = project.RegisterTaskWith(
			root.Tasks(), root, "build", buildTask{},
			func(h *task.TaskHandle[buildTask]) error {
				h.RunsBefore(buildable.Self(pkg.ID()))
				h.DependsOn(buildable.Self(pkg.ID())) // pull package into the plan too
				return nil
			},
		)
		require.NoError(t, err)

		g, err := graph.Build(root, []string{"build"})
		require.NoError(t, err)
		p, err := Build(g)
		require.NoError(t, err)

		pkgID, err := root.FindTaskID("package")
		require.NoError(t, err)
		preds := p.Predecessors(pkgID)
		require.Len(t, preds, 1)
		assert.Equal(t, "app:build", preds[0].String())
	})

	t.Run("Should flip FinalizedBy into a Finalizer edge on the target", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		cleanup, err := project.RegisterTask(root.Tasks(), root, "cleanup", cleanupTask{})
		require.NoError(t, err)
		_, err = project.RegisterTaskWith(
			root.Tasks(), root, "deploy", deployTask{},
			func(h *task.TaskHandle[deployTask]) error {
				h.FinalizedBy(buildable.Self(cleanup.ID()))
				return nil
			},
		)
		require.NoError(t, err)

		g, err := graph.Build(root, []string{"deploy"})
		require.NoError(t, err)
		p, err := Build(g)
		require.NoError(t, err)

		cleanupID, err := root.FindTaskID("cleanup")
		require.NoError(t, err)
		fins := p.Finalizers(cleanupID)
		require.Len(t, fins, 1)
		assert.Equal(t, "app:deploy", fins[0].String())
	})

	t.Run("Should reject a cycle formed through DependsOn edges", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		a, err := project.RegisterTaskWith(
			root.Tasks(), root, "a", buildTask{}, nil,
		)
		require.NoError(t, err)
		b, err := project.RegisterTaskWith(
			root.Tasks(), root, "b", testTask{},
			func(h *task.TaskHandle[testTask]) error {
				h.DependsOn(buildable.Self(a.ID()))
				return nil
			},
		)
		require.NoError(t, err)
		require.NoError(t, a.Configure())
		a.DependsOn(buildable.Self(b.ID()))

		g, err := graph.Build(root, []string{"a", "b"})
		require.NoError(t, err)
		_, err = Build(g)
		assert.Error(t, err)
	})

	t.Run("Should drop a RunAfter edge implied by a longer path", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		a, err := project.RegisterTask(root.Tasks(), root, "a", buildTask{})
		require.NoError(t, err)
		b, err := project.RegisterTaskWith(
			root.Tasks(), root, "b", testTask{},
			func(h *task.TaskHandle[testTask]) error {
				h.DependsOn(buildable.Self(a.ID()))
				return nil
			},
		)
		require.NoError(t, err)
		_, err = project.RegisterTaskWith(
			root.Tasks(), root, "c", packageTask{},
			func(h *task.TaskHandle[packageTask]) error {
				h.DependsOn(buildable.Self(b.ID()))
				h.DependsOn(buildable.Self(a.ID())) // redundant: c -> b -> a already implies it
				return nil
			},
		)
		require.NoError(t, err)

		g, err := graph.Build(root, []string{"c"})
		require.NoError(t, err)
		p, err := Build(g)
		require.NoError(t, err)

		cID, err := root.FindTaskID("c")
		require.NoError(t, err)
		preds := p.Predecessors(cID)
		require.Len(t, preds, 1)
		assert.Equal(t, "app:b", preds[0].String())
	})
}
