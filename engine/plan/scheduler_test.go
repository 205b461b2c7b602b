package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/engine/graph"
	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
)

type schedBuildTask struct{}
type schedTestTask struct{}
type schedPackageTask struct{}
type schedCleanupTask struct{}

func buildLinearPlan(t *testing.T) (*Plan, map[string]string) {
	t.Helper()
	root, err := project.NewRoot("app", "/workspace")
	require.NoError(t, err)
	build, err := project.RegisterTask(root.Tasks(), root, "build", schedBuildTask{})
	require.NoError(t, err)
	_, err = project.RegisterTaskWith(
		root.Tasks(), root, "test", schedTestTask{},
		func(h *task.TaskHandle[schedTestTask]) error {
			h.DependsOn(buildable.Self(build.ID()))
			return nil
		},
	)
	require.NoError(t, err)
	cleanup, err := project.RegisterTask(root.Tasks(), root, "cleanup", schedCleanupTask{})
	require.NoError(t, err)
	_, err = project.RegisterTaskWith(
		root.Tasks(), root, "package", schedPackageTask{},
		func(h *task.TaskHandle[schedPackageTask]) error {
			h.DependsOn(buildable.Self(build.ID()))
			h.FinalizedBy(buildable.Self(cleanup.ID()))
			return nil
		},
	)
	require.NoError(t, err)

	g, err := graph.Build(root, []string{"test", "package", "cleanup"})
	require.NoError(t, err)
	p, err := Build(g)
	require.NoError(t, err)

	ids := map[string]string{}
	for _, name := range []string{"build", "test", "package", "cleanup"} {
		id, err := root.FindTaskID(name)
		require.NoError(t, err)
		ids[name] = id.String()
	}
	return p, ids
}

func TestScheduler(t *testing.T) {
	t.Run("Should pop only the initially unblocked task", func(t *testing.T) {
		p, ids := buildLinearPlan(t)
		s := NewScheduler(p, []string{"test", "package", "cleanup"})

		id, ok := s.PopTask()
		require.True(t, ok)
		assert.Equal(t, ids["build"], id.String())

		_, ok = s.PopTask()
		assert.False(t, ok, "test/package/cleanup all still wait on build")
	})

	t.Run("Should unblock dependents once the predecessor succeeds", func(t *testing.T) {
		p, ids := buildLinearPlan(t)
		s := NewScheduler(p, []string{"test", "package", "cleanup"})

		buildID, ok := s.PopTask()
		require.True(t, ok)
		require.Equal(t, ids["build"], buildID.String())

		s.ReportTaskStatus(buildID, true)

		seen := map[string]bool{}
		for i := 0; i < 2; i++ {
			id, ok := s.PopTask()
			require.True(t, ok)
			seen[id.String()] = true
		}
		assert.True(t, seen[ids["test"]])
		assert.True(t, seen[ids["package"]])
		assert.False(t, s.Finished(), "cleanup still waits on package to finish")
	})

	t.Run("Should leave RunAfter dependents permanently blocked on failure", func(t *testing.T) {
		p, _ := buildLinearPlan(t)
		s := NewScheduler(p, []string{"test", "package", "cleanup"})

		buildID, ok := s.PopTask()
		require.True(t, ok)
		s.ReportTaskStatus(buildID, false)

		_, ok = s.PopTask()
		assert.False(t, ok, "test and package depend on build's success, not merely its finish")
	})

	t.Run("Should unblock a finalizer once the finalized task completes", func(t *testing.T) {
		p, ids := buildLinearPlan(t)
		s := NewScheduler(p, []string{"test", "package", "cleanup"})

		buildID, ok := s.PopTask()
		require.True(t, ok)
		s.ReportTaskStatus(buildID, true)

		var pkgID identifier.TaskID
		var found bool
		for {
			id, ok := s.PopTask()
			require.True(t, ok)
			if id.String() == ids["package"] {
				pkgID, found = id, true
				break
			}
			s.ReportTaskStatus(id, true)
		}
		require.True(t, found)

		_, ok = s.PopTask()
		assert.False(t, ok, "cleanup still waits on package's finalizer ordering")

		s.ReportTaskStatus(pkgID, true)

		next, ok := s.PopTask()
		require.True(t, ok)
		assert.Equal(t, ids["cleanup"], next.String())
	})

	t.Run("Should report requested tasks ahead of tasks only pulled onto the path", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		a, err := project.RegisterTask(root.Tasks(), root, "a", schedBuildTask{})
		require.NoError(t, err)
		b, err := project.RegisterTask(root.Tasks(), root, "b", schedTestTask{})
		require.NoError(t, err)
		_, err = project.RegisterTaskWith(
			root.Tasks(), root, "onpath", schedPackageTask{},
			func(h *task.TaskHandle[schedPackageTask]) error {
				h.DependsOn(buildable.Self(a.ID()))
				h.DependsOn(buildable.Self(b.ID()))
				return nil
			},
		)
		require.NoError(t, err)

		g, err := graph.Build(root, []string{"b", "onpath"})
		require.NoError(t, err)
		p, err := Build(g)
		require.NoError(t, err)

		s := NewScheduler(p, []string{"b", "onpath"})

		bID, err := root.FindTaskID("b")
		require.NoError(t, err)
		aID, err := root.FindTaskID("a")
		require.NoError(t, err)

		first, ok := s.PopTask()
		require.True(t, ok)
		assert.Equal(t, bID.String(), first.String(), "explicitly requested b outranks OnPath a")

		second, ok := s.PopTask()
		require.True(t, ok)
		assert.Equal(t, aID.String(), second.String())
	})

	t.Run("Should report finished only once the queue and in-flight set both drain", func(t *testing.T) {
		root, err := project.NewRoot("app", "/workspace")
		require.NoError(t, err)
		_, err = project.RegisterTask(root.Tasks(), root, "solo", schedBuildTask{})
		require.NoError(t, err)

		g, err := graph.Build(root, []string{"solo"})
		require.NoError(t, err)
		p, err := Build(g)
		require.NoError(t, err)

		s := NewScheduler(p, []string{"solo"})
		assert.False(t, s.Finished(), "one ready task pending")

		id, ok := s.PopTask()
		require.True(t, ok)
		assert.False(t, s.Finished(), "task is in flight")

		s.ReportTaskStatus(id, true)
		assert.True(t, s.Finished())
	})

	t.Run("Should report finished even with a permanently blocked dependent", func(t *testing.T) {
		p, _ := buildLinearPlan(t)
		s := NewScheduler(p, []string{"test", "package", "cleanup"})

		buildID, ok := s.PopTask()
		require.True(t, ok)
		s.ReportTaskStatus(buildID, false)

		assert.True(t, s.Finished(), "test/package/cleanup remain blocked forever but neither queue nor in-flight holds them")
	})
}
