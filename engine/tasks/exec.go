package tasks

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/assemble-build/assemble/engine/option"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
	"github.com/assemble-build/assemble/pkg/apperr"
	"github.com/assemble-build/assemble/pkg/logger"
)

// ExecResult captures the output of the most recent Exec run, for a caller
// that wants to observe it without re-running the command itself.
type ExecResult struct {
	Stdout string
	Stderr string
}

// Exec runs an external command as a task's main work, via
// exec.CommandContext.
type Exec struct {
	Command string
	Args    []string
	Dir     string
	Result  *ExecResult
}

// RegisterExec registers an Exec task named name under owner.
func RegisterExec(
	container *project.TaskContainer,
	owner *project.Project,
	name string,
	value Exec,
) (*task.TaskHandle[Exec], error) {
	return project.RegisterTaskWith(container, owner, name, value,
		func(h *task.TaskHandle[Exec]) error {
			h.SetWork(func(ctx context.Context, v Exec) error {
				return runExec(ctx, h, v)
			})
			return nil
		},
	)
}

func runExec(ctx context.Context, h *task.TaskHandle[Exec], v Exec) error {
	id := h.ID()
	logger.FromContext(ctx).Debug("running command", "task", id.String(), "command", v.Command)

	args := v.Args
	if extra := option.ValuesForTask(ctx, id.String()).All("args"); len(extra) > 0 {
		args = make([]string, 0, len(v.Args)+len(extra))
		args = append(args, v.Args...)
		for _, a := range extra {
			if s, ok := a.(string); ok {
				args = append(args, s)
			}
		}
	}

	cmd := exec.CommandContext(ctx, v.Command, args...)
	cmd.Dir = v.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if v.Result != nil {
		v.Result.Stdout = stdout.String()
		v.Result.Stderr = stderr.String()
	}
	if err != nil {
		return apperr.TaskFailed(id.String(), err)
	}
	return nil
}
