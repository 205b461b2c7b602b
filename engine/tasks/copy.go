// Package tasks collects the built-in task types every Assemble build can
// register without writing its own Configurator from scratch: Copy (file
// input/output, grounded on the teacher's WorkHandler up-to-date idiom) and
// Exec (run an external command). Neither is a concrete script-language
// front-end — they're ordinary library task types a Configure function
// wires up the same way it would any task of its own.
package tasks

import (
	"context"
	"io"

	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/engine/fingerprint"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
	"github.com/assemble-build/assemble/pkg/logger"
)

// CopyResult reports what the most recent run of a Copy task actually did.
// A caller that wants to observe it passes a pointer it owns; nil means
// no one cares.
type CopyResult struct {
	DidWork  bool
	UpToDate bool
}

// Copy copies From to Into, skipping the copy entirely when the up-to-date
// check reports the input content and prior output digest still match.
type Copy struct {
	From   string
	Into   string
	Result *CopyResult
}

// RegisterCopy registers a Copy task named name under owner, wiring its
// up-to-date check and execution through store.
func RegisterCopy(
	container *project.TaskContainer,
	owner *project.Project,
	name string,
	fs afero.Fs,
	store *fingerprint.Store,
	value Copy,
) (*task.TaskHandle[Copy], error) {
	return project.RegisterTaskWith(container, owner, name, value,
		func(h *task.TaskHandle[Copy]) error {
			h.SetWork(func(ctx context.Context, v Copy) error {
				return runCopy(ctx, h, fs, store, v)
			})
			return nil
		},
	)
}

func runCopy(ctx context.Context, h *task.TaskHandle[Copy], fs afero.Fs, store *fingerprint.Store, v Copy) error {
	id := h.ID()
	wh := fingerprint.NewWorkHandler(fs)
	wh.RegisterFileInput("from", func() ([]string, error) { return []string{v.From}, nil })
	wh.RegisterOutput("into", func() (string, error) { return v.Into, nil })

	upToDate, current, err := wh.Check(ctx, store, id, nil, fingerprint.RerunFromContext(ctx), nil)
	if err != nil {
		return err
	}
	if v.Result != nil {
		v.Result.UpToDate = upToDate
		v.Result.DidWork = !upToDate
	}
	if upToDate {
		logger.FromContext(ctx).Debug("copy up to date", "task", id.String())
		return nil
	}

	if err := copyFile(fs, v.From, v.Into); err != nil {
		return err
	}
	return wh.Commit(ctx, store, id, current.Inputs, nil)
}

func copyFile(fs afero.Fs, from, into string) error {
	src, err := fs.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := fs.Create(into)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
