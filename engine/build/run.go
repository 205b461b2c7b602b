// Package build wires the stages a real invocation (the CLI, or a test
// exercising an end-to-end scenario) must run in order: locate the project
// tree (settings phase), resolve the requested tasks into a dependency graph
// (C3/C8), linearize it into a plan (C9), and drain that plan through a
// worker pool (C10). Nothing here builds a project tree itself — that stays
// the caller's job via the injected Configure, the "opaque producer"
// collaborator this tool treats project definition as.
package build

import (
	"context"

	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/engine/fingerprint"
	"github.com/assemble-build/assemble/engine/graph"
	"github.com/assemble-build/assemble/engine/option"
	"github.com/assemble-build/assemble/engine/plan"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/settings"
	"github.com/assemble-build/assemble/engine/worker"
)

// Options configures one end-to-end run.
type Options struct {
	FS       afero.Fs
	RootName string
	RootDir  string

	// Configure declares the project tree's subprojects (the settings-phase
	// script, spec.md §5 phase 1). It is the caller's responsibility, not
	// this package's — the equivalent of evaluating a settings script.
	Configure settings.Configure

	// RegisterTasks runs once DiscoverProjects has resolved the real
	// project tree (spec.md §5 phase 2, the build-script phase): it
	// registers every task on root and its children and declares their
	// orderings. Like Configure, this is the caller's "opaque producer" —
	// this package only requires that the tree be fully built before
	// RegisterTasks returns.
	RegisterTasks func(root *project.Project) error

	// Requested is the task shorthand list exactly as given on the command
	// line, in the order given; it decides both what's reachable in the
	// graph and which ready tasks the scheduler favors first.
	Requested []string

	// ProjectProperties holds the CLI's -P key[=value] pairs, attached to
	// the root project as an extension (nil value means the flag was given
	// without a value) before RegisterTasks runs, so a build script can
	// consult project.Extension("properties") the way a Gradle script
	// reads project.property(name).
	ProjectProperties map[string]*string

	// TaskOptions holds the per-task CLI option tails a caller already
	// slurped against each requested task's declarations (see
	// cli.ResolveTaskOptions), keyed by the resolved task's full TaskId
	// string. A task's work closure reads its own entry back out via
	// option.ValuesForTask.
	TaskOptions option.PerTaskValues

	WorkerCount int
	RerunTasks  bool
	Meter       worker.Option // optional, e.g. worker.WithMeter(meter)
}

// Result is everything a caller might want to report after a run.
type Result struct {
	Project *project.Project
	Plan    *plan.Plan
}

// Discover runs the settings phase and then RegisterTasks against the
// resolved project tree, without touching the graph/plan/worker stages.
// Split out from Run so a caller that needs the built project before it
// knows what to request (the CLI resolves each task's own option tail
// against its registered type before it can build Options.Requested) can
// do so without registering every task a second time.
func Discover(opts Options) (*project.Project, error) {
	proj, err := settings.DiscoverProjects(opts.FS, opts.RootName, opts.RootDir, opts.Configure)
	if err != nil {
		return nil, err
	}
	if opts.ProjectProperties != nil {
		proj.SetExtension("properties", opts.ProjectProperties)
	}
	if opts.RegisterTasks != nil {
		if err := opts.RegisterTasks(proj); err != nil {
			return nil, err
		}
	}
	return proj, nil
}

// Run executes one full build: discover, resolve the graph, plan, and run.
// The returned error is nil only if every reached task completed without
// error; a failed RunAfter dependency still lets independent branches run to
// completion (see worker.RunPlan), so a non-nil error here doesn't mean
// nothing ran.
func Run(ctx context.Context, opts Options) (*Result, error) {
	proj, err := Discover(opts)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, proj, opts)
}

// Execute runs the graph/plan/worker stages against an already-discovered
// project (see Discover), using opts for everything after project
// construction (Requested, TaskOptions, WorkerCount, RerunTasks, Meter);
// Configure, ProjectProperties and RegisterTasks are ignored here since they
// only apply during Discover.
func Execute(ctx context.Context, proj *project.Project, opts Options) (*Result, error) {
	g, err := graph.Build(proj, opts.Requested)
	if err != nil {
		return nil, err
	}

	p, err := plan.Build(g)
	if err != nil {
		return nil, err
	}

	requestOrder, err := resolveRequestOrder(proj, opts.Requested)
	if err != nil {
		return nil, err
	}

	poolOpts := []worker.Option{worker.WithWorkerCount(opts.WorkerCount)}
	if opts.Meter != nil {
		poolOpts = append(poolOpts, opts.Meter)
	}
	pool, err := worker.NewPool(poolOpts...)
	if err != nil {
		return nil, err
	}

	runCtx := fingerprint.ContextWithRerun(ctx, opts.RerunTasks)
	if opts.TaskOptions != nil {
		runCtx = option.ContextWithTaskValues(runCtx, opts.TaskOptions)
	}
	runErr := worker.RunPlan(runCtx, pool, p, requestOrder)
	return &Result{Project: proj, Plan: p}, runErr
}

// resolveRequestOrder turns the command line's shorthand list into the full
// TaskId strings plan.NewScheduler's priority map is keyed by — a shorthand
// like "test" never matches that map on its own once more than one project
// is involved.
func resolveRequestOrder(proj *project.Project, requested []string) ([]string, error) {
	out := make([]string, 0, len(requested))
	for _, shorthand := range requested {
		id, err := proj.FindTaskID(shorthand)
		if err != nil {
			return nil, err
		}
		out = append(out, id.String())
	}
	return out, nil
}
