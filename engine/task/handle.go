package task

import (
	"context"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// Resolvable is the execution-facing view of a task: enough for the worker
// pool (C10) and the plan (C9) to run it without knowing its value type.
type Resolvable interface {
	ID() identifier.TaskID
	TypeName() string
	RunActions(ctx context.Context) error
	Orderings() []Ordering
}

// typeErasedConfigurable seals AnyTaskHandle to concrete *TaskHandle[T]
// values and exposes just enough to report the static type for
// TypeMismatch errors on a failed Downcast.
type typeErasedConfigurable interface {
	TypeName() string
}

// AnyTaskHandle is a type-erased TaskHandle: the "trio of object-safe
// roles" from spec.md §4.4 (Buildable, Resolvable, downcast) rendered as
// one Go interface a single concrete *TaskHandle[T] satisfies, rather than
// three separate trait objects sharing state.
type AnyTaskHandle interface {
	buildable.Buildable
	Resolvable
	typeErasedConfigurable
}

// TaskHandle is a clonable, shared reference to a task's configuration
// state. Every clone (every copy of the TaskHandle value) points at the
// same *Executable, so reconfiguring one is visible through all of them.
type TaskHandle[T any] struct {
	exec *Executable[T]
}

// newTaskHandle wraps exec in a TaskHandle value.
func newTaskHandle[T any](exec *Executable[T]) *TaskHandle[T] {
	return &TaskHandle[T]{exec: exec}
}

// NewHandle constructs a standalone TaskHandle, outside a Project's
// TaskContainer — used by tests and by the container's register_task
// implementation.
func NewHandle[T any](
	id identifier.TaskID,
	typeName string,
	project buildable.Project,
	value T,
	configure Configurator[T],
) *TaskHandle[T] {
	return newTaskHandle(newExecutable(id, typeName, project, value, configure))
}

// ID returns the task's identifier.
func (h *TaskHandle[T]) ID() identifier.TaskID { return h.exec.id }

// TypeName returns the task's static type name, set at registration.
func (h *TaskHandle[T]) TypeName() string { return h.exec.typeName }

// Configure runs the captured configurator exactly once (Lazy -> Configured).
func (h *TaskHandle[T]) Configure() error {
	return h.exec.ensureConfigured(h)
}

// DependsOn declares that every TaskId target expands to must complete
// successfully before this task starts, and pulls target into the graph.
func (h *TaskHandle[T]) DependsOn(target buildable.Buildable) {
	h.exec.addOrdering(Ordering{Kind: DependsOn, Target: target})
}

// FinalizedBy declares that target runs after this task terminates
// regardless of outcome, and pulls target into the graph.
func (h *TaskHandle[T]) FinalizedBy(target buildable.Buildable) {
	h.exec.addOrdering(Ordering{Kind: FinalizedBy, Target: target})
}

// RunsAfter orders this task after target without pulling target in.
func (h *TaskHandle[T]) RunsAfter(target buildable.Buildable) {
	h.exec.addOrdering(Ordering{Kind: RunsAfter, Target: target})
}

// RunsBefore orders this task before target without pulling target in.
func (h *TaskHandle[T]) RunsBefore(target buildable.Buildable) {
	h.exec.addOrdering(Ordering{Kind: RunsBefore, Target: target})
}

// DoFirst appends an action to run before the task's main work.
func (h *TaskHandle[T]) DoFirst(action Action[T]) {
	h.exec.mu.Lock()
	defer h.exec.mu.Unlock()
	h.exec.doFirst = append(h.exec.doFirst, action)
}

// DoLast appends an action to run after the task's main work.
func (h *TaskHandle[T]) DoLast(action Action[T]) {
	h.exec.mu.Lock()
	defer h.exec.mu.Unlock()
	h.exec.doLast = append(h.exec.doLast, action)
}

// SetWork sets the task's main work closure.
func (h *TaskHandle[T]) SetWork(work Action[T]) {
	h.exec.mu.Lock()
	defer h.exec.mu.Unlock()
	h.exec.work = work
}

// Value returns the task's live, typed value.
func (h *TaskHandle[T]) Value() T {
	h.exec.mu.Lock()
	defer h.exec.mu.Unlock()
	return h.exec.value
}

// Orderings returns the declared orderings, configuring the task first if
// it is still Lazy.
func (h *TaskHandle[T]) Orderings() []Ordering {
	_ = h.Configure()
	return h.exec.orderingsSnapshot()
}

// RunActions configures the task if needed, then drains do_first/work/do_last.
func (h *TaskHandle[T]) RunActions(ctx context.Context) error {
	if err := h.Configure(); err != nil {
		return err
	}
	return h.exec.runActions(ctx)
}

// GetDependencies implements Buildable: a TaskHandle's dependency set is
// itself plus the transitive closure of its DependsOn/FinalizedBy targets
// (the "ordering-closure of the configured task" from spec.md §4.3).
func (h *TaskHandle[T]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	if err := h.Configure(); err != nil {
		return nil, err
	}
	out := buildable.NewTaskSet(h.exec.id)
	for _, o := range h.exec.orderingsSnapshot() {
		if !o.Kind.Pulled() {
			continue
		}
		deps, err := o.Target.GetDependencies(project)
		if err != nil {
			return nil, err
		}
		out.Union(deps)
	}
	return out, nil
}

// Downcast recovers a *TaskHandle[T] from an erased AnyTaskHandle, failing
// with TypeMismatch if h's concrete type isn't *TaskHandle[T].
func Downcast[T any](h AnyTaskHandle) (*TaskHandle[T], error) {
	typed, ok := h.(*TaskHandle[T])
	if !ok {
		return nil, apperr.TypeMismatch(h.TypeName(), "requested type")
	}
	return typed, nil
}
