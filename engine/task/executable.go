package task

import (
	"context"
	"sync"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// State is a TaskHandle's position in its Lazy -> Configured -> Terminal
// lifecycle (spec.md §4.4's "one-shot actions queried flag" plus the
// register/configure/execute phase discipline from §5).
type State int

const (
	// Lazy means the task's configure closure, if any, has not yet run.
	Lazy State = iota
	// Configured means configure has run; orderings and actions are fixed
	// and the task is ready for RunActions.
	Configured
	// Terminal means RunActions has already drained the action queues;
	// the handle may not be executed again.
	Terminal
)

// Action is a unit of work closing over a task's live value, run as part of
// do_first, the main work, or do_last.
type Action[T any] func(ctx context.Context, value T) error

// Configurator is the closure captured at register_task_with time; it
// receives the handle so it can declare orderings, register actions, and
// set the work closure.
type Configurator[T any] func(h *TaskHandle[T]) error

// Executable is the live, configured task object shared by every clone of a
// TaskHandle[T]. spec.md calls for a weak back-reference to the owning
// Project to avoid retain cycles; Go's garbage collector already handles
// reference cycles, so a plain pointer is the idiomatic rendition here —
// the "weak" requirement is a Rust Arc<RwLock<..>> concern that doesn't
// apply to a tracing GC.
type Executable[T any] struct {
	mu sync.Mutex

	id       identifier.TaskID
	typeName string
	project  buildable.Project

	state     State
	configure Configurator[T]

	value T

	work     Action[T]
	doFirst  []Action[T]
	doLast   []Action[T]
	orderings []Ordering

	actionsQueried bool
}

// newExecutable builds an Executable in the Lazy state.
func newExecutable[T any](
	id identifier.TaskID,
	typeName string,
	project buildable.Project,
	value T,
	configure Configurator[T],
) *Executable[T] {
	return &Executable[T]{
		id:        id,
		typeName:  typeName,
		project:   project,
		value:     value,
		configure: configure,
	}
}

// ensureConfigured runs the captured configurator exactly once, transitioning
// Lazy -> Configured. Safe to call repeatedly and concurrently.
func (e *Executable[T]) ensureConfigured(h *TaskHandle[T]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Lazy {
		return nil
	}
	if e.configure != nil {
		if err := e.configure(h); err != nil {
			return err
		}
	}
	e.state = Configured
	return nil
}

// addOrdering records a declared edge. Valid any time before Terminal.
func (e *Executable[T]) addOrdering(o Ordering) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderings = append(e.orderings, o)
}

// orderingsSnapshot returns a copy of the declared orderings.
func (e *Executable[T]) orderingsSnapshot() []Ordering {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Ordering, len(e.orderings))
	copy(out, e.orderings)
	return out
}

// runActions drains do_first, work, do_last in order, exactly once.
func (e *Executable[T]) runActions(ctx context.Context) error {
	e.mu.Lock()
	if e.actionsQueried {
		e.mu.Unlock()
		return apperr.Newf(
			apperr.CodeTaskFailed,
			map[string]any{"task_id": e.id.String()},
			"task %s actions already consumed", e.id.String(),
		)
	}
	e.actionsQueried = true
	doFirst := append([]Action[T]{}, e.doFirst...)
	doLast := append([]Action[T]{}, e.doLast...)
	work := e.work
	value := e.value
	e.mu.Unlock()

	queues := make([][]Action[T], 0, 3)
	queues = append(queues, doFirst)
	if work != nil {
		queues = append(queues, []Action[T]{work})
	}
	queues = append(queues, doLast)

stop:
	for _, queue := range queues {
		for _, action := range queue {
			err := action(ctx, value)
			switch {
			case err == nil:
				continue
			case apperr.IsControlFlowCode(err, apperr.CodeStopAction):
				// Skip only this action; the queue continues.
				continue
			case apperr.IsControlFlowCode(err, apperr.CodeStopTask):
				// Early, successful termination: no further actions run.
				break stop
			default:
				e.mu.Lock()
				e.state = Terminal
				e.mu.Unlock()
				return err
			}
		}
	}

	e.mu.Lock()
	e.state = Terminal
	e.mu.Unlock()
	return nil
}
