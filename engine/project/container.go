package project

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/task"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// TaskContainer holds a project's own task namespace: one AnyTaskHandle per
// registered TaskId, guarded by a single RWMutex so lookups (many, from the
// configuration walk and the CLI's shorthand resolution) never block each
// other while registration (rare, one-time) takes the write half. Grounded
// on the teacher's engine/autoload.ConfigRegistry, generalized from a
// type->id->entry map to a flat id->handle map since a project has a single
// task namespace rather than several resource kinds.
type TaskContainer struct {
	mu    sync.RWMutex
	tasks map[string]task.AnyTaskHandle
	order []string // insertion order, for deterministic GetTasks/find_task_id iteration
}

// NewTaskContainer builds an empty TaskContainer.
func NewTaskContainer() *TaskContainer {
	return &TaskContainer{tasks: make(map[string]task.AnyTaskHandle)}
}

// RegisterTask registers a plain (unconfigured) task under name within
// owner, failing with InvalidIdentifier or DuplicateTask.
func RegisterTask[T any](c *TaskContainer, owner *Project, name string, value T) (*task.TaskHandle[T], error) {
	return RegisterTaskWith(c, owner, name, value, nil)
}

// RegisterTaskWith registers a task with a configure closure deferred until
// the task is first reached during graph construction (C8).
func RegisterTaskWith[T any](
	c *TaskContainer,
	owner *Project,
	name string,
	value T,
	configure task.Configurator[T],
) (*task.TaskHandle[T], error) {
	id, err := identifier.Join(owner.ID(), name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := id.String()
	if _, exists := c.tasks[key]; exists {
		return nil, apperr.DuplicateTask(key)
	}

	typeName := typeNameOf[T]()
	handle := task.NewHandle(id, typeName, owner, value, configure)
	c.tasks[key] = handle
	c.order = append(c.order, key)
	return handle, nil
}

// GetTask returns the erased handle registered under id, if any.
func (c *TaskContainer) GetTask(id identifier.TaskID) (task.AnyTaskHandle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.tasks[id.String()]
	return h, ok
}

// GetTasks returns every registered TaskId, in registration order.
func (c *TaskContainer) GetTasks() []identifier.TaskID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]identifier.TaskID, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, identifier.MustParse(key))
	}
	return out
}

// FindTaskID resolves a (possibly ambiguous) shorthand to exactly one
// TaskId, failing with TooManyIdentifiersFound or NoIdentifiersFound.
func (c *TaskContainer) FindTaskID(shorthand string) (identifier.TaskID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, err := identifier.Parse(shorthand); err == nil {
		if _, ok := c.tasks[id.String()]; ok {
			return id, nil
		}
	}

	matches := make([]identifier.TaskID, 0, 1)
	for _, key := range c.order {
		full := identifier.MustParse(key)
		if full.IsShorthand(shorthand) {
			matches = append(matches, full)
		}
	}
	switch len(matches) {
	case 0:
		return identifier.TaskID{}, apperr.NoIdentifiersFound(shorthand)
	case 1:
		return matches[0], nil
	default:
		strs := make([]string, len(matches))
		for i, m := range matches {
			strs[i] = m.String()
		}
		sort.Strings(strs)
		return identifier.TaskID{}, apperr.TooManyIdentifiersFound(shorthand, strs)
	}
}

// count reports the number of registered tasks (test helper).
func (c *TaskContainer) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// typeNameOf derives a readable type name for T via the zero-value's dynamic
// type; generic type parameters have no runtime reflect.Type of their own,
// so this is computed once per instantiation through a throwaway value.
func typeNameOf[T any]() string {
	var zero T
	return trimPkgPrefix(fmt.Sprintf("%T", zero))
}

func trimPkgPrefix(s string) string {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
