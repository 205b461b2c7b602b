// Package buildable implements C3: anything that can report the set of
// TaskIds that must run to produce it. Grounded on the teacher's
// engine/autoload registry pattern for aggregating heterogeneous named
// things behind one small interface, generalized to dependency sets instead
// of config entries.
package buildable

import (
	"github.com/assemble-build/assemble/engine/identifier"
)

// TaskSet is a deduplicated set of TaskIDs, keyed by their string form since
// identifier.ID is not itself comparable as a map key candidate beyond that
// (it embeds a slice).
type TaskSet map[string]identifier.TaskID

// NewTaskSet builds a TaskSet from zero or more TaskIDs.
func NewTaskSet(ids ...identifier.TaskID) TaskSet {
	s := make(TaskSet, len(ids))
	for _, id := range ids {
		s[id.String()] = id
	}
	return s
}

// Add inserts id into the set.
func (s TaskSet) Add(id identifier.TaskID) {
	s[id.String()] = id
}

// Union merges other into s in place and returns s.
func (s TaskSet) Union(other TaskSet) TaskSet {
	for k, v := range other {
		s[k] = v
	}
	return s
}

// Slice returns the set's members in no particular order.
func (s TaskSet) Slice() []identifier.TaskID {
	out := make([]identifier.TaskID, 0, len(s))
	for _, id := range s {
		out = append(out, id)
	}
	return out
}

// Project is the minimal surface GetDependencies needs from a project tree:
// enough to resolve a TaskHandle's own ordering closure. Defined here (not
// imported from engine/project) to avoid a C3<->C5 import cycle; engine/project.Project
// satisfies it structurally.
type Project interface {
	FindTaskID(shorthand string) (identifier.TaskID, error)
}

// Buildable is any value that can report the set of TaskIds that must run to
// produce it.
type Buildable interface {
	GetDependencies(project Project) (TaskSet, error)
}

// Func adapts a plain function into a Buildable, mirroring how Provider
// values and TaskHandles each implement GetDependencies differently but
// share this one-method shape.
type Func func(project Project) (TaskSet, error)

// GetDependencies implements Buildable.
func (f Func) GetDependencies(project Project) (TaskSet, error) {
	return f(project)
}

// Container aggregates the dependency sets of its members — the composition
// node named BuiltByContainer in spec.md §4.3.
type Container struct {
	Members []Buildable
}

// NewContainer builds a Container over members.
func NewContainer(members ...Buildable) *Container {
	return &Container{Members: members}
}

// GetDependencies unions every member's dependency set.
func (c *Container) GetDependencies(project Project) (TaskSet, error) {
	out := NewTaskSet()
	for _, m := range c.Members {
		deps, err := m.GetDependencies(project)
		if err != nil {
			return nil, err
		}
		out.Union(deps)
	}
	return out, nil
}

// BuiltBy tags an arbitrary value with its explicit producer set, so a
// task's output value can be threaded into a downstream task's input while
// still reporting who must run first.
type BuiltBy[T any] struct {
	Value     T
	Producers TaskSet
}

// NewBuiltBy wraps value with the TaskIds that produce it.
func NewBuiltBy[T any](value T, producers ...identifier.TaskID) BuiltBy[T] {
	return BuiltBy[T]{Value: value, Producers: NewTaskSet(producers...)}
}

// GetDependencies returns the tagged producer set, ignoring project — the
// producers were fixed at construction time.
func (b BuiltBy[T]) GetDependencies(_ Project) (TaskSet, error) {
	return b.Producers, nil
}

// Self returns a Buildable whose dependency set is exactly {id} — the
// built-in instance "a TaskId returns its own singleton" from spec.md §4.3.
func Self(id identifier.TaskID) Buildable {
	return Func(func(_ Project) (TaskSet, error) {
		return NewTaskSet(id), nil
	})
}
