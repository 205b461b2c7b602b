// Package provider implements C2: the lazy-evaluation graph. A Provider is
// any deferred computation of a value of type T; a Property is a named,
// mutable cell holding Unset or a Provider. Grounded on spec.md §4.2 and, for
// the concurrency discipline, on the teacher's pattern of guarding shared
// mutable registries with sync.RWMutex (engine/autoload.ConfigRegistry).
package provider

import (
	"github.com/assemble-build/assemble/engine/buildable"
)

// Provider is a deferred value of type T. Go has no sum types, so the
// `Option<T>` result of try_get becomes the idiomatic (T, bool) pair.
type Provider[T any] interface {
	// TryGet attempts to compute the value; ok is false if the provider (or
	// any provider it composes) currently has nothing to offer.
	TryGet() (T, bool)
	// GetDependencies forwards to this provider's source(s), implementing
	// Buildable transparently — a Provider is always a Buildable.
	GetDependencies(project buildable.Project) (buildable.TaskSet, error)
	// MissingMessage describes what's missing when TryGet returns false,
	// for use in a FallibleGet error.
	MissingMessage() string
}

// constant wraps a fixed value with no dependencies.
type constant[T any] struct {
	value T
}

// Constant returns a Provider that always yields value.
func Constant[T any](value T) Provider[T] {
	return constant[T]{value: value}
}

func (c constant[T]) TryGet() (T, bool) { return c.value, true }

func (c constant[T]) GetDependencies(_ buildable.Project) (buildable.TaskSet, error) {
	return buildable.NewTaskSet(), nil
}

func (c constant[T]) MissingMessage() string { return "" }

// option wraps a possibly-absent value ("wrap-an-option" in spec.md §4.2).
type option[T any] struct {
	value   T
	present bool
	missing string
}

// FromOption returns a Provider that yields value only when present is true.
func FromOption[T any](value T, present bool, missing string) Provider[T] {
	return option[T]{value: value, present: present, missing: missing}
}

func (o option[T]) TryGet() (T, bool) { return o.value, o.present }

func (o option[T]) GetDependencies(_ buildable.Project) (buildable.TaskSet, error) {
	return buildable.NewTaskSet(), nil
}

func (o option[T]) MissingMessage() string { return o.missing }

// funcProvider adapts an arbitrary no-argument function into a Provider —
// "any function of no arguments producing T (or Option<T>)" in spec.md §4.2.
type funcProvider[T any] struct {
	fn      func() (T, bool)
	deps    buildable.Buildable
	missing string
}

// FromFunc builds a Provider around fn, optionally attributing its
// dependencies to deps (nil means no declared dependencies).
func FromFunc[T any](fn func() (T, bool), deps buildable.Buildable, missing string) Provider[T] {
	return funcProvider[T]{fn: fn, deps: deps, missing: missing}
}

func (f funcProvider[T]) TryGet() (T, bool) { return f.fn() }

func (f funcProvider[T]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	if f.deps == nil {
		return buildable.NewTaskSet(), nil
	}
	return f.deps.GetDependencies(project)
}

func (f funcProvider[T]) MissingMessage() string { return f.missing }
