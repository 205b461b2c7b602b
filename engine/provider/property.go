package provider

import (
	"sync"
	"sync/atomic"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// cell holds a Property's internal Unset | Provided(p) state. Go has no sum
// types, so this is the two-field struct spec.md §4.2 calls for explicitly.
type cell[T any] struct {
	has      bool
	provider Provider[T]
}

// Property is a named, typed, mutable holder for a deferred value. It is
// shared rather than exclusively owned: many concurrent TryGet calls are
// safe, and at most one SetWith proceeds at a time, per the read/write
// discipline in spec.md §4.2.
type Property[T any] struct {
	name string

	mu    sync.RWMutex
	state cell[T]
	// poisoned is independent of mu: a panic recovered while mu is only
	// read-locked (a reader evaluating a misbehaving provider) still needs
	// to mark the property poisoned without upgrading to a write lock.
	poisoned atomic.Bool
}

// NewProperty builds an Unset Property identified by name, used in error
// messages (PropertyNotSet, LockPoisonError).
func NewProperty[T any](name string) *Property[T] {
	return &Property[T]{name: name}
}

// Set assigns a constant value, equivalent to SetWith(Constant(v)).
func (p *Property[T]) Set(v T) error {
	return p.SetWith(Constant(v))
}

// SetWith assigns src as the property's provider. It recovers a panicking
// writer, poisoning the property so every subsequent access fails with
// LockPoisonError rather than leaving readers blocked forever.
func (p *Property[T]) SetWith(src Provider[T]) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.poisoned.Load() {
		return apperr.LockPoisonError(p.name)
	}

	defer func() {
		if r := recover(); r != nil {
			p.poisoned.Store(true)
			err = apperr.LockPoisonError(p.name)
		}
	}()

	p.state = cell[T]{has: true, provider: src}
	return nil
}

// TryGet attempts to read the current value. ok is false if the property is
// Unset, poisoned, or its provider currently has nothing to offer. A panic
// from the underlying provider poisons the property instead of crashing the
// reading goroutine, mirroring a poisoned RwLock.
func (p *Property[T]) TryGet() (v T, ok bool) {
	p.mu.RLock()
	has := p.state.has
	src := p.state.provider
	p.mu.RUnlock()

	var zero T
	if p.poisoned.Load() || !has {
		return zero, false
	}

	defer func() {
		if r := recover(); r != nil {
			p.poisoned.Store(true)
			v, ok = zero, false
		}
	}()
	return src.TryGet()
}

// FallibleGet reads the current value or fails with PropertyNotSet. Reading
// an Unset property is always a well-defined error, never a panic.
func (p *Property[T]) FallibleGet() (T, error) {
	v, ok := p.TryGet()
	if !ok {
		var zero T
		return zero, apperr.PropertyNotSet(p.name)
	}
	return v, nil
}

// GetDependencies forwards to the current provider, implementing Buildable.
func (p *Property[T]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	p.mu.RLock()
	has := p.state.has
	src := p.state.provider
	p.mu.RUnlock()

	if p.poisoned.Load() || !has {
		return buildable.NewTaskSet(), nil
	}
	return src.GetDependencies(project)
}

// MissingMessage describes what's missing when the property has no value.
func (p *Property[T]) MissingMessage() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.state.has {
		return "property " + p.name + " has no value"
	}
	return p.state.provider.MissingMessage()
}

// Name returns the property's declared name.
func (p *Property[T]) Name() string { return p.name }
