package provider

import (
	"sync"

	"github.com/assemble-build/assemble/engine/buildable"
)

// VecProp is an ordered, list-shaped property whose content is the
// concatenation of its sub-providers' slice outputs, per spec.md §4.2.
type VecProp[T any] struct {
	mu        sync.RWMutex
	providers []Provider[[]T]
}

// NewVecProp builds an empty VecProp.
func NewVecProp[T any]() *VecProp[T] {
	return &VecProp[T]{}
}

// Push appends a single value.
func (v *VecProp[T]) Push(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.providers = append(v.providers, Constant([]T{value}))
}

// PushAll appends every value in values, in order.
func (v *VecProp[T]) PushAll(values []T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.providers = append(v.providers, Constant(values))
}

// Extend appends a Provider of a slice, evaluated lazily like any other
// sub-provider.
func (v *VecProp[T]) Extend(p Provider[[]T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.providers = append(v.providers, p)
}

// From resets the VecProp's content to exactly p's output.
func (v *VecProp[T]) From(p Provider[[]T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.providers = []Provider[[]T]{p}
}

// Clear removes every sub-provider.
func (v *VecProp[T]) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.providers = nil
}

// TryGet concatenates every sub-provider's output, in order. It returns
// false if any sub-provider returns false.
func (v *VecProp[T]) TryGet() ([]T, bool) {
	v.mu.RLock()
	providers := make([]Provider[[]T], len(v.providers))
	copy(providers, v.providers)
	v.mu.RUnlock()

	out := make([]T, 0, len(providers))
	for _, p := range providers {
		chunk, ok := p.TryGet()
		if !ok {
			return nil, false
		}
		out = append(out, chunk...)
	}
	return out, true
}

// GetDependencies unions every sub-provider's dependencies.
func (v *VecProp[T]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	v.mu.RLock()
	providers := make([]Provider[[]T], len(v.providers))
	copy(providers, v.providers)
	v.mu.RUnlock()

	out := buildable.NewTaskSet()
	for _, p := range providers {
		deps, err := p.GetDependencies(project)
		if err != nil {
			return nil, err
		}
		out.Union(deps)
	}
	return out, nil
}
