package provider

import "github.com/assemble-build/assemble/engine/buildable"

// mapProvider applies f to src's value, short-circuiting on absence.
type mapProvider[T, U any] struct {
	src Provider[T]
	f   func(T) U
}

// Map transforms a Provider[T] into a Provider[U].
func Map[T, U any](src Provider[T], f func(T) U) Provider[U] {
	return mapProvider[T, U]{src: src, f: f}
}

func (m mapProvider[T, U]) TryGet() (U, bool) {
	v, ok := m.src.TryGet()
	if !ok {
		var zero U
		return zero, false
	}
	return m.f(v), true
}

func (m mapProvider[T, U]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	return m.src.GetDependencies(project)
}

func (m mapProvider[T, U]) MissingMessage() string { return m.src.MissingMessage() }

// flatMapProvider applies f to src's value to obtain the provider to
// actually evaluate.
type flatMapProvider[T, U any] struct {
	src Provider[T]
	f   func(T) Provider[U]
}

// FlatMap is Map where f itself returns a Provider, collapsing nesting.
func FlatMap[T, U any](src Provider[T], f func(T) Provider[U]) Provider[U] {
	return flatMapProvider[T, U]{src: src, f: f}
}

func (m flatMapProvider[T, U]) TryGet() (U, bool) {
	v, ok := m.src.TryGet()
	if !ok {
		var zero U
		return zero, false
	}
	return m.f(v).TryGet()
}

// GetDependencies unions src's dependencies with the inner provider's
// dependencies when the inner provider is computable; if src has nothing to
// offer yet, only src's (static) dependencies are reported.
func (m flatMapProvider[T, U]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	deps, err := m.src.GetDependencies(project)
	if err != nil {
		return nil, err
	}
	v, ok := m.src.TryGet()
	if !ok {
		return deps, nil
	}
	innerDeps, err := m.f(v).GetDependencies(project)
	if err != nil {
		return nil, err
	}
	return deps.Union(innerDeps), nil
}

func (m flatMapProvider[T, U]) MissingMessage() string { return m.src.MissingMessage() }

// zipProvider combines two providers; absence of either propagates.
type zipProvider[A, B, R any] struct {
	a Provider[A]
	b Provider[B]
	f func(A, B) R
}

// Zip combines a and b with f; TryGet returns false if either a or b does.
func Zip[A, B, R any](a Provider[A], b Provider[B], f func(A, B) R) Provider[R] {
	return zipProvider[A, B, R]{a: a, b: b, f: f}
}

func (z zipProvider[A, B, R]) TryGet() (R, bool) {
	va, ok := z.a.TryGet()
	if !ok {
		var zero R
		return zero, false
	}
	vb, ok := z.b.TryGet()
	if !ok {
		var zero R
		return zero, false
	}
	return z.f(va, vb), true
}

func (z zipProvider[A, B, R]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	aDeps, err := z.a.GetDependencies(project)
	if err != nil {
		return nil, err
	}
	bDeps, err := z.b.GetDependencies(project)
	if err != nil {
		return nil, err
	}
	return aDeps.Union(bDeps), nil
}

func (z zipProvider[A, B, R]) MissingMessage() string {
	if msg := z.a.MissingMessage(); msg != "" {
		return msg
	}
	return z.b.MissingMessage()
}

// flattenProvider collapses a Provider of Provider[T] into a Provider[T].
type flattenProvider[T any] struct {
	src Provider[Provider[T]]
}

// Flatten unwraps a Provider[Provider[T]].
func Flatten[T any](src Provider[Provider[T]]) Provider[T] {
	return flattenProvider[T]{src: src}
}

func (f flattenProvider[T]) TryGet() (T, bool) {
	inner, ok := f.src.TryGet()
	if !ok {
		var zero T
		return zero, false
	}
	return inner.TryGet()
}

func (f flattenProvider[T]) GetDependencies(project buildable.Project) (buildable.TaskSet, error) {
	deps, err := f.src.GetDependencies(project)
	if err != nil {
		return nil, err
	}
	inner, ok := f.src.TryGet()
	if !ok {
		return deps, nil
	}
	innerDeps, err := inner.GetDependencies(project)
	if err != nil {
		return nil, err
	}
	return deps.Union(innerDeps), nil
}

func (f flattenProvider[T]) MissingMessage() string { return f.src.MissingMessage() }
