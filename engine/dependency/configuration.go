package dependency

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// ResolvedConfiguration is the immutable result of resolving a Configuration:
// the union of every resolved dependency's artifacts and file sets. It is
// itself Buildable — its dependency set is the union of the producers of
// every source dependency that declared one.
type ResolvedConfiguration struct {
	Artifacts []string
	Files     []string

	producers buildable.TaskSet
}

// GetDependencies implements Buildable.
func (rc *ResolvedConfiguration) GetDependencies(_ buildable.Project) (buildable.TaskSet, error) {
	out := buildable.NewTaskSet()
	out.Union(rc.producers)
	return out, nil
}

// Configuration is a named, inheritable set of dependencies. It starts
// Unresolved (mutable) and becomes Resolved (immutable, cached) exactly
// once; mutation after resolution fails with ConfigurationAlreadyResolved.
type Configuration struct {
	name string

	mu           sync.Mutex
	dependencies []*Dependency
	parents      []*Configuration

	resolved atomic.Pointer[ResolvedConfiguration]
	group    singleflight.Group

	registries *Container
	cachePath  string
}

// NewConfiguration builds an empty, Unresolved Configuration named name,
// resolved against registries with a download cache rooted at cachePath.
func NewConfiguration(name string, registries *Container, cachePath string) *Configuration {
	return &Configuration{name: name, registries: registries, cachePath: cachePath}
}

// Name returns the configuration's name.
func (c *Configuration) Name() string { return c.name }

// IsResolved reports whether resolved() has been called and completed.
func (c *Configuration) IsResolved() bool {
	return c.resolved.Load() != nil
}

// AddDependency appends d to this configuration's own dependency list.
// Rejected once the configuration has been resolved.
func (c *Configuration) AddDependency(d *Dependency) error {
	if c.IsResolved() {
		return apperr.ConfigurationAlreadyResolved(c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.IsResolved() {
		return apperr.ConfigurationAlreadyResolved(c.name)
	}
	c.dependencies = append(c.dependencies, d)
	return nil
}

// ExtendsFrom appends parent as an ancestor whose dependencies are
// transitively included at resolution time. Rejected once resolved, and
// rejected if it would introduce a cycle among parents.
func (c *Configuration) ExtendsFrom(parent *Configuration) error {
	if c.IsResolved() {
		return apperr.ConfigurationAlreadyResolved(c.name)
	}
	if parent.introducesCycle(c) {
		return apperr.Newf(
			apperr.CodeCycleFound,
			map[string]any{"configuration": c.name, "parent": parent.name},
			"configuration %q extends_from %q would create a cycle", c.name, parent.name,
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.IsResolved() {
		return apperr.ConfigurationAlreadyResolved(c.name)
	}
	c.parents = append(c.parents, parent)
	return nil
}

// introducesCycle reports whether target is reachable from c by following
// parent links — called as parent.introducesCycle(child) before linking.
func (c *Configuration) introducesCycle(target *Configuration) bool {
	if c == target {
		return true
	}
	c.mu.Lock()
	parents := append([]*Configuration{}, c.parents...)
	c.mu.Unlock()
	for _, p := range parents {
		if p.introducesCycle(target) {
			return true
		}
	}
	return false
}

// Resolved resolves the configuration against its registries if it hasn't
// been already, and returns the cached result on every subsequent call
// (physical equality: the same *ResolvedConfiguration pointer).
// Concurrent first calls are collapsed via singleflight so resolution work
// happens exactly once even under a race.
func (c *Configuration) Resolved(ctx context.Context) (*ResolvedConfiguration, error) {
	if rc := c.resolved.Load(); rc != nil {
		return rc, nil
	}

	v, err, _ := c.group.Do(c.name, func() (any, error) {
		if rc := c.resolved.Load(); rc != nil {
			return rc, nil
		}
		rc, err := c.resolve(ctx)
		if err != nil {
			return nil, err
		}
		c.resolved.Store(rc)
		return rc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ResolvedConfiguration), nil
}
