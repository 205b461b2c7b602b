package dependency

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// transitiveDependencies gathers (this, parents, parents-of-parents, ...)
// dependency lists in insertion order, keeping only the first occurrence of
// each dependency identifier — step 1 of the resolution algorithm in
// spec.md §4.5.
func (c *Configuration) transitiveDependencies() []*Dependency {
	seen := make(map[string]struct{})
	out := make([]*Dependency, 0)

	var visit func(cfg *Configuration)
	visit = func(cfg *Configuration) {
		cfg.mu.Lock()
		deps := append([]*Dependency{}, cfg.dependencies...)
		parents := append([]*Configuration{}, cfg.parents...)
		cfg.mu.Unlock()

		for _, d := range deps {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d)
		}
		for _, p := range parents {
			visit(p)
		}
	}
	visit(c)
	return out
}

// resolve runs the full resolution algorithm and builds the
// ResolvedConfiguration, but does not cache it — the caller (Resolved)
// handles memoization.
func (c *Configuration) resolve(ctx context.Context) (*ResolvedConfiguration, error) {
	deps := c.transitiveDependencies()

	artifacts := make([]string, 0, len(deps))
	files := make([]string, 0, len(deps))
	producers := buildable.NewTaskSet()

	for _, d := range deps {
		resolved, err := c.resolveOne(ctx, d)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, resolved.Artifacts...)
		files = append(files, resolved.Files...)

		if d.Buildable != nil {
			// nil project: every Buildable wired into a Dependency here
			// (TaskId/TaskHandle singletons, BuiltBy tags) reports its
			// producers without needing project-relative shorthand lookup.
			depProducers, err := d.Buildable.GetDependencies(nil)
			if err != nil {
				return nil, err
			}
			producers.Union(depProducers)
		}
	}

	return &ResolvedConfiguration{Artifacts: artifacts, Files: files, producers: producers}, nil
}

// resolveOne resolves a single dependency: self-resolving dependencies
// (raw files) skip the registry lookup entirely; everything else tries the
// registries supporting all of d's types, in insertion order, retrying each
// registry against transient errors before moving to the next.
func (c *Configuration) resolveOne(ctx context.Context, d *Dependency) (*ResolvedDependency, error) {
	if d.selfResolver != nil {
		return d.selfResolver.TryResolve(ctx, d, c.cachePath)
	}

	registries := c.registries.Intersection(d.Types())
	var lastErr error
	for _, reg := range registries {
		resolved, err := c.tryResolveWithRetry(ctx, reg, d)
		if err == nil {
			return resolved, nil
		}
		lastErr = err
	}
	return nil, apperr.AcquisitionError(d.ID, lastErr)
}

// tryResolveWithRetry retries reg.Resolver.TryResolve with exponential
// backoff while the resolver reports the failure as transient (via
// retry.RetryableError), capped at 3 additional attempts.
func (c *Configuration) tryResolveWithRetry(ctx context.Context, reg *Registry, d *Dependency) (*ResolvedDependency, error) {
	if reg.Resolver == nil {
		return nil, apperr.Newf(
			apperr.CodeAcquisitionError,
			map[string]any{"registry": reg.Name},
			"registry %q has no resolver configured", reg.Name,
		)
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	var resolved *ResolvedDependency
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := reg.Resolver.TryResolve(ctx, d, c.cachePath)
		if err != nil {
			return err
		}
		resolved = r
		return nil
	})
	return resolved, err
}
