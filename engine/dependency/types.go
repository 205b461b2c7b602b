// Package dependency implements C6: named dependency sets with inheritance,
// resolved against registries that advertise which DependencyTypes they
// support. Grounded on spec.md §4.5 and, for the registry-of-registries
// insertion-order-preserving lookup, on the teacher's
// engine/autoload.ConfigRegistry map-of-maps idiom.
package dependency

import (
	"context"

	"github.com/assemble-build/assemble/engine/buildable"
)

// Type is a domain tag describing a category of dependency a Registry may
// support (e.g. "crate", "file", "project", "remote").
type Type struct {
	Name     string
	Category string
	Globs    []string
}

// ResolvedDependency is the output of a successful TryResolve: the set of
// artifact identifiers and the concrete file paths they materialized to.
type ResolvedDependency struct {
	Artifacts []string
	Files     []string
}

// Resolver tries to resolve a Dependency against a Registry, writing any
// downloaded files under cachePath. Registries that fetch over the network
// should return a go-retry RetryableError for transient failures so the
// resolution loop's backoff policy applies; a non-retryable error moves on
// to the next registry immediately.
type Resolver interface {
	TryResolve(ctx context.Context, dep *Dependency, cachePath string) (*ResolvedDependency, error)
}

// Dependency is an identified, typed reference to something a Configuration
// needs. Buildable, if set, is threaded through so the Configuration that
// declares this Dependency also reports the TaskIds that produce it.
type Dependency struct {
	ID        string
	Type      Type
	Buildable buildable.Buildable // optional; e.g. a TaskHandle whose output this dependency is

	// selfResolver, when set, resolves this dependency without consulting
	// any registry (SelfResolvingDependency / raw file dependencies).
	selfResolver Resolver
}

// Types returns the dependency types this Dependency must be resolved
// against; spec.md's resolution algorithm intersects registries "across
// d.types()", plural, so this returns a slice even though every Dependency
// built by the constructors here carries exactly one Type.
func (d *Dependency) Types() []Type {
	return []Type{d.Type}
}

// NewDependency builds a Dependency of the given type, with no attached
// Buildable provenance.
func NewDependency(id string, typ Type) *Dependency {
	return &Dependency{ID: id, Type: typ}
}

// NewBuiltDependency builds a Dependency that also reports producer
// TaskIds via the given Buildable (e.g. a task-output dependency).
func NewBuiltDependency(id string, typ Type, built buildable.Buildable) *Dependency {
	return &Dependency{ID: id, Type: typ, Buildable: built}
}

// fileType is the well-known category for SelfResolvingDependency / raw
// file dependencies, per the original implementation's
// dependencies/self_resolving.rs, folded into C6's DependencyType model.
var fileType = Type{Name: "file", Category: "file"}

// NewFileDependency builds a dependency that resolves to a fixed set of
// already-known file paths without consulting any registry — the Go
// rendition of SelfResolvingDependency.
func NewFileDependency(paths ...string) *Dependency {
	return &Dependency{
		ID:           "file:" + joinPaths(paths),
		Type:         fileType,
		selfResolver: selfResolvingFiles{paths: paths},
	}
}

func joinPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += ";"
		}
		out += p
	}
	return out
}

// selfResolvingFiles, set on a Dependency built by NewFileDependency,
// lets the resolution loop short-circuit registry lookup entirely.
type selfResolvingFiles struct {
	paths []string
}

func (s selfResolvingFiles) TryResolve(_ context.Context, dep *Dependency, _ string) (*ResolvedDependency, error) {
	return &ResolvedDependency{Artifacts: []string{dep.ID}, Files: s.paths}, nil
}
