// Package project implements C5: the per-project task namespace and the
// project tree that hierarchically contains it. Grounded on the teacher's
// engine/autoload registry for the RWMutex-guarded-map idiom and on
// engine/domain/workflow.Config for the parent/child, cascading-ownership
// idiom (there: CWD cascaded to nested components; here: children owned by
// their parent project).
package project

import (
	"strings"
	"sync"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/task"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// Project holds a ProjectId, its place in the project tree, its own task
// namespace, a per-project extension map, and its workspace root. It holds
// no registry containers or dependency configurations: those live in
// engine/dependency, which Project does not reference; a Project itself
// only needs to know how to navigate its tree and hold its tasks.
type Project struct {
	id   identifier.ProjectID
	root string // workspace root path on disk

	mu       sync.RWMutex
	parent   *Project // nil for the root project
	children map[string]*Project

	tasks      *TaskContainer
	extensions map[string]any
}

// NewRoot builds the root project of a tree, named root, rooted at
// workspaceRoot on disk. The root project has no parent, per the invariant
// in spec.md §3.
func NewRoot(name, workspaceRoot string) (*Project, error) {
	id, err := identifier.Parse(name)
	if err != nil {
		return nil, err
	}
	return &Project{
		id:         id,
		root:       workspaceRoot,
		children:   make(map[string]*Project),
		tasks:      NewTaskContainer(),
		extensions: make(map[string]any),
	}, nil
}

// NewChild registers a new subproject named name under p, failing if a
// child of that name already exists (the "unique names" invariant).
func (p *Project) NewChild(name string) (*Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.children[name]; exists {
		return nil, apperr.Newf(
			apperr.CodeDuplicateTask,
			map[string]any{"project": name},
			"subproject %q already registered under %s", name, p.id,
		)
	}
	childID, err := identifier.Join(p.id, name)
	if err != nil {
		return nil, err
	}
	child := &Project{
		id:         childID,
		root:       p.root,
		parent:     p,
		children:   make(map[string]*Project),
		tasks:      NewTaskContainer(),
		extensions: make(map[string]any),
	}
	p.children[name] = child
	return child, nil
}

// EnsureChild returns the existing child subproject named name under p, or
// registers and returns a new one if none exists yet. Used by project-tree
// discovery (engine/settings), which declares subprojects by path and must
// create each intermediate segment at most once even when two declared
// paths share a prefix (e.g. "libs:core" and "libs:utils" both need "libs").
func (p *Project) EnsureChild(name string) (*Project, error) {
	p.mu.RLock()
	existing, ok := p.children[name]
	p.mu.RUnlock()
	if ok {
		return existing, nil
	}
	return p.NewChild(name)
}

// ID returns the project's identifier.
func (p *Project) ID() identifier.ProjectID { return p.id }

// Root returns the project's workspace root path.
func (p *Project) Root() string { return p.root }

// Parent returns the owning project, or nil for the root.
func (p *Project) Parent() *Project {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.parent
}

// Tasks returns this project's own TaskContainer.
func (p *Project) Tasks() *TaskContainer { return p.tasks }

// rootProject walks up to the tree's root.
func (p *Project) rootProject() *Project {
	cur := p
	for {
		parent := cur.Parent()
		if parent == nil {
			return cur
		}
		cur = parent
	}
}

// Resolve navigates the project tree per spec.md §4.4's relative-or-absolute
// path scheme:
//   - empty path -> this project
//   - leading ":" -> start at the root
//   - each further segment selects a named child of the current project
//   - a path beginning ":<root-name>" is equivalent to ":"
func (p *Project) Resolve(path string) (*Project, error) {
	if path == "" {
		return p, nil
	}

	cur := p
	segments := strings.Split(path, identifier.Separator)
	if strings.HasPrefix(path, identifier.Separator) {
		cur = p.rootProject()
		segments = segments[1:] // drop the leading empty segment from the split
		if len(segments) > 0 && segments[0] == cur.id.Last() {
			segments = segments[1:]
		}
	}

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		cur.mu.RLock()
		next, ok := cur.children[seg]
		cur.mu.RUnlock()
		if !ok {
			return nil, apperr.Newf(
				apperr.CodeIdentifierNotFound,
				map[string]any{"path": path, "segment": seg},
				"no subproject %q under %s", seg, cur.id,
			)
		}
		cur = next
	}
	return cur, nil
}

// FindTaskID resolves shorthand against this project's own task namespace,
// implementing buildable.Project so a TaskHandle's GetDependencies can
// resolve Buildable targets without importing engine/project back into
// engine/buildable.
func (p *Project) FindTaskID(shorthand string) (identifier.TaskID, error) {
	return p.tasks.FindTaskID(shorthand)
}

// LookupTask finds the AnyTaskHandle for id anywhere in the tree rooted at
// p's root project, by navigating to id's owning project and querying its
// TaskContainer directly. Used by execution graph construction (C8), which
// walks a work stack of TaskIds that may belong to any subproject.
func (p *Project) LookupTask(id identifier.TaskID) (task.AnyTaskHandle, bool) {
	owner, err := p.rootProject().projectByID(id.Parent())
	if err != nil {
		return nil, false
	}
	return owner.tasks.GetTask(id)
}

// projectByID navigates from root (which must itself be a tree root) down
// to the project identified by target, matching segments one at a time.
func (p *Project) projectByID(target identifier.ProjectID) (*Project, error) {
	segments := target.Segments()
	if len(segments) == 0 || segments[0] != p.id.Last() {
		return nil, apperr.IdentifierNotFound(target.String())
	}

	cur := p
	for _, seg := range segments[1:] {
		cur.mu.RLock()
		next, ok := cur.children[seg]
		cur.mu.RUnlock()
		if !ok {
			return nil, apperr.IdentifierNotFound(target.String())
		}
		cur = next
	}
	return cur, nil
}

// SetExtension stores a heterogeneous named object in the project's
// extension map (plugins, front-end-specific state, etc).
func (p *Project) SetExtension(name string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extensions[name] = value
}

// Extension retrieves a previously stored extension object.
func (p *Project) Extension(name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.extensions[name]
	return v, ok
}
