// Package graph implements C8: the execution graph built incrementally by
// configuring tasks reachable from a requested set, following DependsOn and
// FinalizedBy edges (RunsAfter/RunsBefore order tasks already in the graph
// without pulling new ones in). Grounded on spec.md §4.7; the adjacency
// shape (forward edges plus an edge list) follows the upstream/downstream
// map idiom common to the DAG schedulers in the wider example pack.
package graph

import (
	"sync"

	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/task"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// Edge is one declared ordering between two configured tasks.
type Edge struct {
	From identifier.TaskID
	To   identifier.TaskID
	Kind task.OrderingKind
}

// Graph is the directed graph of every configured task reachable from a
// requested set, plus every ordering edge declared while configuring them.
type Graph struct {
	mu    sync.Mutex
	nodes map[string]task.AnyTaskHandle
	order []string // node insertion order, for deterministic traversal
	edges []Edge
}

func newGraph() *Graph {
	return &Graph{nodes: make(map[string]task.AnyTaskHandle)}
}

// Nodes returns every node's TaskId, in the order each was first reached.
func (g *Graph) Nodes() []identifier.TaskID {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]identifier.TaskID, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.nodes[key].ID())
	}
	return out
}

// Handle returns the AnyTaskHandle for a node, if present.
func (g *Graph) Handle(id identifier.TaskID) (task.AnyTaskHandle, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.nodes[id.String()]
	return h, ok
}

// Edges returns every declared ordering edge, in the order they were added.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edge{}, g.edges...)
}

func (g *Graph) addNode(h task.AnyTaskHandle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := h.ID().String()
	if _, exists := g.nodes[key]; exists {
		return false
	}
	g.nodes[key] = h
	g.order = append(g.order, key)
	return true
}

func (g *Graph) addEdge(e Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = append(g.edges, e)
}

// Build runs the incremental construction algorithm from spec.md §4.7:
// resolve each requested shorthand against proj, then repeatedly pop a
// TaskId off a work stack, configure it if needed, record its node and
// every declared ordering as an edge, and push DependsOn/FinalizedBy
// targets (but not RunsAfter/RunsBefore targets) back onto the stack.
func Build(proj *project.Project, requested []string) (*Graph, error) {
	g := newGraph()

	stack := make([]identifier.TaskID, 0, len(requested))
	for _, shorthand := range requested {
		id, err := proj.FindTaskID(shorthand)
		if err != nil {
			return nil, err
		}
		stack = append(stack, id)
	}

	configured := make(map[string]bool)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := id.String()
		if configured[key] {
			continue
		}
		configured[key] = true

		handle, ok := proj.LookupTask(id)
		if !ok {
			return nil, apperr.IdentifierNotFound(key)
		}
		g.addNode(handle)

		orderings := handle.Orderings()
		for _, o := range orderings {
			targets, err := o.Target.GetDependencies(proj)
			if err != nil {
				return nil, err
			}
			for _, targetID := range targets.Slice() {
				g.addEdge(Edge{From: id, To: targetID, Kind: o.Kind})
				if o.Kind.Pulled() && !configured[targetID.String()] {
					stack = append(stack, targetID)
				}
			}
		}
	}

	return g, nil
}

// ensure buildable.Project is satisfied by *project.Project at compile time,
// since Build threads proj through as that interface to GetDependencies.
var _ buildable.Project = (*project.Project)(nil)
