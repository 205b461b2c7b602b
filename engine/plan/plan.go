// Package plan implements C9: the Execution Plan derived from a C8
// Execution Graph. Edge weights normalize to RunAfter/Finalizer, cycles are
// rejected via Tarjan's SCC, and redundant RunAfter edges implied by a
// longer path are removed by transitive reduction. Grounded on spec.md §3's
// Execution Plan definition and §4.8.
package plan

import (
	"sort"

	"github.com/assemble-build/assemble/engine/graph"
	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/task"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// EdgeKind is one of the two normalized edge weights a Plan's edges carry.
type EdgeKind int

const (
	// RunAfter(From, To) means From must not start until To has finished.
	RunAfter EdgeKind = iota
	// Finalizer(From, To) means From runs after To terminates, regardless
	// of To's outcome.
	Finalizer
)

// Edge is one normalized ordering requirement within the plan.
type Edge struct {
	From identifier.TaskID
	To   identifier.TaskID
	Kind EdgeKind
}

// Plan is the critical-path subgraph of an Execution Graph: its nodes are
// exactly the graph's nodes (the requested tasks plus everything pulled in
// by DependsOn/FinalizedBy), and its edges are the graph's orderings
// normalized to RunAfter/Finalizer, restricted to edges between two plan
// nodes, and transitively reduced.
// Plan is built once by Build and never mutated afterward, so its read
// accessors need no synchronization of their own.
type Plan struct {
	order []string // node insertion order, inherited from the graph
	nodes map[string]task.AnyTaskHandle

	// after, keyed by node, lists the nodes that must finish first
	// (the RunAfter predecessors), post-reduction.
	after map[string][]identifier.TaskID
	// finalizers, keyed by node, lists the nodes it finalizes: it runs
	// after each of them terminates, regardless of outcome.
	finalizers map[string][]identifier.TaskID
}

// Nodes returns every plan node's TaskId, in the graph's discovery order.
func (p *Plan) Nodes() []identifier.TaskID {
	out := make([]identifier.TaskID, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, p.nodes[key].ID())
	}
	return out
}

// Handle returns the AnyTaskHandle for a plan node.
func (p *Plan) Handle(id identifier.TaskID) (task.AnyTaskHandle, bool) {
	h, ok := p.nodes[id.String()]
	return h, ok
}

// Predecessors returns the TaskIds that must finish before id may start,
// after transitive reduction.
func (p *Plan) Predecessors(id identifier.TaskID) []identifier.TaskID {
	return append([]identifier.TaskID{}, p.after[id.String()]...)
}

// Finalizers returns the TaskIds that id finalizes: id runs after each of
// them terminates, regardless of their outcome.
func (p *Plan) Finalizers(id identifier.TaskID) []identifier.TaskID {
	return append([]identifier.TaskID{}, p.finalizers[id.String()]...)
}

// Build derives a Plan from g. Fails with CycleFound if the normalized
// RunAfter/Finalizer graph is not a DAG.
func Build(g *graph.Graph) (*Plan, error) {
	nodeIDs := g.Nodes()
	inPlan := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		inPlan[id.String()] = true
	}

	runAfter := make(map[string]map[string]bool) // from -> set of to
	finalizer := make(map[string]map[string]bool)
	addEdge := func(m map[string]map[string]bool, from, to string) {
		if m[from] == nil {
			m[from] = make(map[string]bool)
		}
		m[from][to] = true
	}

	for _, e := range g.Edges() {
		from, to, kind, ok := normalize(e)
		if !ok {
			continue
		}
		if !inPlan[from.String()] || !inPlan[to.String()] {
			continue // outside the critical path; spec.md §4.7 step 3
		}
		switch kind {
		case RunAfter:
			addEdge(runAfter, from.String(), to.String())
		case Finalizer:
			addEdge(finalizer, from.String(), to.String())
		}
	}

	allEdges := make(map[string]map[string]bool, len(runAfter))
	for from, tos := range runAfter {
		allEdges[from] = tos
	}
	for from, tos := range finalizer {
		if allEdges[from] == nil {
			allEdges[from] = make(map[string]bool)
		}
		for to := range tos {
			allEdges[from][to] = true
		}
	}

	keys := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		keys = append(keys, id.String())
	}
	if cyclic := findCycle(keys, allEdges); cyclic != nil {
		return nil, apperr.CycleFound(cyclic)
	}

	reducedRunAfter := transitiveReduce(keys, runAfter)

	p := &Plan{
		nodes:      make(map[string]task.AnyTaskHandle, len(nodeIDs)),
		after:      make(map[string][]identifier.TaskID),
		finalizers: make(map[string][]identifier.TaskID),
	}
	for _, id := range nodeIDs {
		key := id.String()
		h, _ := g.Handle(id)
		p.nodes[key] = h
		p.order = append(p.order, key)
	}
	for from, tos := range reducedRunAfter {
		for to := range tos {
			p.after[from] = append(p.after[from], p.nodes[to].ID())
		}
		sortByString(p.after[from])
	}
	for from, tos := range finalizer {
		for to := range tos {
			p.finalizers[from] = append(p.finalizers[from], p.nodes[to].ID())
		}
		sortByString(p.finalizers[from])
	}

	return p, nil
}

func sortByString(ids []identifier.TaskID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

// normalize converts one graph.Edge (DependsOn/FinalizedBy/RunsAfter/
// RunsBefore) into a plan Edge, per spec.md §3's normalization rules.
// RunsBefore(X,Y) becomes RunAfter(Y,X); FinalizedBy(X,Y) becomes
// Finalizer(Y,X); DependsOn and RunsAfter already mean "From runs after
// To" and pass through unchanged.
func normalize(e graph.Edge) (from, to identifier.TaskID, kind EdgeKind, ok bool) {
	switch e.Kind {
	case task.DependsOn, task.RunsAfter:
		return e.From, e.To, RunAfter, true
	case task.RunsBefore:
		return e.To, e.From, RunAfter, true
	case task.FinalizedBy:
		return e.To, e.From, Finalizer, true
	default:
		return identifier.TaskID{}, identifier.TaskID{}, 0, false
	}
}
