package plan

// transitiveReduce drops every RunAfter edge (u, w) for which some longer
// path u -> v -> ... -> w already exists, using a reachability matrix
// (the graph is a DAG by the time this runs — Build rejects cycles first).
func transitiveReduce(nodes []string, edges map[string]map[string]bool) map[string]map[string]bool {
	reachable := reachabilityMatrix(nodes, edges)

	reduced := make(map[string]map[string]bool, len(edges))
	for u, outs := range edges {
		for w := range outs {
			if impliedByLongerPath(u, w, outs, reachable) {
				continue
			}
			if reduced[u] == nil {
				reduced[u] = make(map[string]bool)
			}
			reduced[u][w] = true
		}
	}
	return reduced
}

// impliedByLongerPath reports whether edge (u, w) is redundant: some other
// direct successor v of u (v != w) can also reach w.
func impliedByLongerPath(u, w string, outsOfU map[string]bool, reachable map[string]map[string]bool) bool {
	for v := range outsOfU {
		if v == w {
			continue
		}
		if reachable[v][w] {
			return true
		}
	}
	return false
}

// reachabilityMatrix computes, for every node, the set of nodes reachable
// via one or more edges (a simple DFS-per-node closure; the plan sizes
// involved are small enough that an O(V*(V+E)) pass is the clearest
// implementation).
func reachabilityMatrix(nodes []string, edges map[string]map[string]bool) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(nodes))
	for _, n := range nodes {
		visited := make(map[string]bool)
		var dfs func(v string)
		dfs = func(v string) {
			for w := range edges[v] {
				if !visited[w] {
					visited[w] = true
					dfs(w)
				}
			}
		}
		dfs(n)
		out[n] = visited
	}
	return out
}
