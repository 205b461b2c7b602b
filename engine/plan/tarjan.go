package plan

// findCycle runs Tarjan's strongly connected components algorithm over the
// directed graph (nodes, edges) and returns the members of the first
// nontrivial SCC it finds (more than one node, or one node with a
// self-edge) — evidence the plan is not a DAG. Returns nil if every SCC is
// trivial.
func findCycle(nodes []string, edges map[string]map[string]bool) []string {
	index := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	counter := 0
	var sccs [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for w := range edges[v] {
			if _, visited := index[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var scc []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, n := range nodes {
		if _, visited := index[n]; !visited {
			strongconnect(n)
		}
	}

	for _, scc := range sccs {
		if len(scc) > 1 {
			return scc
		}
		if len(scc) == 1 && edges[scc[0]][scc[0]] {
			return scc
		}
	}
	return nil
}
