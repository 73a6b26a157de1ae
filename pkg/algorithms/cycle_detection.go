package algorithms

// Cycle represents a detected cycle as a sequence of node IDs, starting and
// ending at the same node (a self-loop on A is [A, A]).
type Cycle []string

const (
	white = iota // Unvisited
	gray         // Currently visiting (on the recursion stack)
	black        // Finished visiting
)

// FindCycle returns the first cycle found by a three-color depth-first
// search over every node, or nil if the graph is acyclic.
//
// Algorithm: Uses depth-first search with three colors:
//   - WHITE: Unvisited node
//   - GRAY: Currently visiting (node is on the current path)
//   - BLACK: Finished visiting (all descendants have been explored)
//
// An edge into a GRAY node is a back edge, which closes a cycle.
// Complexity O(V+E).
func FindCycle(graph Adjacency) Cycle {
	color := make(map[string]int)
	parent := make(map[string]string)

	// DFS from each unvisited node to cover disconnected components
	for _, id := range graph.Nodes() {
		if color[id] != white {
			continue
		}
		if cycle := dfsFindCycle(graph, id, color, parent); cycle != nil {
			return cycle
		}
	}
	return nil
}

// HasCycle reports whether the graph contains any cycle.
func HasCycle(graph Adjacency) bool {
	return FindCycle(graph) != nil
}

// IsDAG reports whether the graph is a directed acyclic graph.
func IsDAG(graph Adjacency) bool {
	return !HasCycle(graph)
}

func dfsFindCycle(graph Adjacency, id string, color map[string]int, parent map[string]string) Cycle {
	color[id] = gray

	for _, next := range graph.Out(id) {
		switch color[next] {
		case white:
			parent[next] = id
			if cycle := dfsFindCycle(graph, next, color, parent); cycle != nil {
				return cycle
			}
		case gray:
			return extractCycle(next, id, parent)
		}
		// BLACK: forward or cross edge, no cycle through it
	}

	color[id] = black
	return nil
}

// extractCycle rebuilds the cycle closed by the back edge end -> start by
// walking parent pointers from end back to start.
func extractCycle(start, end string, parent map[string]string) Cycle {
	reversed := []string{start}
	for current := end; current != start; {
		reversed = append(reversed, current)
		p, ok := parent[current]
		if !ok {
			break
		}
		current = p
	}
	reversed = append(reversed, start)

	cycle := make(Cycle, len(reversed))
	for i, id := range reversed {
		cycle[len(reversed)-1-i] = id
	}
	return cycle
}
