package algorithms

import (
	"errors"
)

// ErrNotDAG is returned when an ordering is requested for a cyclic graph.
var ErrNotDAG = errors.New("graph contains cycles, cannot perform topological sort")

// TopologicalSort returns nodes in topological order using Kahn's algorithm.
// The ordering ensures that for every directed edge u->v, u comes before v.
// In-degrees come from In list sizes; nodes that become ready together keep
// the order in which Nodes lists them.
func TopologicalSort(graph Adjacency) ([]string, error) {
	ids := graph.Nodes()

	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = len(graph.In(id))
	}

	// Queue of nodes with in-degree 0
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, len(ids))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, next := range graph.Out(current) {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Anything left unprocessed sits on a cycle
	if len(sorted) != len(ids) {
		return nil, ErrNotDAG
	}
	return sorted, nil
}

// IsTopologicalOrder reports whether order lists every node exactly once
// with each node strictly after all of its parents.
func IsTopologicalOrder(graph Adjacency, order []string) bool {
	ids := graph.Nodes()
	if len(order) != len(ids) {
		return false
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := position[id]; dup {
			return false
		}
		position[id] = i
	}

	for _, id := range ids {
		pos, ok := position[id]
		if !ok {
			return false
		}
		for _, parent := range graph.In(id) {
			if position[parent] >= pos {
				return false
			}
		}
	}
	return true
}
