package algorithms

// IsAncestor reports whether descendant is reachable from ancestor by
// following outgoing edges. It runs a reverse breadth-first search from
// descendant over incoming edges. A node is not its own ancestor.
func IsAncestor(graph Adjacency, ancestor, descendant string) bool {
	if ancestor == descendant {
		return false
	}

	visited := map[string]bool{descendant: true}
	queue := []string{descendant}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, parent := range graph.In(current) {
			if parent == ancestor {
				return true
			}
			if !visited[parent] {
				visited[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return false
}

// Descendants returns every node reachable from id over outgoing edges,
// in breadth-first discovery order. id itself is not included.
func Descendants(graph Adjacency, id string) []string {
	visited := map[string]bool{id: true}
	queue := []string{id}
	result := make([]string, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range graph.Out(current) {
			if visited[child] {
				continue
			}
			visited[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}
