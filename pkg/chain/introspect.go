package chain

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/dd0wney/chainagg/pkg/algorithms"
)

// Value returns the current output of id. A dirty node triggers Recompute
// first.
func (g *Graph) Value(id string) (any, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("Value", id)
	}
	if g.dirty[id] != 0 {
		if err := g.Recompute(); err != nil {
			return nil, err
		}
	}
	return n.output, nil
}

// LastInput returns the value most recently fed into id's aggregate, after
// bringing id up to date like Value does.
func (g *Graph) LastInput(id string) (any, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("LastInput", id)
	}
	if g.dirty[id] != 0 {
		if err := g.Recompute(); err != nil {
			return nil, err
		}
	}
	return n.input, nil
}

// Values returns the current output of every node, recomputing first if
// anything is dirty.
func (g *Graph) Values() (map[string]any, error) {
	if len(g.dirty) > 0 || len(g.pending) > 0 {
		if err := g.Recompute(); err != nil {
			return nil, err
		}
	}
	out := make(map[string]any, len(g.nodes))
	for id, n := range g.nodes {
		out[id] = n.output
	}
	return out, nil
}

// NodeIDs returns every node identifier in insertion order.
func (g *Graph) NodeIDs() []string {
	return slices.Clone(g.order)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Parents returns id's parents in declaration order.
func (g *Graph) Parents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("Parents", id)
	}
	return slices.Clone(n.parents), nil
}

// Children returns id's children in declaration order.
func (g *Graph) Children(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("Children", id)
	}
	return slices.Clone(n.children), nil
}

// Sources returns the nodes without parents, in insertion order.
func (g *Graph) Sources() []string {
	var out []string
	for _, id := range g.order {
		if len(g.nodes[id].parents) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns the nodes without children, in insertion order.
func (g *Graph) Sinks() []string {
	var out []string
	for _, id := range g.order {
		if len(g.nodes[id].children) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// TopologicalOrder returns a copy of the (possibly rebuilt) topological
// order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	order, err := g.topologicalOrder()
	if err != nil {
		return nil, err
	}
	return slices.Clone(order), nil
}

// IsAncestor reports whether descendant is reachable from ancestor.
func (g *Graph) IsAncestor(ancestor, descendant string) (bool, error) {
	if _, ok := g.nodes[ancestor]; !ok {
		return false, notFound("IsAncestor", ancestor)
	}
	if _, ok := g.nodes[descendant]; !ok {
		return false, notFound("IsAncestor", descendant)
	}
	return algorithms.IsAncestor(adjacency{g}, ancestor, descendant), nil
}

// Edge returns the edge src -> dst.
func (g *Graph) Edge(src, dst string) (*Edge, bool) {
	e, ok := g.edges[EdgeKey{Src: src, Dst: dst}]
	return e, ok
}

// Edges returns every edge in declaration order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Validate checks the structural invariants: symmetric adjacency, edge
// records matching adjacency, acyclicity and, when cached, a valid
// topological order. Every violation found is reported.
func (g *Graph) Validate() error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if len(g.order) != len(g.nodes) {
		report("insertion order lists %d nodes, graph holds %d", len(g.order), len(g.nodes))
	}

	adjacent := 0
	for _, id := range g.order {
		n, ok := g.nodes[id]
		if !ok {
			report("node %q listed but not stored", id)
			continue
		}
		for _, p := range n.parents {
			parent, ok := g.nodes[p]
			switch {
			case !ok:
				report("node %q has unknown parent %q", id, p)
			case !slices.Contains(parent.children, id):
				report("edge %s -> %s missing from parent's children", p, id)
			}
			if _, ok := g.edges[EdgeKey{Src: p, Dst: id}]; !ok {
				report("edge %s -> %s has no edge record", p, id)
			}
			adjacent++
		}
		for _, c := range n.children {
			child, ok := g.nodes[c]
			switch {
			case !ok:
				report("node %q has unknown child %q", id, c)
			case !slices.Contains(child.parents, id):
				report("edge %s -> %s missing from child's parents", id, c)
			}
		}
		if hasDuplicates(n.parents) || hasDuplicates(n.children) {
			report("node %q has duplicate adjacency entries", id)
		}
	}
	if adjacent != len(g.edges) {
		report("adjacency holds %d edges, %d edge records stored", adjacent, len(g.edges))
	}

	if len(problems) == 0 {
		if cycle := algorithms.FindCycle(adjacency{g}); cycle != nil {
			report("cycle %v", cycle)
		} else if g.topoValid && !algorithms.IsTopologicalOrder(adjacency{g}, g.topo) {
			report("cached topological order is stale")
		}
	}

	if len(problems) > 0 {
		return NewError("Validate").Cause(errors.Join(append([]error{ErrInconsistent}, problems...)...)).Err()
	}
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
