package chain

import (
	"errors"
	"testing"

	"github.com/dd0wney/chainagg/pkg/stat"
)

// mustAdd adds a node or fails the test.
func mustAdd(t *testing.T, g *Graph, id string, agg Aggregate) {
	t.Helper()
	if err := g.AddNode(id, agg); err != nil {
		t.Fatalf("AddNode(%s) failed: %v", id, err)
	}
}

func mustConnect(t *testing.T, g *Graph, src, dst string, opts ...EdgeOption) {
	t.Helper()
	if err := g.Connect(src, dst, opts...); err != nil {
		t.Fatalf("Connect(%s, %s) failed: %v", src, dst, err)
	}
}

func mustValue(t *testing.T, g *Graph, id string) any {
	t.Helper()
	v, err := g.Value(id)
	if err != nil {
		t.Fatalf("Value(%s) failed: %v", id, err)
	}
	return v
}

// meanChain builds A -> B with running means on both ends.
func meanChain(t *testing.T, opts []Option, edge ...EdgeOption) *Graph {
	t.Helper()
	g := New(opts...)
	mustAdd(t, g, "A", stat.NewMean())
	mustAdd(t, g, "B", stat.NewMean())
	mustConnect(t, g, "A", "B", edge...)
	return g
}

// snapshot captures adjacency and cache validity for before/after checks.
type snapshot struct {
	parents   map[string][]string
	children  map[string][]string
	edges     int
	topoValid bool
}

func takeSnapshot(g *Graph) snapshot {
	s := snapshot{
		parents:   make(map[string][]string),
		children:  make(map[string][]string),
		edges:     len(g.edges),
		topoValid: g.topoValid,
	}
	for id, n := range g.nodes {
		s.parents[id] = append([]string(nil), n.parents...)
		s.children[id] = append([]string(nil), n.children...)
	}
	return s
}

var errBoom = errors.New("boom")

func double(v any) any {
	return v.(float64) * 2
}
