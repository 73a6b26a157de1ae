package algorithms

import (
	"errors"
	"reflect"
	"testing"
)

// TestTopologicalSort_EmptyGraph tests sorting an empty graph
func TestTopologicalSort_EmptyGraph(t *testing.T) {
	order, err := TopologicalSort(NewMapAdjacency())
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("Expected empty order, got %v", order)
	}
}

// TestTopologicalSort_LinearChain tests A -> B -> C
func TestTopologicalSort_LinearChain(t *testing.T) {
	g := buildGraph([]string{"C", "B", "A"}, [][2]string{{"A", "B"}, {"B", "C"}})

	order, err := TopologicalSort(g)
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(order, want) {
		t.Errorf("Expected %v, got %v", want, order)
	}
}

// TestTopologicalSort_StableTies keeps insertion order among ready nodes
func TestTopologicalSort_StableTies(t *testing.T) {
	g := buildGraph([]string{"X", "Y", "Z"}, [][2]string{{"X", "Z"}, {"Y", "Z"}})

	order, err := TopologicalSort(g)
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}
	if want := []string{"X", "Y", "Z"}; !reflect.DeepEqual(order, want) {
		t.Errorf("Expected %v, got %v", want, order)
	}
}

// TestTopologicalSort_Diamond checks every node follows its parents
func TestTopologicalSort_Diamond(t *testing.T) {
	g := buildGraph(nil, [][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}})

	order, err := TopologicalSort(g)
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}
	if !IsTopologicalOrder(g, order) {
		t.Errorf("Order %v is not topological", order)
	}
}

// TestTopologicalSort_Cycle rejects cyclic graphs
func TestTopologicalSort_Cycle(t *testing.T) {
	g := buildGraph(nil, [][2]string{{"A", "B"}, {"B", "A"}})

	_, err := TopologicalSort(g)
	if !errors.Is(err, ErrNotDAG) {
		t.Errorf("Expected ErrNotDAG, got %v", err)
	}
}

func TestIsTopologicalOrder_Rejects(t *testing.T) {
	g := buildGraph(nil, [][2]string{{"A", "B"}})

	cases := map[string][]string{
		"reversed":  {"B", "A"},
		"missing":   {"A"},
		"duplicate": {"A", "A"},
		"unknown":   {"A", "Q"},
	}
	for name, order := range cases {
		if IsTopologicalOrder(g, order) {
			t.Errorf("%s: order %v should be rejected", name, order)
		}
	}
}
