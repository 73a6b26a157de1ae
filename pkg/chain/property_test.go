package chain

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/chainagg/pkg/algorithms"
	"github.com/dd0wney/chainagg/pkg/stat"
)

// randomNetwork describes a DAG and an update sequence derived from a seed,
// so the same description can be built under several strategies.
type randomNetwork struct {
	ids     []string
	edges   [][2]int
	cutoff  []float64 // filter threshold per edge, 0 for no filter
	fanIn   FanInPolicy
	updates []Input
}

func newRandomNetwork(seed int64) randomNetwork {
	rng := rand.New(rand.NewSource(seed))
	n := 2 + rng.Intn(6)

	net := randomNetwork{fanIn: FanInPolicy(rng.Intn(2))}
	hasParent := make([]bool, n)
	for i := 0; i < n; i++ {
		net.ids = append(net.ids, fmt.Sprintf("n%d", i))
	}
	// Edges only run from lower to higher index
	for j := 1; j < n; j++ {
		for i := 0; i < j; i++ {
			if rng.Float64() < 0.4 {
				net.edges = append(net.edges, [2]int{i, j})
				cutoff := 0.0
				if rng.Intn(3) == 0 {
					cutoff = float64(1 + rng.Intn(4))
				}
				net.cutoff = append(net.cutoff, cutoff)
				hasParent[j] = true
			}
		}
	}

	var sources []string
	for i, id := range net.ids {
		if !hasParent[i] {
			sources = append(sources, id)
		}
	}
	count := 3 + rng.Intn(10)
	for k := 0; k < count; k++ {
		net.updates = append(net.updates, Input{
			ID:    sources[rng.Intn(len(sources))],
			Value: float64(rng.Intn(6)),
		})
	}
	return net
}

func (net randomNetwork) build(s Strategy) (*Graph, error) {
	g := New(WithStrategy(s), WithFanInPolicy(net.fanIn))
	for _, id := range net.ids {
		var agg Aggregate = stat.NewCollect()
		if id == net.ids[0] {
			agg = stat.NewSum()
		}
		if err := g.AddNode(id, agg); err != nil {
			return nil, err
		}
	}
	for i, e := range net.edges {
		var opts []EdgeOption
		if cutoff := net.cutoff[i]; cutoff > 0 {
			opts = append(opts, WithFilter(Predicate(func(v any) bool {
				f, ok := v.(float64)
				return !ok || f >= cutoff
			})))
		}
		if err := g.Connect(net.ids[e[0]], net.ids[e[1]], opts...); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (net randomNetwork) run(s Strategy) (map[string]any, error) {
	g, err := net.build(s)
	if err != nil {
		return nil, err
	}
	if err := g.UpdateMany(net.updates); err != nil {
		return nil, err
	}
	return g.Values()
}

func TestGraphProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("connect never leaves a cycle", prop.ForAll(
		func(attempts []int) bool {
			g := New()
			for i := 0; i < 6; i++ {
				g.AddNode(fmt.Sprintf("n%d", i), stat.NewSum())
			}
			for _, k := range attempts {
				src, dst := fmt.Sprintf("n%d", k/6), fmt.Sprintf("n%d", k%6)
				before := takeSnapshot(g)
				err := g.Connect(src, dst)
				if IsCycle(err) && !reflect.DeepEqual(before, takeSnapshot(g)) {
					return false
				}
				if err != nil && !IsCycle(err) {
					return false
				}
				if !algorithms.IsDAG(adjacency{g}) {
					return false
				}
			}
			return g.Validate() == nil
		},
		gen.SliceOf(gen.IntRange(0, 35)),
	))

	properties.Property("topological order puts parents first", prop.ForAll(
		func(seed int64) bool {
			g, err := newRandomNetwork(seed).build(Eager)
			if err != nil {
				return false
			}
			order, err := g.TopologicalOrder()
			if err != nil || len(order) != g.NodeCount() {
				return false
			}
			pos := make(map[string]int, len(order))
			for i, id := range order {
				pos[id] = i
			}
			for _, e := range g.Edges() {
				if pos[e.Source()] >= pos[e.Destination()] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("eager propagation is deterministic", prop.ForAll(
		func(seed int64) bool {
			net := newRandomNetwork(seed)
			first, err1 := net.run(Eager)
			second, err2 := net.run(Eager)
			return err1 == nil && err2 == nil && reflect.DeepEqual(first, second)
		},
		gen.Int64(),
	))

	properties.Property("lazy matches eager after recompute", prop.ForAll(
		func(seed int64) bool {
			net := newRandomNetwork(seed)
			eager, err1 := net.run(Eager)
			lazy, err2 := net.run(Lazy)
			return err1 == nil && err2 == nil && reflect.DeepEqual(eager, lazy)
		},
		gen.Int64(),
	))

	properties.Property("switching strategy mid-stream matches eager", prop.ForAll(
		func(seed int64, split int) bool {
			net := newRandomNetwork(seed)
			want, err := net.run(Eager)
			if err != nil {
				return false
			}

			g, err := net.build(Lazy)
			if err != nil {
				return false
			}
			split %= len(net.updates) + 1
			if err := g.UpdateMany(net.updates[:split]); err != nil {
				return false
			}
			if err := g.SetStrategy(Eager); err != nil {
				return false
			}
			if err := g.UpdateMany(net.updates[split:]); err != nil {
				return false
			}
			got, err := g.Values()
			return err == nil && reflect.DeepEqual(want, got)
		},
		gen.Int64(),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
