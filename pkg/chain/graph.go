package chain

import (
	"maps"

	"github.com/google/uuid"

	"github.com/dd0wney/chainagg/pkg/algorithms"
	"github.com/dd0wney/chainagg/pkg/logging"
)

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		id:       uuid.NewString(),
		nodes:    make(map[string]*node),
		edges:    make(map[EdgeKey]*Edge),
		dirty:    make(map[string]dirtyMark),
		baseline: make(map[string]any),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}

	fields := []logging.Field{logging.Graph(g.id), logging.Component("chain")}
	if g.name != "" {
		fields = append(fields, logging.String("graph", g.name))
	}
	g.logger = g.logger.With(fields...)
	return g
}

// ID returns the graph's instance identifier.
func (g *Graph) ID() string { return g.id }

// Name returns the name given with WithName.
func (g *Graph) Name() string { return g.name }

// AddNode inserts a node with no parents or children. Its cached output
// starts as agg.Value().
func (g *Graph) AddNode(id string, agg Aggregate) error {
	if id == "" {
		return NewError("AddNode").Context("empty identifier").Cause(ErrInvalidInput).Err()
	}
	if agg == nil {
		return NewError("AddNode").Node(id).Context("nil aggregate").Cause(ErrInvalidInput).Err()
	}
	if _, exists := g.nodes[id]; exists {
		return NewError("AddNode").Node(id).Cause(ErrDuplicateNode).Err()
	}

	g.nodes[id] = &node{
		id:     id,
		agg:    agg,
		output: agg.Value(),
	}
	g.order = append(g.order, id)
	g.invalidateStructure()

	g.metrics.RecordNodeAdded()
	g.logger.Debug("node added", logging.Node(id))
	return nil
}

// Connect adds the edge src -> dst. If the edge already exists its policy
// is replaced by a new Edge value and the adjacency is left alone. An edge
// that would close a cycle is rolled back and ErrCycle returned.
func (g *Graph) Connect(src, dst string, opts ...EdgeOption) error {
	_, err := g.connect("Connect", src, dst, opts)
	return err
}

// ConnectAll connects every source to dst in list order with the same
// policy options. It is atomic: if any edge fails, the edges this call
// added or replaced are restored and the graph is left as it was.
func (g *Graph) ConnectAll(srcs []string, dst string, opts ...EdgeOption) error {
	if len(srcs) == 0 {
		return NewError("ConnectAll").Node(dst).Context("no sources").Cause(ErrInvalidInput).Err()
	}

	topo, topoValid := g.topo, g.topoValid
	dirty := maps.Clone(g.dirty)
	type change struct {
		key  EdgeKey
		prev *Edge // nil when the edge was new
	}
	changes := make([]change, 0, len(srcs))

	for _, src := range srcs {
		prev := g.edges[EdgeKey{Src: src, Dst: dst}]
		added, err := g.connect("ConnectAll", src, dst, opts)
		if err != nil {
			for i := len(changes) - 1; i >= 0; i-- {
				c := changes[i]
				if c.prev != nil {
					g.edges[c.key] = c.prev
				} else {
					g.removeEdge(c.key)
				}
			}
			g.topo, g.topoValid = topo, topoValid
			g.reach = nil
			g.restoreDirty(dirty)
			return err
		}
		if !added && prev == nil {
			continue
		}
		changes = append(changes, change{key: EdgeKey{Src: src, Dst: dst}, prev: prev})
	}
	return nil
}

// connect reports whether a new edge was added (false when an existing
// edge had its policy replaced).
func (g *Graph) connect(op, src, dst string, opts []EdgeOption) (bool, error) {
	s, ok := g.nodes[src]
	if !ok {
		return false, notFound(op, src)
	}
	d, ok := g.nodes[dst]
	if !ok {
		return false, notFound(op, dst)
	}

	key := EdgeKey{Src: src, Dst: dst}
	edge := newEdge(src, dst, opts)
	if old, exists := g.edges[key]; exists {
		edge.seq = old.seq
		g.edges[key] = edge
		g.logger.Debug("edge policy replaced", logging.Edge(src, dst))
		return false, nil
	}

	// Provisional insert, then check the whole graph
	s.children = append(s.children, dst)
	d.parents = append(d.parents, src)
	if cycle := algorithms.FindCycle(adjacency{g}); cycle != nil {
		s.children = s.children[:len(s.children)-1]
		d.parents = d.parents[:len(d.parents)-1]
		g.metrics.RecordCycleRejected()
		g.logger.Debug("edge rejected", logging.Edge(src, dst), logging.Strings("cycle", cycle))
		return false, NewError(op).Edge(src, dst).Path(cycle).Cause(ErrCycle).Err()
	}

	g.seq++
	edge.seq = g.seq
	g.edges[key] = edge
	g.invalidateStructure()

	// A new child of a node with a deferred delivery is stale too
	if g.dirty[src]&markPending != 0 {
		g.markDownstream(dst, markPending)
	}

	g.metrics.RecordEdgeAdded()
	g.logger.Debug("edge added", logging.Edge(src, dst),
		logging.Bool("filter", edge.HasFilter()), logging.Bool("transform", edge.HasTransform()))
	return true, nil
}

// removeEdge drops an edge added by connect. The edge's entries are the
// last occurrences in both adjacency lists.
func (g *Graph) removeEdge(key EdgeKey) {
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	if s, ok := g.nodes[key.Src]; ok {
		s.children = removeLast(s.children, key.Dst)
	}
	if d, ok := g.nodes[key.Dst]; ok {
		d.parents = removeLast(d.parents, key.Src)
	}
	g.metrics.RecordEdgeRemoved()
}

func removeLast(ids []string, id string) []string {
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// invalidateStructure clears every cache derived from the adjacency.
func (g *Graph) invalidateStructure() {
	g.topoValid = false
	g.reach = nil
}

// topologicalOrder returns the cached order, rebuilding it when stale.
func (g *Graph) topologicalOrder() ([]string, error) {
	if g.topoValid {
		return g.topo, nil
	}
	order, err := algorithms.TopologicalSort(adjacency{g})
	if err != nil {
		return nil, NewError("TopologicalOrder").Cause(ErrInconsistent).Context(err.Error()).Err()
	}
	g.topo = order
	g.topoValid = true
	g.metrics.RecordTopoRecompute()
	return g.topo, nil
}

// descendants returns every node downstream of id, cached until the next
// structural change.
func (g *Graph) descendants(id string) []string {
	if g.reach == nil {
		g.reach = make(map[string][]string)
	}
	if d, ok := g.reach[id]; ok {
		return d
	}
	d := algorithms.Descendants(adjacency{g}, id)
	g.reach[id] = d
	return d
}

// adjacency exposes the graph to pkg/algorithms.
type adjacency struct {
	g *Graph
}

func (a adjacency) Nodes() []string { return a.g.order }

func (a adjacency) Out(id string) []string {
	if n, ok := a.g.nodes[id]; ok {
		return n.children
	}
	return nil
}

func (a adjacency) In(id string) []string {
	if n, ok := a.g.nodes[id]; ok {
		return n.parents
	}
	return nil
}
