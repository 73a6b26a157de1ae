package algorithms

// Adjacency is the read-only view of a directed graph the structural
// algorithms operate on. Nodes must return identifiers in a stable order;
// the algorithms inherit that order for tie-breaking.
type Adjacency interface {
	// Nodes returns every node identifier.
	Nodes() []string
	// Out returns the identifiers reachable over one outgoing edge.
	Out(id string) []string
	// In returns the identifiers with an edge into id.
	In(id string) []string
}

// MapAdjacency is an Adjacency backed by plain maps. It is handy for tests
// and for callers that assemble a graph before handing it to the engine.
type MapAdjacency struct {
	order []string
	out   map[string][]string
	in    map[string][]string
}

// NewMapAdjacency creates an empty MapAdjacency.
func NewMapAdjacency() *MapAdjacency {
	return &MapAdjacency{
		out: make(map[string][]string),
		in:  make(map[string][]string),
	}
}

// AddNode registers id if it is not known yet.
func (m *MapAdjacency) AddNode(id string) {
	if _, ok := m.out[id]; ok {
		return
	}
	m.order = append(m.order, id)
	m.out[id] = nil
	m.in[id] = nil
}

// AddEdge adds from -> to, registering both endpoints as needed.
func (m *MapAdjacency) AddEdge(from, to string) {
	m.AddNode(from)
	m.AddNode(to)
	m.out[from] = append(m.out[from], to)
	m.in[to] = append(m.in[to], from)
}

func (m *MapAdjacency) Nodes() []string        { return m.order }
func (m *MapAdjacency) Out(id string) []string { return m.out[id] }
func (m *MapAdjacency) In(id string) []string  { return m.in[id] }
