package chain

import (
	"sync"
)

// Synchronized serializes every call into a Graph behind one mutex, for
// embedders that drive a graph from several goroutines. Observers run while
// the lock is held and must not call back into the wrapper.
type Synchronized struct {
	mu sync.Mutex
	g  *Graph
}

// NewSynchronized wraps g. g must not be used directly afterwards.
func NewSynchronized(g *Graph) *Synchronized {
	return &Synchronized{g: g}
}

// Do runs fn with exclusive access to the graph, for batches that must not
// interleave with other callers.
func (s *Synchronized) Do(fn func(g *Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.g)
}

func (s *Synchronized) AddNode(id string, agg Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.AddNode(id, agg)
}

func (s *Synchronized) Connect(src, dst string, opts ...EdgeOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Connect(src, dst, opts...)
}

func (s *Synchronized) ConnectAll(srcs []string, dst string, opts ...EdgeOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.ConnectAll(srcs, dst, opts...)
}

func (s *Synchronized) Update(id string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Update(id, value)
}

func (s *Synchronized) UpdateSeq(id string, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.UpdateSeq(id, values)
}

func (s *Synchronized) UpdateMany(inputs []Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.UpdateMany(inputs)
}

func (s *Synchronized) UpdateSynced(seqs []Sequence) (*SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.UpdateSynced(seqs)
}

func (s *Synchronized) SetStrategy(st Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.SetStrategy(st)
}

func (s *Synchronized) Strategy() Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Strategy()
}

func (s *Synchronized) Invalidate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Invalidate(id)
}

func (s *Synchronized) Recompute() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Recompute()
}

func (s *Synchronized) Value(id string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Value(id)
}

func (s *Synchronized) Values() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Values()
}

func (s *Synchronized) NodeIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.NodeIDs()
}

func (s *Synchronized) TopologicalOrder() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.TopologicalOrder()
}

func (s *Synchronized) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Validate()
}

func (s *Synchronized) Observe(id string, fn Observer) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, err := s.g.Observe(id, fn)
	if err != nil {
		return nil, err
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		cancel()
	}, nil
}
