package chain

import (
	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
)

// Strategy returns the current evaluation strategy.
func (g *Graph) Strategy() Strategy {
	return g.strategy
}

// FanInPolicy returns the fan-in arity policy.
func (g *Graph) FanInPolicy() FanInPolicy {
	return g.fanIn
}

// SetStrategy changes the evaluation strategy. Entering lazy marks every
// node dirty. Leaving lazy recomputes first; if that fails the graph stays
// lazy and the error is returned.
func (g *Graph) SetStrategy(s Strategy) error {
	if !s.valid() {
		return NewError("SetStrategy").Context(s.String()).Cause(ErrInvalidInput).Err()
	}
	if s == g.strategy {
		return nil
	}

	from := g.strategy
	switch {
	case s == Lazy:
		for _, id := range g.order {
			g.mark(id, markSwitch)
		}
	case from == Lazy:
		if err := g.Recompute(); err != nil {
			return err
		}
	}

	g.strategy = s
	g.metrics.RecordStrategySwitch(s.String())
	g.logger.Info("evaluation strategy changed",
		logging.String("from", from.String()), logging.Strategy(s.String()))
	return nil
}

// Invalidate marks id and its descendants dirty so the next Recompute (or
// read of one of them) refreshes them from their parents' last inputs.
func (g *Graph) Invalidate(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return notFound("Invalidate", id)
	}
	g.markDownstream(id, markRefresh)
	return nil
}

// IsDirty reports whether id is waiting for a recompute.
func (g *Graph) IsDirty(id string) bool {
	return g.dirty[id] != 0
}

// Dirty returns the dirty nodes in topological order.
func (g *Graph) Dirty() []string {
	if len(g.dirty) == 0 {
		return nil
	}
	order, err := g.topologicalOrder()
	if err != nil {
		order = g.order
	}
	out := make([]string, 0, len(g.dirty))
	for _, id := range order {
		if g.dirty[id] != 0 {
			out = append(out, id)
		}
	}
	return out
}

// Pending returns the number of deferred deliveries waiting for replay.
func (g *Graph) Pending() int {
	return len(g.pending)
}

// Recompute brings every dirty node up to date. Deferred deliveries are
// replayed in arrival order, each cascading as an eager update would. The
// topological order is then swept: sources are accepted as current, nodes
// marked by Invalidate are refreshed from their parents' last inputs, and
// every handled node leaves the dirty set. With nothing dirty and nothing
// pending it does nothing.
//
// A failing delivery is dropped; later deliveries and dirty marks are kept
// for the next call.
func (g *Graph) Recompute() error {
	if len(g.dirty) == 0 && len(g.pending) == 0 {
		clear(g.baseline)
		return nil
	}

	timer := logging.StartTimer(g.logger, "recompute",
		logging.Int("dirty", len(g.dirty)), logging.Int("pending", len(g.pending)))

	order, err := g.topologicalOrder()
	if err != nil {
		g.metrics.RecordRecompute("error", timer.EndError(err))
		return err
	}

	if err := g.replay(); err != nil {
		g.metrics.RecordRecompute("error", timer.EndError(err))
		return err
	}

	refreshed := 0
	for _, id := range order {
		mark := g.dirty[id]
		if mark == 0 {
			continue
		}
		n := g.nodes[id]
		if mark&markRefresh != 0 && len(n.parents) > 0 {
			value, accepted, err := g.gather("Recompute", n, g.inputOf)
			if err != nil {
				g.metrics.RecordRecompute("error", timer.EndError(err))
				return err
			}
			if accepted {
				if err := g.apply("Recompute", n, value, metrics.KindRefreshed); err != nil {
					g.metrics.RecordRecompute("error", timer.EndError(err))
					return err
				}
				refreshed++
			}
		}
		g.unmark(id)
	}

	g.metrics.RecordRecompute("ok", timer.End(logging.Int("refreshed", refreshed)))
	return nil
}

// replay drains the pending queue. During the replay baseline holds, for
// each source with deliveries, the output it had when the delivery being
// replayed was made.
func (g *Graph) replay() error {
	g.replaying = true
	defer func() { g.replaying = false }()

	for len(g.pending) > 0 {
		d := g.pending[0]
		g.pending = g.pending[1:]
		g.metrics.AddPending(-1)

		g.baseline[d.source] = d.output
		if err := g.cascade("Recompute", d.source); err != nil {
			return err
		}
	}
	g.pending = nil
	clear(g.baseline)
	return nil
}

// deferDelivery queues a lazy source update. prev is the source output
// before the update; it becomes the replay baseline if this is the first
// queued delivery of the source.
func (g *Graph) deferDelivery(n *node, prev any) {
	if _, ok := g.baseline[n.id]; !ok {
		g.baseline[n.id] = prev
	}
	g.pending = append(g.pending, delivery{source: n.id, output: n.output})
	g.metrics.AddPending(1)
	g.markDownstream(n.id, markPending)
}

// markDownstream marks id and everything it precedes.
func (g *Graph) markDownstream(id string, m dirtyMark) {
	g.mark(id, m)
	for _, d := range g.descendants(id) {
		g.mark(d, m)
	}
}

func (g *Graph) mark(id string, m dirtyMark) {
	if g.dirty[id] == 0 {
		g.metrics.AddDirty(1)
	}
	g.dirty[id] |= m
}

// restoreDirty puts back a dirty set captured before a rolled back change.
func (g *Graph) restoreDirty(saved map[string]dirtyMark) {
	if saved == nil {
		saved = make(map[string]dirtyMark)
	}
	g.metrics.AddDirty(len(saved) - len(g.dirty))
	g.dirty = saved
}

func (g *Graph) unmark(id string) {
	if _, ok := g.dirty[id]; ok {
		delete(g.dirty, id)
		g.metrics.AddDirty(-1)
	}
}
