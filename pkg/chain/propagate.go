package chain

import (
	"fmt"

	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
)

// cascade pushes id's current output to each child in child-list order and
// recurses depth-first into every child that was updated. It stops at the
// first error; siblings already updated stay updated.
func (g *Graph) cascade(op, id string) error {
	n := g.nodes[id]
	for _, childID := range n.children {
		child := g.nodes[childID]

		value, accepted, err := g.gather(op, child, g.outputOf)
		if err != nil {
			return err
		}
		if !accepted {
			continue
		}
		if err := g.apply(op, child, value, metrics.KindPropagated); err != nil {
			return err
		}
		if err := g.cascade(op, childID); err != nil {
			return err
		}
	}
	return nil
}

// gather builds the input for child from its parents, reading each
// parent's candidate value through read. A single-parent child gets the
// edge's output as is; a fan-in child gets the accepted values in
// parent-declaration order, subject to the fan-in policy.
func (g *Graph) gather(op string, child *node, read func(id string) any) (any, bool, error) {
	if len(child.parents) == 1 {
		return g.cross(op, g.edges[EdgeKey{Src: child.parents[0], Dst: child.id}], read(child.parents[0]))
	}

	values := make([]any, 0, len(child.parents))
	for _, parentID := range child.parents {
		out, accepted, err := g.cross(op, g.edges[EdgeKey{Src: parentID, Dst: child.id}], read(parentID))
		if err != nil {
			return nil, false, err
		}
		if !accepted {
			if g.fanIn == FanInStrict {
				return nil, false, nil
			}
			continue
		}
		values = append(values, out)
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	return values, true, nil
}

// cross evaluates one edge's policy and records the outcome.
func (g *Graph) cross(op string, e *Edge, v any) (any, bool, error) {
	out, accepted, err := e.evaluate(op, v)
	if err != nil {
		if perr, ok := err.(*Error); ok {
			g.metrics.RecordPolicyFailure(perr.Stage)
		}
		g.logger.Debug("edge policy failed", logging.Edge(e.src, e.dst), logging.Error(err))
		return nil, false, err
	}
	if !accepted {
		g.metrics.RecordFiltered()
	}
	return out, accepted, nil
}

// apply feeds value into n's aggregate, refreshes its caches and notifies
// observers. Caches are untouched when the aggregate rejects the value.
func (g *Graph) apply(op string, n *node, value any, kind string) error {
	if err := callUpdate(n.agg, value); err != nil {
		g.metrics.RecordAggregateError()
		return aggregateError(op, n.id, err)
	}
	n.input = value
	n.output = n.agg.Value()
	g.metrics.RecordUpdate(kind)
	g.notify(n)
	return nil
}

func callUpdate(agg Aggregate, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return agg.Update(value)
}

// outputOf is the candidate value a parent offers during a cascade. While a
// lazy replay runs, sources report the output they had at that point of
// the deferred sequence instead of their final one.
func (g *Graph) outputOf(id string) any {
	if g.replaying {
		if v, ok := g.baseline[id]; ok {
			return v
		}
	}
	return g.nodes[id].output
}

// inputOf is the candidate value a parent offers during a refresh.
func (g *Graph) inputOf(id string) any {
	return g.nodes[id].input
}
