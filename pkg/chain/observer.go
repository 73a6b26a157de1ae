package chain

import (
	"fmt"

	"github.com/dd0wney/chainagg/pkg/logging"
)

// Observe registers fn to run after every update of node id, whether the
// update came from outside, from propagation, or from a recompute.
// Observers of a node run in registration order. The returned cancel func
// removes the observer and is safe to call more than once.
func (g *Graph) Observe(id string, fn Observer) (cancel func(), err error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("Observe", id)
	}
	if fn == nil {
		return nil, NewError("Observe").Node(id).Context("nil observer").Cause(ErrInvalidInput).Err()
	}

	g.nextObserver++
	handle := g.nextObserver
	n.observers = append(n.observers, observerEntry{id: handle, fn: fn})

	return func() {
		for i, entry := range n.observers {
			if entry.id == handle {
				n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
				return
			}
		}
	}, nil
}

func (g *Graph) notify(n *node) {
	if len(n.observers) == 0 {
		return
	}
	ev := Event{Node: n.id, Value: n.output, Input: n.input}

	// Snapshot so observers may cancel themselves
	observers := append([]observerEntry(nil), n.observers...)
	for _, entry := range observers {
		if err := callObserver(entry.fn, ev); err != nil {
			g.metrics.RecordObserverFailure()
			g.logger.Error("update observer failed", logging.Node(n.id), logging.Error(err))
		}
	}
}

func callObserver(fn Observer, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ev)
}
