package chain

import (
	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
)

// SyncReport describes an UpdateSynced call.
type SyncReport struct {
	// Steps is the number of positions fed to every source.
	Steps int
	// Warning is set when the sequences had different lengths.
	Warning *LengthMismatchWarning
}

// Update feeds value to source id. Under eager and partial strategies the
// change cascades before Update returns; under lazy it is deferred.
func (g *Graph) Update(id string, value any) error {
	n, err := g.source("Update", id)
	if err != nil {
		return err
	}
	return g.feed("Update", n, value)
}

// UpdateSeq feeds values to source id one at a time, propagating after
// each. It stops at the first error.
func (g *Graph) UpdateSeq(id string, values []any) error {
	n, err := g.source("UpdateSeq", id)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := g.feed("UpdateSeq", n, v); err != nil {
			return err
		}
	}
	return nil
}

// UpdateMany feeds several sources in slice order. Every identifier is
// checked before anything is fed.
func (g *Graph) UpdateMany(inputs []Input) error {
	targets := make([]*node, len(inputs))
	for i, in := range inputs {
		n, err := g.source("UpdateMany", in.ID)
		if err != nil {
			return err
		}
		targets[i] = n
	}
	for i, in := range inputs {
		if err := g.feed("UpdateMany", targets[i], in.Value); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSynced feeds synchronized sequences: step i feeds element i of each
// sequence, in slice order, before step i+1 starts. Processing stops at the
// shortest sequence; differing lengths are reported as a warning, not an
// error.
func (g *Graph) UpdateSynced(seqs []Sequence) (*SyncReport, error) {
	report := &SyncReport{}
	if len(seqs) == 0 {
		return report, nil
	}

	targets := make([]*node, len(seqs))
	shortest := len(seqs[0].Values)
	mismatch := false
	for i, seq := range seqs {
		n, err := g.source("UpdateSynced", seq.ID)
		if err != nil {
			return report, err
		}
		targets[i] = n
		if len(seq.Values) != shortest {
			mismatch = true
		}
		shortest = min(shortest, len(seq.Values))
	}

	if mismatch {
		lengths := make(map[string]int, len(seqs))
		for _, seq := range seqs {
			lengths[seq.ID] = max(lengths[seq.ID], len(seq.Values))
		}
		report.Warning = &LengthMismatchWarning{Lengths: lengths, Processed: shortest}
		g.logger.Warn("synchronized sequences differ in length", logging.Error(report.Warning))
	}

	for step := 0; step < shortest; step++ {
		for i, seq := range seqs {
			if err := g.feed("UpdateSynced", targets[i], seq.Values[step]); err != nil {
				return report, err
			}
		}
		report.Steps++
	}
	return report, nil
}

// source looks up id and checks it has no parents.
func (g *Graph) source(op, id string) (*node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound(op, id)
	}
	if len(n.parents) > 0 {
		return nil, NewError(op).Node(id).Cause(ErrNotSource).Err()
	}
	return n, nil
}

func (g *Graph) feed(op string, n *node, value any) error {
	if g.strategy != Lazy {
		if err := g.apply(op, n, value, metrics.KindExternal); err != nil {
			return err
		}
		return g.cascade(op, n.id)
	}

	prev := n.output
	if err := g.apply(op, n, value, metrics.KindExternal); err != nil {
		return err
	}
	g.deferDelivery(n, prev)
	return nil
}
