package chain

import (
	"fmt"
	"strings"

	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
)

// Aggregate is the capability a node wraps. The engine never looks inside
// it. Value should not return memory the aggregate keeps mutating.
type Aggregate interface {
	// Update feeds one input: a single value, or a []any for fan-in nodes.
	Update(value any) error
	// Value returns the current output.
	Value() any
}

// Strategy selects how updates travel through the graph.
type Strategy int

const (
	Eager Strategy = iota
	Lazy
	// Partial is reserved for subgraph-limited propagation and currently
	// behaves like Eager.
	Partial
)

func (s Strategy) String() string {
	switch s {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Partial:
		return "partial"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

func (s Strategy) valid() bool {
	return s == Eager || s == Lazy || s == Partial
}

// ParseStrategy parses "eager", "lazy" or "partial" (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eager", "":
		return Eager, nil
	case "lazy":
		return Lazy, nil
	case "partial":
		return Partial, nil
	}
	return 0, NewError("ParseStrategy").Context(s).Cause(ErrInvalidInput).Err()
}

// FanInPolicy decides what a fan-in node does when some parent edges
// reject their value.
type FanInPolicy int

const (
	// FanInPermissive updates the node with whichever values passed, so the
	// collection may be shorter than the parent count.
	FanInPermissive FanInPolicy = iota
	// FanInStrict updates the node only when every parent edge passed.
	FanInStrict
)

func (p FanInPolicy) String() string {
	switch p {
	case FanInPermissive:
		return "permissive"
	case FanInStrict:
		return "strict"
	default:
		return fmt.Sprintf("fanin(%d)", int(p))
	}
}

// ParseFanInPolicy parses "permissive" or "strict" (case-insensitive).
func ParseFanInPolicy(s string) (FanInPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permissive", "":
		return FanInPermissive, nil
	case "strict":
		return FanInStrict, nil
	}
	return 0, NewError("ParseFanInPolicy").Context(s).Cause(ErrInvalidInput).Err()
}

// Event describes one aggregate update.
type Event struct {
	Node  string
	Value any // output after the update
	Input any // value fed into the aggregate
}

// Observer is called after every update of the node it is registered on.
// Errors and panics are logged and counted, never returned to the caller
// of the update.
type Observer func(Event) error

// Input is one external value addressed to a source node.
type Input struct {
	ID    string
	Value any
}

// Sequence is an ordered run of external values for one source node.
type Sequence struct {
	ID     string
	Values []any
}

type node struct {
	id        string
	agg       Aggregate
	parents   []string
	children  []string
	output    any
	input     any
	observers []observerEntry
}

type observerEntry struct {
	id int
	fn Observer
}

// dirtyMark records why a node is dirty. Marks accumulate as a bit set.
type dirtyMark uint8

const (
	markPending dirtyMark = 1 << iota // downstream of a deferred delivery
	markSwitch                        // strategy switched into lazy
	markRefresh                       // explicit Invalidate
)

// delivery is a source output whose cascade was deferred by lazy mode.
type delivery struct {
	source string
	output any
}

// Graph is the aggregate-of-aggregates. The zero value is not usable; call
// New.
type Graph struct {
	id   string
	name string

	nodes map[string]*node
	order []string // insertion order
	edges map[EdgeKey]*Edge
	seq   int

	topo      []string
	topoValid bool
	reach     map[string][]string // descendants per node, dropped with topo

	strategy Strategy
	fanIn    FanInPolicy

	dirty     map[string]dirtyMark
	pending   []delivery
	baseline  map[string]any // source outputs as seen by the next replayed delivery
	replaying bool

	nextObserver int

	logger  logging.Logger
	metrics *metrics.Registry
}
