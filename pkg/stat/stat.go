// Package stat provides reference aggregates for chain graphs. Each type
// satisfies chain.Aggregate.
//
// Numeric aggregates accept any Go integer or float, and []any or
// []float64 collections (the fan-in input shape); a collection contributes
// each of its elements. nil, whether top-level or inside a collection,
// contributes nothing, so an upstream aggregate that has not produced a value
// yet leaves the downstream state as it was.
package stat

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/exp/constraints"
	gonumstat "gonum.org/v1/gonum/stat"
)

// ErrUnsupported is returned for inputs a numeric aggregate cannot read.
var ErrUnsupported = errors.New("unsupported input")

// Aggregator is the update/read pair every aggregate here implements.
type Aggregator interface {
	Update(value any) error
	Value() any
}

// Number is any Go integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Of converts numbers to the []any form accepted by UpdateSeq.
func Of[T Number](xs ...T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// Mean is a running arithmetic mean. Its value is nil until the first
// observation.
type Mean struct {
	sum float64
	n   int
}

func NewMean() *Mean { return &Mean{} }

func (m *Mean) Update(value any) error {
	xs, err := Floats(value)
	if err != nil {
		return err
	}
	for _, x := range xs {
		m.sum += x
		m.n++
	}
	return nil
}

func (m *Mean) Value() any {
	if m.n == 0 {
		return nil
	}
	return m.sum / float64(m.n)
}

// Sum is a running total, starting at 0.
type Sum struct {
	total float64
}

func NewSum() *Sum { return &Sum{} }

func (s *Sum) Update(value any) error {
	xs, err := Floats(value)
	if err != nil {
		return err
	}
	for _, x := range xs {
		s.total += x
	}
	return nil
}

func (s *Sum) Value() any { return s.total }

// Count counts updates, whatever their value.
type Count struct {
	n int
}

func NewCount() *Count { return &Count{} }

func (c *Count) Update(any) error {
	c.n++
	return nil
}

func (c *Count) Value() any { return c.n }

// Last remembers the most recent input as is.
type Last struct {
	value any
}

func NewLast() *Last { return &Last{} }

func (l *Last) Update(value any) error {
	l.value = value
	return nil
}

func (l *Last) Value() any { return l.value }

// Collect records every input in arrival order. Value returns a copy.
type Collect struct {
	values []any
}

func NewCollect() *Collect { return &Collect{} }

func (c *Collect) Update(value any) error {
	if vs, ok := value.([]any); ok {
		value = slices.Clone(vs)
	}
	c.values = append(c.values, value)
	return nil
}

func (c *Collect) Value() any { return slices.Clone(c.values) }

// Variance is the unbiased sample variance of every observation, nil until
// two observations have been seen.
type Variance struct {
	xs []float64
}

func NewVariance() *Variance { return &Variance{} }

func (v *Variance) Update(value any) error {
	xs, err := Floats(value)
	if err != nil {
		return err
	}
	v.xs = append(v.xs, xs...)
	return nil
}

func (v *Variance) Value() any {
	if len(v.xs) < 2 {
		return nil
	}
	return gonumstat.Variance(v.xs, nil)
}

var constructors = map[string]func() Aggregator{
	"mean":     func() Aggregator { return NewMean() },
	"sum":      func() Aggregator { return NewSum() },
	"count":    func() Aggregator { return NewCount() },
	"last":     func() Aggregator { return NewLast() },
	"collect":  func() Aggregator { return NewCollect() },
	"variance": func() Aggregator { return NewVariance() },
}

// New creates an aggregate by kind name.
func New(kind string) (Aggregator, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("stat: unknown kind %q (known: %v)", kind, Kinds())
	}
	return ctor(), nil
}

// Kinds lists the names accepted by New, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Floats reads value as a list of floats. nil reads as an empty list.
func Floats(value any) ([]float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, 0, len(v))
		for _, elem := range v {
			if elem == nil {
				continue
			}
			xs, err := Floats(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, xs...)
		}
		return out, nil
	}
	x, err := Float(value)
	if err != nil {
		return nil, err
	}
	return []float64{x}, nil
}

// Float reads a single numeric value.
func Float(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupported, value)
}
