package chain

import (
	"fmt"
)

// Filter decides whether a candidate value crosses an edge.
type Filter func(v any) (bool, error)

// Transform maps a candidate value to the value delivered downstream.
type Transform func(v any) (any, error)

// Predicate adapts an infallible predicate to a Filter.
func Predicate(fn func(any) bool) Filter {
	return func(v any) (bool, error) {
		return fn(v), nil
	}
}

// Mapping adapts an infallible function to a Transform.
func Mapping(fn func(any) any) Transform {
	return func(v any) (any, error) {
		return fn(v), nil
	}
}

// EdgeKey identifies an edge by its ordered endpoints.
type EdgeKey struct {
	Src string
	Dst string
}

// Edge is an immutable directed relationship between two nodes. A nil
// filter or transform means none.
type Edge struct {
	src       string
	dst       string
	filter    Filter
	transform Transform
	seq       int
}

// EdgeOption sets the policy of an edge created by Connect.
type EdgeOption func(*Edge)

// WithFilter sets the edge filter.
func WithFilter(f Filter) EdgeOption {
	return func(e *Edge) {
		e.filter = f
	}
}

// WithTransform sets the edge transform.
func WithTransform(t Transform) EdgeOption {
	return func(e *Edge) {
		e.transform = t
	}
}

func newEdge(src, dst string, opts []EdgeOption) *Edge {
	e := &Edge{src: src, dst: dst}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Edge) Source() string       { return e.src }
func (e *Edge) Destination() string  { return e.dst }
func (e *Edge) Key() EdgeKey         { return EdgeKey{Src: e.src, Dst: e.dst} }
func (e *Edge) HasFilter() bool      { return e.filter != nil }
func (e *Edge) HasTransform() bool   { return e.transform != nil }
func (e *Edge) Filter() Filter       { return e.filter }
func (e *Edge) Transform() Transform { return e.transform }

func (e *Edge) String() string {
	return e.src + " -> " + e.dst
}

// evaluate runs filter then transform on v. The transform is skipped when
// the filter rejects. Policy errors and panics come back wrapped with the
// edge.
func (e *Edge) evaluate(op string, v any) (out any, accepted bool, err error) {
	if e.filter != nil {
		pass, err := callFilter(e.filter, v)
		if err != nil {
			return nil, false, policyError(op, e, StageFilter, err)
		}
		if !pass {
			return nil, false, nil
		}
	}
	if e.transform != nil {
		out, err := callTransform(e.transform, v)
		if err != nil {
			return nil, false, policyError(op, e, StageTransform, err)
		}
		return out, true, nil
	}
	return v, true, nil
}

func callFilter(f Filter, v any) (pass bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f(v)
}

func callTransform(t Transform, v any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t(v)
}
