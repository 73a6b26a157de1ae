package chain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors. Every error returned by a Graph wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateNode = errors.New("duplicate node identifier")
	ErrNodeNotFound  = errors.New("node not found")
	ErrNotSource     = errors.New("node is not a source")
	ErrCycle         = errors.New("edge would create a cycle")
	ErrPolicy        = errors.New("edge policy failed")
	ErrAggregate     = errors.New("aggregate update failed")
	ErrInconsistent  = errors.New("graph structure is inconsistent")
)

// Policy stages reported in Error.Stage
const (
	StageFilter    = "filter"
	StageTransform = "transform"
)

// Error provides structured error information for graph operations.
type Error struct {
	Op      string   // Operation that failed (e.g., "Connect", "Update")
	Node    string   // Node identifier (if applicable)
	Src     string   // Edge source (if applicable)
	Dst     string   // Edge destination (if applicable)
	Stage   string   // Policy stage for policy failures
	Path    []string // Cycle path for cycle errors
	Context string   // Additional context
	Cause   error    // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	switch {
	case e.Src != "" || e.Dst != "":
		fmt.Fprintf(&b, " edge %s -> %s", e.Src, e.Dst)
	case e.Node != "":
		fmt.Fprintf(&b, " node %q", e.Node)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " (%s)", e.Stage)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " [cycle %s]", strings.Join(e.Path, " -> "))
	}
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	fmt.Fprintf(&b, ": %v", e.Cause)
	return b.String()
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op}}
}

func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.Node = id
	return b
}

func (b *ErrorBuilder) Edge(src, dst string) *ErrorBuilder {
	b.err.Src = src
	b.err.Dst = dst
	return b
}

func (b *ErrorBuilder) Stage(stage string) *ErrorBuilder {
	b.err.Stage = stage
	return b
}

func (b *ErrorBuilder) Path(path []string) *ErrorBuilder {
	b.err.Path = append([]string(nil), path...)
	return b
}

func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() *Error {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

func notFound(op, id string) error {
	return NewError(op).Node(id).Cause(ErrNodeNotFound).Err()
}

func policyError(op string, e *Edge, stage string, cause error) error {
	return NewError(op).Edge(e.src, e.dst).Stage(stage).Cause(fmt.Errorf("%w: %w", ErrPolicy, cause)).Err()
}

func aggregateError(op, id string, cause error) error {
	return NewError(op).Node(id).Cause(fmt.Errorf("%w: %w", ErrAggregate, cause)).Err()
}

// IsNotFound returns true if the error is a missing identifier error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsCycle returns true if the error is a rejected cyclic edge.
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}

// IsPolicy returns true if a filter or transform failed.
func IsPolicy(err error) bool {
	return errors.Is(err, ErrPolicy)
}

// LengthMismatchWarning reports synchronized sequences of different
// lengths. It is not fatal: processing stopped at the shortest sequence.
type LengthMismatchWarning struct {
	Lengths   map[string]int
	Processed int
}

func (w *LengthMismatchWarning) Error() string {
	ids := make([]string, 0, len(w.Lengths))
	for id := range w.Lengths {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s=%d", id, w.Lengths[id])
	}
	return fmt.Sprintf("sequence lengths differ (%s): processed %d steps", strings.Join(parts, ", "), w.Processed)
}
