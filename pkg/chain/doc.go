// Package chain implements the propagation core of a chained-aggregation
// engine.
//
// A Graph is a DAG whose nodes each own an incrementally updatable
// Aggregate. Edges carry an optional filter and transform that gate and
// reshape the value travelling from a parent's output to a child's input.
// External updates enter at source nodes and are pushed downstream under
// one of three evaluation strategies:
//
//   - Eager: every update cascades synchronously through all descendants.
//   - Partial: currently behaves exactly like Eager.
//   - Lazy: the source is updated immediately, its descendants are marked
//     dirty and the delivery is queued; a read of a dirty node (or an
//     explicit Recompute) replays the queue in order, so the final values
//     match what Eager would have produced.
//
// A child with one parent receives the parent's value. A child with several
// parents (fan-in) receives a []any holding the accepted values of its
// parents in parent-declaration order. FanInStrict skips the update unless
// every parent edge accepts.
//
// # Structure
//
// Every Connect runs a three-color DFS over the whole graph and rolls the
// edge back if it closes a cycle. The topological order (Kahn) is cached
// and rebuilt lazily after structural changes.
//
// # Concurrency
//
// Graph has no internal locking and assumes a single writer. Use
// Synchronized when several goroutines drive the same graph.
package chain
