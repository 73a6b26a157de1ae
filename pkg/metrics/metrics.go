package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initStructureMetrics()
	r.initPropagationMetrics()
	r.initStrategyMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordNodeAdded counts a node added to a graph
func (r *Registry) RecordNodeAdded() {
	if r == nil {
		return
	}
	r.NodesTotal.Inc()
}

// RecordEdgeAdded counts an edge added to a graph
func (r *Registry) RecordEdgeAdded() {
	if r == nil {
		return
	}
	r.EdgesTotal.Inc()
}

// RecordEdgeRemoved undoes RecordEdgeAdded for a rolled back edge
func (r *Registry) RecordEdgeRemoved() {
	if r == nil {
		return
	}
	r.EdgesTotal.Dec()
}

// RecordCycleRejected counts a connect refused because it closed a cycle
func (r *Registry) RecordCycleRejected() {
	if r == nil {
		return
	}
	r.CyclesRejected.Inc()
}

// RecordTopoRecompute counts a topological order rebuild
func (r *Registry) RecordTopoRecompute() {
	if r == nil {
		return
	}
	r.TopoRecomputes.Inc()
}

// RecordUpdate counts an aggregate update of the given kind
func (r *Registry) RecordUpdate(kind string) {
	if r == nil {
		return
	}
	r.UpdatesTotal.WithLabelValues(kind).Inc()
}

// RecordFiltered counts a value suppressed by an edge filter
func (r *Registry) RecordFiltered() {
	if r == nil {
		return
	}
	r.FilteredTotal.Inc()
}

// RecordPolicyFailure counts a filter or transform failure
func (r *Registry) RecordPolicyFailure(stage string) {
	if r == nil {
		return
	}
	r.PolicyFailures.WithLabelValues(stage).Inc()
}

// RecordAggregateError counts an aggregate rejecting an input
func (r *Registry) RecordAggregateError() {
	if r == nil {
		return
	}
	r.AggregateErrors.Inc()
}

// RecordObserverFailure counts an observer callback that failed
func (r *Registry) RecordObserverFailure() {
	if r == nil {
		return
	}
	r.ObserverFailures.Inc()
}

// AddDirty adjusts the dirty node gauge by delta
func (r *Registry) AddDirty(delta int) {
	if r == nil || delta == 0 {
		return
	}
	r.DirtyNodes.Add(float64(delta))
}

// AddPending adjusts the deferred delivery gauge by delta
func (r *Registry) AddPending(delta int) {
	if r == nil || delta == 0 {
		return
	}
	r.PendingDeliveries.Add(float64(delta))
}

// RecordRecompute records a lazy recompute pass
func (r *Registry) RecordRecompute(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RecomputesTotal.WithLabelValues(status).Inc()
	r.RecomputeDuration.Observe(duration.Seconds())
}

// RecordStrategySwitch counts a change of evaluation strategy
func (r *Registry) RecordStrategySwitch(to string) {
	if r == nil {
		return
	}
	r.StrategySwitches.WithLabelValues(to).Inc()
}
