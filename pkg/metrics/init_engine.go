package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStructureMetrics() {
	r.NodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainagg_nodes_total",
			Help: "Total number of nodes across graphs",
		},
	)

	r.EdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainagg_edges_total",
			Help: "Total number of edges across graphs",
		},
	)

	r.CyclesRejected = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chainagg_cycles_rejected_total",
			Help: "Connect attempts rejected because they would close a cycle",
		},
	)

	r.TopoRecomputes = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chainagg_topological_sorts_total",
			Help: "Number of times a stale topological order was rebuilt",
		},
	)
}

func (r *Registry) initPropagationMetrics() {
	r.UpdatesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainagg_updates_total",
			Help: "Aggregate updates by origin",
		},
		[]string{"kind"},
	)

	r.FilteredTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chainagg_filtered_total",
			Help: "Values suppressed by an edge filter",
		},
	)

	r.PolicyFailures = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainagg_policy_failures_total",
			Help: "Edge filter or transform failures",
		},
		[]string{"stage"},
	)

	r.AggregateErrors = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chainagg_aggregate_errors_total",
			Help: "Inputs rejected by a node aggregate",
		},
	)

	r.ObserverFailures = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chainagg_observer_failures_total",
			Help: "Update observer callbacks that returned an error or panicked",
		},
	)
}

func (r *Registry) initStrategyMetrics() {
	r.DirtyNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainagg_dirty_nodes",
			Help: "Nodes currently marked dirty under lazy evaluation",
		},
	)

	r.PendingDeliveries = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainagg_pending_deliveries",
			Help: "Deferred source deliveries waiting for recompute",
		},
	)

	r.RecomputeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainagg_recompute_duration_seconds",
			Help:    "Duration of lazy recompute passes",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	r.RecomputesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainagg_recomputes_total",
			Help: "Lazy recompute passes by outcome",
		},
		[]string{"status"},
	)

	r.StrategySwitches = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainagg_strategy_switches_total",
			Help: "Evaluation strategy changes by target strategy",
		},
		[]string{"to"},
	)
}
