package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Update kinds used as the "kind" label of UpdatesTotal
const (
	KindExternal   = "external"
	KindPropagated = "propagated"
	KindRefreshed  = "refreshed"
)

// Registry holds all metrics for the propagation engine. Several graphs may
// share one registry; gauges are maintained with deltas so they sum across
// graphs. A nil *Registry is valid and records nothing.
type Registry struct {
	// Structure Metrics
	NodesTotal     prometheus.Gauge
	EdgesTotal     prometheus.Gauge
	CyclesRejected prometheus.Counter
	TopoRecomputes prometheus.Counter

	// Propagation Metrics
	UpdatesTotal     *prometheus.CounterVec
	FilteredTotal    prometheus.Counter
	PolicyFailures   *prometheus.CounterVec
	AggregateErrors  prometheus.Counter
	ObserverFailures prometheus.Counter

	// Evaluation Strategy Metrics
	DirtyNodes        prometheus.Gauge
	PendingDeliveries prometheus.Gauge
	RecomputeDuration prometheus.Histogram
	RecomputesTotal   *prometheus.CounterVec
	StrategySwitches  *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)
