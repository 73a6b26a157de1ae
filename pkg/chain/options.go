package chain

import (
	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
)

// Option configures a Graph at construction.
type Option func(*Graph)

// WithStrategy sets the initial evaluation strategy. Default Eager.
func WithStrategy(s Strategy) Option {
	return func(g *Graph) {
		if s.valid() {
			g.strategy = s
		}
	}
}

// WithFanInPolicy sets the fan-in arity policy. Default FanInPermissive.
func WithFanInPolicy(p FanInPolicy) Option {
	return func(g *Graph) {
		g.fanIn = p
	}
}

// WithLogger sets the logger. Default is a NopLogger.
func WithLogger(l logging.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics records engine metrics into r. Default nil (disabled).
func WithMetrics(r *metrics.Registry) Option {
	return func(g *Graph) {
		g.metrics = r
	}
}

// WithName sets a human readable name used in logs.
func WithName(name string) Option {
	return func(g *Graph) {
		g.name = name
	}
}
