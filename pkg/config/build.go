package config

import (
	"fmt"
	"io"

	"github.com/dd0wney/chainagg/pkg/chain"
	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
	"github.com/dd0wney/chainagg/pkg/stat"
)

// NewLogger creates the JSON logger described by the logging section.
func (l LoggingConfig) NewLogger(w io.Writer) logging.Logger {
	return logging.NewJSONLogger(w, logging.ParseLevel(l.Level))
}

// Options translates the engine settings into graph options. A nil logger
// or registry is left out.
func (c *Config) Options(logger logging.Logger, reg *metrics.Registry) ([]chain.Option, error) {
	strategy, err := chain.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	fanIn, err := chain.ParseFanInPolicy(c.FanIn)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := []chain.Option{
		chain.WithStrategy(strategy),
		chain.WithFanInPolicy(fanIn),
	}
	if c.Name != "" {
		opts = append(opts, chain.WithName(c.Name))
	}
	if logger != nil {
		opts = append(opts, chain.WithLogger(logger))
	}
	if reg != nil {
		opts = append(opts, chain.WithMetrics(reg))
	}
	return opts, nil
}

// Build creates the graph the configuration describes. opts are applied
// after the configured ones.
func Build(cfg *Config, opts ...chain.Option) (*chain.Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := cfg.Options(nil, nil)
	if err != nil {
		return nil, err
	}
	g := chain.New(append(base, opts...)...)

	for _, n := range cfg.Graph.Nodes {
		agg, err := stat.New(n.Stat)
		if err != nil {
			return nil, fmt.Errorf("config: node %q: %w", n.ID, err)
		}
		if err := g.AddNode(n.ID, agg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	for i, e := range cfg.Graph.Edges {
		edgeOpts, err := e.options()
		if err != nil {
			return nil, fmt.Errorf("config: edge %d: %w", i, err)
		}
		if len(e.From) == 1 {
			err = g.Connect(e.From[0], e.To, edgeOpts...)
		} else {
			err = g.ConnectAll(e.From, e.To, edgeOpts...)
		}
		if err != nil {
			return nil, fmt.Errorf("config: edge %d: %w", i, err)
		}
	}
	return g, nil
}

func (e EdgeConfig) options() ([]chain.EdgeOption, error) {
	var opts []chain.EdgeOption
	filter, err := ParseFilter(e.Filter)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		opts = append(opts, chain.WithFilter(filter))
	}
	transform, err := ParseTransform(e.Transform)
	if err != nil {
		return nil, err
	}
	if transform != nil {
		opts = append(opts, chain.WithTransform(transform))
	}
	return opts, nil
}
