// Package config loads graph definitions from YAML.
//
// A file names the evaluation strategy and fan-in policy, the logging and
// metrics settings of the demo binary, and the graph itself:
//
//	name: pipeline
//	strategy: lazy
//	graph:
//	  nodes:
//	    - {id: raw, stat: mean}
//	    - {id: smooth, stat: mean}
//	  edges:
//	    - {from: [raw], to: smooth, filter: "gt 0", transform: "mul 2"}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/chainagg/pkg/stat"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level configuration document.
type Config struct {
	Name     string        `yaml:"name" validate:"max=128"`
	Strategy string        `yaml:"strategy" validate:"omitempty,oneof=eager lazy partial"`
	FanIn    string        `yaml:"fan_in" validate:"omitempty,oneof=permissive strict"`
	Logging  LoggingConfig `yaml:"logging"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Graph    GraphConfig   `yaml:"graph"`
}

// LoggingConfig selects the log level. Output is always JSON lines.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json"`
}

// MetricsConfig controls the Prometheus endpoint of the demo binary.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// GraphConfig lists nodes and edges in declaration order.
type GraphConfig struct {
	Nodes []NodeConfig `yaml:"nodes" validate:"required,min=1,dive"`
	Edges []EdgeConfig `yaml:"edges" validate:"dive"`
}

// NodeConfig declares one node and the reference aggregate it wraps.
type NodeConfig struct {
	ID   string `yaml:"id" validate:"required,max=128"`
	Stat string `yaml:"stat" validate:"required"`
}

// EdgeConfig declares edges from every listed source into To, sharing one
// filter and transform. Several sources make To a fan-in node.
type EdgeConfig struct {
	From      []string `yaml:"from" validate:"required,min=1,dive,required"`
	To        string   `yaml:"to" validate:"required"`
	Filter    string   `yaml:"filter"`
	Transform string   `yaml:"transform"`
}

// Default returns a configuration with every optional field set.
func Default() *Config {
	return &Config{
		Strategy: "eager",
		FanIn:    "permissive",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// Parse decodes a YAML document over Default and validates it. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks field rules and the cross-references between nodes and
// edges. All problems are reported together.
func (c *Config) Validate() error {
	cv := NewConfigValidator("config").Struct(c)

	cv.When(c.Metrics.Enabled, func(cv *ConfigValidator) {
		cv.Required("metrics.addr", c.Metrics.Addr)
	})

	known := make(map[string]bool, len(c.Graph.Nodes))
	for i, n := range c.Graph.Nodes {
		field := fmt.Sprintf("graph.nodes[%d]", i)
		if n.ID != "" && known[n.ID] {
			cv.Custom(field+".id", func() error { return fmt.Errorf("duplicate node %q", n.ID) })
		}
		known[n.ID] = true
		if n.Stat != "" {
			cv.OneOf(field+".stat", n.Stat, stat.Kinds())
		}
	}

	for i, e := range c.Graph.Edges {
		field := fmt.Sprintf("graph.edges[%d]", i)
		for _, src := range append(append([]string(nil), e.From...), e.To) {
			if src != "" && !known[src] {
				cv.Custom(field, func() error { return fmt.Errorf("unknown node %q", src) })
			}
		}
		cv.Custom(field+".filter", func() error {
			_, err := ParseFilter(e.Filter)
			return err
		})
		cv.Custom(field+".transform", func() error {
			_, err := ParseTransform(e.Transform)
			return err
		})
	}

	return cv.Validate()
}
