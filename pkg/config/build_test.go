package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/chainagg/pkg/chain"
	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
	"github.com/dd0wney/chainagg/pkg/stat"
)

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(pipelineYAML))
	require.NoError(t, err)

	g, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t, "pipeline", g.Name())
	assert.Equal(t, chain.Lazy, g.Strategy())
	assert.Equal(t, chain.FanInStrict, g.FanInPolicy())
	assert.Equal(t, []string{"a", "b", "c", "all"}, g.NodeIDs())
	assert.Equal(t, 4, g.EdgeCount())
	require.NoError(t, g.Validate())

	parents, err := g.Parents("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, parents)

	edge, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.True(t, edge.HasFilter())
	assert.False(t, edge.HasTransform())
}

func TestBuild_Propagates(t *testing.T) {
	cfg, err := Parse([]byte(pipelineYAML))
	require.NoError(t, err)
	g, err := Build(cfg)
	require.NoError(t, err)

	require.NoError(t, g.UpdateSeq("a", stat.Of(1, 2, 3)))

	b, err := g.Value("b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, b, "only a's third mean passes gt 1.5")

	c, err := g.Value("c")
	require.NoError(t, err)
	assert.Equal(t, 9.0, c, "2 * (1 + 1.5 + 2)")

	// Depth first: c's branch reaches "all" on every update, b's only once
	all, err := g.Value("all")
	require.NoError(t, err)
	want := []any{
		[]any{nil, 2.0},
		[]any{nil, 5.0},
		[]any{2.0, 5.0},
		[]any{2.0, 9.0},
	}
	assert.Equal(t, want, all)
}

func TestBuild_ExtraOptions(t *testing.T) {
	cfg := Default()
	cfg.Graph.Nodes = []NodeConfig{{ID: "a", Stat: "count"}}

	var buf bytes.Buffer
	reg := metrics.NewRegistry()
	opts, err := cfg.Options(cfg.Logging.NewLogger(&buf), reg)
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	g, err := Build(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, g.Update("a", "anything"))

	v, err := g.Value("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBuild_EmptyUpstream(t *testing.T) {
	t.Run("variance into mean", func(t *testing.T) {
		cfg := Default()
		cfg.Graph.Nodes = []NodeConfig{
			{ID: "a", Stat: "last"},
			{ID: "v", Stat: "variance"},
			{ID: "m", Stat: "mean"},
		}
		cfg.Graph.Edges = []EdgeConfig{
			{From: []string{"a"}, To: "v"},
			{From: []string{"v"}, To: "m"},
		}
		g, err := Build(cfg)
		require.NoError(t, err)

		require.NoError(t, g.Update("a", 1.0), "variance is still nil after one value")
		m, err := g.Value("m")
		require.NoError(t, err)
		assert.Nil(t, m)

		require.NoError(t, g.Update("a", 3.0))
		m, err = g.Value("m")
		require.NoError(t, err)
		assert.Equal(t, 2.0, m)
	})

	t.Run("filtered fan-in with a silent parent", func(t *testing.T) {
		cfg := Default()
		cfg.Graph.Nodes = []NodeConfig{
			{ID: "a", Stat: "mean"},
			{ID: "b", Stat: "mean"},
			{ID: "c", Stat: "collect"},
		}
		cfg.Graph.Edges = []EdgeConfig{
			{From: []string{"a", "b"}, To: "c", Filter: "gt 0"},
		}
		g, err := Build(cfg)
		require.NoError(t, err)

		require.NoError(t, g.Update("a", 1.0))
		require.NoError(t, g.Update("b", 2.0))
		c, err := g.Value("c")
		require.NoError(t, err)
		assert.Equal(t, []any{[]any{1.0}, []any{1.0, 2.0}}, c)
	})
}

func TestBuild_Invalid(t *testing.T) {
	cfg := Default()
	_, err := Build(cfg)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := LoggingConfig{Level: "warn"}.NewLogger(&buf)
	assert.Equal(t, logging.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
