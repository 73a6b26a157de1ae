package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/chainagg/pkg/stat"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		expr string
		in   any
		want bool
	}{
		{"gt 1.5", 2.0, true},
		{"gt 1.5", 1.5, false},
		{"ge 1.5", 1.5, true},
		{"lt 0", -1, true},
		{"le 3", 4, false},
		{"EQ 2", int64(2), true},
		{"ne 2", 2.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			got, err := f(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Nil(t, f, "empty expression means no filter")

	for _, expr := range []string{"gt", "gt x", "between 1", "gt 1 2", "abs"} {
		_, err := ParseFilter(expr)
		assert.Error(t, err, expr)
	}

	f, err = ParseFilter("gt 0")
	require.NoError(t, err)
	_, err = f("text")
	assert.ErrorIs(t, err, stat.ErrUnsupported)

	ok, err := f(nil)
	require.NoError(t, err)
	assert.False(t, ok, "nil never passes a numeric filter")
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		expr string
		in   any
		want float64
	}{
		{"mul 2", 1.5, 3},
		{"div 4", 2, 0.5},
		{"add -1", 1, 0},
		{"sub 0.5", 1.0, 0.5},
		{"abs", -3, 3},
		{"neg", 2.0, -2},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			fn, err := ParseTransform(tt.expr)
			require.NoError(t, err)
			got, err := fn(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTransform_Errors(t *testing.T) {
	fn, err := ParseTransform("  ")
	require.NoError(t, err)
	assert.Nil(t, fn)

	for _, expr := range []string{"mul", "div 0", "pow 2", "abs 1", "neg x"} {
		_, err := ParseTransform(expr)
		assert.Error(t, err, expr)
	}
}

func TestParseTransform_Nil(t *testing.T) {
	for _, expr := range []string{"mul 2", "neg"} {
		fn, err := ParseTransform(expr)
		require.NoError(t, err)
		got, err := fn(nil)
		require.NoError(t, err, expr)
		assert.Nil(t, got, expr)
	}
}
