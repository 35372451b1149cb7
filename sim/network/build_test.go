package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

func TestBuild_NestedNetworkRuns(t *testing.T) {
	// GIVEN a parsed two-level description
	spec, err := Parse([]byte(nestedYAML))
	require.NoError(t, err)

	// WHEN it is built and run
	top, err := Build(spec)
	require.NoError(t, err)
	sink := &sim.MemorySink{}
	s, err := sim.NewSimulator(top, sim.Config{Sinks: []sim.Sink{sink}})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), 7))

	// THEN the nested echo reaches the top output every 3 ticks
	assert.Equal(t, []string{"src", "inner/hole", "inner/echo"}, s.Paths())
	assert.Equal(t, []sim.Time{3, 6}, sink.Times("out"))
	assert.Equal(t, []any{0.0, 0.0}, sink.Values("out"))
}

func TestBuild_StructuralErrorsAreConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"dangling endpoint", "name: top\nmodels: [{name: a, kind: test_sinkhole}]\ncouplings: [{from: ghost.out, to: a.in}]"},
		{"type mismatch", "name: top\nin_ports: [{name: flag, type: bool}]\nmodels: [{name: a, kind: test_sinkhole}]\ncouplings: [{from: flag, to: a.in}]"},
		{"duplicate child", "name: top\nmodels: [{name: a, kind: test_sinkhole}, {name: a, kind: test_sinkhole}]"},
		{"bad params", "name: top\nmodels: [{name: a, kind: test_constant, params: {speed: 3}}]"},
		{"invalid spec", "name: top\nmodels: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = Build(spec)

			require.Error(t, err)
			assert.True(t, sim.IsConfigError(err), "got %v", err)
		})
	}
}

func TestRegistry(t *testing.T) {
	assert.Contains(t, Kinds(), "test_constant")
	_, ok := Lookup("test_sinkhole")
	assert.True(t, ok)
	assert.Panics(t, func() { Register("test_sinkhole", func(string, Params) (*sim.Atomic, error) { return nil, nil }) })
	assert.Panics(t, func() { Register("", nil) })
}

func TestDescribe(t *testing.T) {
	spec, err := Parse([]byte(nestedYAML))
	require.NoError(t, err)
	top, err := Build(spec)
	require.NoError(t, err)

	lines := Describe(top)

	require.Len(t, lines, 5)
	assert.Equal(t, "top: coupled, 2 children, 2 couplings, in [], out [out:float64]", lines[0])
	assert.Equal(t, "top/src: atomic, in [], out [out:float64]", lines[1])
	assert.Equal(t, "top/inner/hole: atomic, in [in:float64], out []", lines[3])
}
