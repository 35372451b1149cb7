package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedYAML = `
name: top
out_ports:
  - {name: out, type: float64}
models:
  - name: src
    kind: test_constant
    params: {period: "00:00:00:005", value: 2.5}
  - name: inner
    coupled:
      in_ports: [{name: in, type: float64}]
      out_ports: [{name: out, type: float64}]
      models:
        - {name: hole, kind: test_sinkhole}
        - {name: echo, kind: test_constant, params: {period: 3}}
      couplings:
        - {from: in, to: hole.in}
        - {from: echo.out, to: out}
couplings:
  - {from: src.out, to: inner.in}
  - {from: inner.out, to: out}
`

func TestParse_NestedNetwork(t *testing.T) {
	spec, err := Parse([]byte(nestedYAML))
	require.NoError(t, err)

	assert.Equal(t, "top", spec.Name)
	require.Len(t, spec.Models, 2)
	assert.Equal(t, "test_constant", spec.Models[0].Kind)
	assert.Equal(t, 2.5, spec.Models[0].Params["value"])
	require.NotNil(t, spec.Models[1].Coupled)
	assert.Len(t, spec.Models[1].Coupled.Models, 2)
	assert.Equal(t, CouplingSpec{From: "src.out", To: "inner.in"}, spec.Couplings[0])
	assert.NoError(t, spec.Validate())
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("name: top\nmodels: []\nhorizon: 10\n"))
	assert.Error(t, err)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.yaml")
	require.NoError(t, os.WriteFile(path, []byte(nestedYAML), 0o644))

	spec, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "top", spec.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSpec_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "models: [{name: a, kind: test_sinkhole}]"},
		{"no models", "name: top\nmodels: []"},
		{"unknown port type", "name: top\nin_ports: [{name: x, type: complex128}]\nmodels: [{name: a, kind: test_sinkhole}]"},
		{"unnamed port", "name: top\nin_ports: [{type: bool}]\nmodels: [{name: a, kind: test_sinkhole}]"},
		{"unnamed model", "name: top\nmodels: [{kind: test_sinkhole}]"},
		{"unknown kind", "name: top\nmodels: [{name: a, kind: teleporter}]"},
		{"neither kind nor coupled", "name: top\nmodels: [{name: a}]"},
		{"both kind and coupled", "name: top\nmodels: [{name: a, kind: test_sinkhole, coupled: {models: [{name: b, kind: test_sinkhole}]}}]"},
		{"nested name mismatch", "name: top\nmodels: [{name: a, coupled: {name: b, models: [{name: c, kind: test_sinkhole}]}}]"},
		{"params on coupled", "name: top\nmodels: [{name: a, params: {x: 1}, coupled: {models: [{name: c, kind: test_sinkhole}]}}]"},
		{"bad endpoint", "name: top\nmodels: [{name: a, kind: test_sinkhole}]\ncouplings: [{from: a.b.c, to: a.in}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Error(t, spec.Validate())
		})
	}
}

func TestPortTypeNames(t *testing.T) {
	assert.Equal(t, []string{"bool", "float64", "int", "string"}, PortTypeNames())
	_, ok := PortType("uint8")
	assert.False(t, ok)
}
