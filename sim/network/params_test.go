package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

func TestParams_Getters(t *testing.T) {
	p := Params{
		"threshold": 0.1,
		"count":     3,
		"whole":     4.0,
		"enabled":   true,
		"label":     "bot",
		"period":    "00:00:01:000",
		"ticks":     250,
		"samples":   []any{1, 0.5},
		"flags":     []any{true, false},
	}

	f, err := p.Float("threshold", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.1, f)
	f, err = p.Float("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	n, err := p.Int("whole", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	b, err := p.Bool("enabled", false)
	require.NoError(t, err)
	assert.True(t, b)

	s, err := p.String("label", "")
	require.NoError(t, err)
	assert.Equal(t, "bot", s)

	tm, err := p.Time("period", 0)
	require.NoError(t, err)
	assert.Equal(t, sim.TicksPerSecond, tm)
	tm, err = p.Time("ticks", 0)
	require.NoError(t, err)
	assert.Equal(t, sim.Time(250), tm)

	fs, err := p.Floats("samples")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, fs)

	bs, err := p.Bools("flags")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, bs)
}

func TestParams_DefaultsWhenAbsent(t *testing.T) {
	var p Params

	f, err := p.Float("x", 1.5)
	assert.NoError(t, err)
	assert.Equal(t, 1.5, f)
	tm, err := p.Time("x", sim.Infinity)
	assert.NoError(t, err)
	assert.Equal(t, sim.Infinity, tm)
	fs, err := p.Floats("x")
	assert.NoError(t, err)
	assert.Nil(t, fs)
}

func TestParams_TypeErrors(t *testing.T) {
	p := Params{"s": "text", "f": 1.5, "list": []any{"a"}}

	_, err := p.Float("s", 0)
	assert.Error(t, err)
	_, err = p.Int("f", 0)
	assert.Error(t, err)
	_, err = p.Bool("f", false)
	assert.Error(t, err)
	_, err = p.String("f", "")
	assert.Error(t, err)
	_, err = p.Time("s", 0)
	assert.Error(t, err)
	_, err = p.Time("f", 0)
	assert.Error(t, err)
	_, err = p.Floats("list")
	assert.Error(t, err)
	_, err = p.Bools("list")
	assert.Error(t, err)
	_, err = p.Floats("f")
	assert.Error(t, err)
}

func TestParams_Known(t *testing.T) {
	p := Params{"period": 1, "valeu": 2}

	err := p.Known("period", "value")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "valeu")
	assert.NoError(t, Params{"period": 1}.Known("period", "value"))
}
