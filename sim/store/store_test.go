package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdevs-sim/pdevs-sim/sim"
	"github.com/pdevs-sim/pdevs-sim/sim/library"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginRun_RegistersUnfinishedRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.BeginRun("seeedBot", 0, 600000)
	require.NoError(t, err)

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "seeedBot", got.Network)
	assert.Equal(t, sim.Time(0), got.Start)
	assert.Equal(t, sim.Time(600000), got.Stop)
	assert.Nil(t, got.FinishedAt)
	assert.False(t, got.StartedAt.IsZero())
}

func TestGetRun_Unknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun("nope")

	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestRunEmit_RecordsEveryMessageAsJSON(t *testing.T) {
	// GIVEN a run
	s := newTestStore(t)
	run, err := s.BeginRun("bot", 0, 100)
	require.NoError(t, err)

	// WHEN two instants are emitted
	first := sim.NewBag()
	first.Add("rightMotor1", 0.5)
	first.Add("rightMotor2", true)
	second := sim.NewBag()
	second.Add("rightMotor1", 1.0)
	second.Add("rightMotor1", 0.25)
	require.NoError(t, run.Emit(10, first))
	require.NoError(t, run.Emit(20, second))
	require.NoError(t, run.Emit(30, sim.NewBag()))

	// THEN each port's messages come back in emission order
	duty, err := s.Outputs(run.ID, "rightMotor1")
	require.NoError(t, err)
	require.Len(t, duty, 3)
	assert.Equal(t, []sim.Time{10, 20, 20}, []sim.Time{duty[0].Tick, duty[1].Tick, duty[2].Tick})
	assert.JSONEq(t, "0.25", string(duty[2].Value))

	all, err := s.Outputs(run.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	ports, err := s.Ports(run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"rightMotor1", "rightMotor2"}, ports)
}

func TestRunEmit_UnencodableValue_WritesNothing(t *testing.T) {
	s := newTestStore(t)
	run, err := s.BeginRun("bot", 0, 100)
	require.NoError(t, err)

	out := sim.NewBag()
	out.Add("a", 1.0)
	out.Add("b", make(chan int))
	err = run.Emit(5, out)

	assert.Error(t, err)
	got, err := s.Outputs(run.ID, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOutputFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"0.75", 0.75, true},
		{"3", 3, true},
		{"true", 1, true},
		{"false", 0, true},
		{`"left"`, 0, false},
		{`{"a":1}`, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			v, ok := Output{Value: json.RawMessage(tc.raw)}.Float()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestListRuns_OldestFirst(t *testing.T) {
	s := newTestStore(t)
	a, err := s.BeginRun("first", 0, 10)
	require.NoError(t, err)
	b, err := s.BeginRun("second", 0, 10)
	require.NoError(t, err)

	runs, err := s.ListRuns()

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, a.ID, runs[0].ID)
	assert.Equal(t, b.ID, runs[1].ID)
}

func TestOpen_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.BeginRun("bot", 0, 10)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "bot", got.Network)
}

func TestRun_AsSimulatorSink_RecordsOutputsAndMetrics(t *testing.T) {
	// GIVEN generator(period 5, value 1.5) -> passthrough -> top "out", recorded
	gen, err := library.NewGenerator("gen", 5, 1.5)
	require.NoError(t, err)
	cp, err := library.NewPassthrough[float64]("copy")
	require.NoError(t, err)
	top := sim.MustCoupled("top", []sim.Model{gen, cp}, nil,
		sim.Ports(sim.NewPort[float64]("out")),
		[]sim.Coupling{sim.IC("gen", "out", "copy", "in"), sim.EOC("copy", "out", "out")})

	s := newTestStore(t)
	run, err := s.BeginRun("top", 0, 12)
	require.NoError(t, err)
	simulator, err := sim.NewSimulator(top, sim.Config{Sinks: []sim.Sink{run}})
	require.NoError(t, err)

	// WHEN run until 12 and finished
	require.NoError(t, simulator.Run(context.Background(), 12))
	require.NoError(t, run.Finish(simulator.Metrics()))

	// THEN both emissions are stored and the run carries the final metrics
	outs, err := s.Outputs(run.ID, "out")
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, sim.Time(5), outs[0].Tick)
	assert.Equal(t, sim.Time(10), outs[1].Tick)
	v, ok := outs[1].Float()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	info, err := s.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, info.FinishedAt)
	assert.Equal(t, sim.Time(10), info.EndTick)
	assert.Equal(t, 4, info.Cycles)
	assert.Equal(t, simulator.Metrics().TotalTransitions(), info.Transitions)
	assert.Equal(t, 0, info.Dropped)
}
