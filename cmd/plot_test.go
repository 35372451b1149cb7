package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdevs-sim/pdevs-sim/sim"
	"github.com/pdevs-sim/pdevs-sim/sim/store"
)

func recordedStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	run, err := db.BeginRun("bot", 0, 100)
	require.NoError(t, err)
	for i, duty := range []float64{0.5, 1, 0} {
		out := sim.NewBag()
		out.Add("rightMotor1", duty)
		out.Add("label", "tick")
		require.NoError(t, run.Emit(sim.Time(10*(i+1)), out))
	}
	require.NoError(t, run.Finish(sim.NewMetrics()))
	return db, run.ID
}

func TestPlotRun_LatestRun_NumericPortsOnly(t *testing.T) {
	db, _ := recordedStore(t)
	plotHeight, plotWidth = 5, 20
	var out bytes.Buffer

	err := plotRun(db, "", "", &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "rightMotor1 (3 values, 00:00:00:010 to 00:00:00:030)")
	assert.NotContains(t, out.String(), "label (")
}

func TestPlotRun_NonNumericPort(t *testing.T) {
	db, id := recordedStore(t)

	err := plotRun(db, id, "label", &bytes.Buffer{})

	assert.ErrorContains(t, err, "no numeric outputs")
}

func TestPlotRun_UnknownRun(t *testing.T) {
	db, _ := recordedStore(t)

	err := plotRun(db, "missing", "", &bytes.Buffer{})

	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	db, id := recordedStore(t)
	var out bytes.Buffer

	require.NoError(t, listRuns(db, &out))

	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "ended at 00:00:00:000, 0 cycles")
}
