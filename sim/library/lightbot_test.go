package library

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdevs-sim/pdevs-sim/sim"
	"github.com/pdevs-sim/pdevs-sim/sim/internal/testutil"
)

func TestLightBot_Steer(t *testing.T) {
	bot := LightBot{Threshold: DefaultLightThreshold}
	tests := []struct {
		name  string
		state LightBotState
		want  DriveState
	}{
		{"lost ground", LightBotState{Ground: false, Left: 0.9, Right: 0.1}, DriveStop},
		{"left brighter", LightBotState{Ground: true, Left: 0.8, Right: 0.2}, DriveRight},
		{"right brighter", LightBotState{Ground: true, Left: 0.2, Right: 0.8}, DriveLeft},
		{"within threshold", LightBotState{Ground: true, Left: 0.5, Right: 0.45}, DriveStraight},
		{"dark", LightBotState{Ground: true}, DriveStraight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bot.steer(tt.state))
		})
	}
}

func TestLightBot_TransitionsAndTimeAdvance(t *testing.T) {
	bot := LightBot{Threshold: DefaultLightThreshold}
	s := LightBotState{Dir: DriveStraight, Ground: true}
	assert.Equal(t, sim.Infinity, bot.TimeAdvance(s))

	in := sim.NewBag()
	sim.Put(in, LeftLightSens, 0.9)
	s = bot.External(s, 3, in)
	assert.Equal(t, DriveRight, s.Dir)
	assert.Equal(t, sim.Time(0), bot.TimeAdvance(s))

	out := bot.Output(s)
	assert.Equal(t, []float64{0.5}, sim.Messages(out, RightMotor1))
	assert.Equal(t, []float64{1}, sim.Messages(out, LeftMotor1))
	assert.Equal(t, []bool{true}, sim.Messages(out, RightMotor2))

	s = bot.Internal(s)
	assert.Equal(t, sim.Infinity, bot.TimeAdvance(s))
	assert.Equal(t, DriveRight, s.Dir, "internal only clears the pending report")
}

func TestMotors_StopDisablesBothSides(t *testing.T) {
	assert.Equal(t, MotorCommand{}, Motors(DriveStop))
	assert.Equal(t, "stop", DriveStop.String())
	assert.Equal(t, "left", DriveLeft.String())
}

func TestNewLightBot_RejectsNegativeThreshold(t *testing.T) {
	_, err := NewLightBot("bot", -0.1)
	assert.True(t, sim.IsConfigError(err))
}

// lightBotHarness exposes the robot's ports on the top model.
func lightBotHarness(t *testing.T) *sim.Coupled {
	t.Helper()
	bot, err := NewLightBot("bot", DefaultLightThreshold)
	require.NoError(t, err)
	var couplings []sim.Coupling
	for _, p := range bot.InPorts() {
		couplings = append(couplings, sim.EIC(p.Name(), "bot", p.Name()))
	}
	for _, p := range bot.OutPorts() {
		couplings = append(couplings, sim.EOC("bot", p.Name(), p.Name()))
	}
	return sim.MustCoupled("top", []sim.Model{bot}, bot.InPorts(), bot.OutPorts(), couplings)
}

func renderEmissions(sink *sim.MemorySink) []byte {
	var buf bytes.Buffer
	for _, e := range sink.Emissions {
		fmt.Fprintf(&buf, "%d", int64(e.Time))
		for _, port := range e.Out.PortNames() {
			for _, v := range e.Out[port] {
				fmt.Fprintf(&buf, " %s=%v", port, v)
			}
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func TestLightBot_DriveSequence_Golden(t *testing.T) {
	// GIVEN sensor readings that turn, stop, resume and turn the other way
	src := sim.NewSliceSource(
		sim.Stimulus{Time: 1, Port: "rightLightSens", Value: 0.2},
		sim.Stimulus{Time: 1, Port: "leftLightSens", Value: 0.8},
		sim.Stimulus{Time: 1, Port: "centerIR", Value: true},
		sim.Stimulus{Time: 2, Port: "centerIR", Value: false},
		sim.Stimulus{Time: 3, Port: "rightLightSens", Value: 0.5},
		sim.Stimulus{Time: 4, Port: "centerIR", Value: true},
		sim.Stimulus{Time: 4, Port: "leftLightSens", Value: 0.45},
		sim.Stimulus{Time: 5, Port: "leftLightSens", Value: 0.1},
	)
	sink := &sim.MemorySink{}
	s, err := sim.NewSimulator(lightBotHarness(t), sim.Config{Stimulus: src, Sinks: []sim.Sink{sink}})
	require.NoError(t, err)

	// WHEN the readings are replayed
	require.NoError(t, s.Run(context.Background(), 10))

	// THEN one motor command set leaves per reading instant
	assert.Equal(t, 5, s.Metrics().Emissions)
	testutil.AssertGolden(t, "lightbot_drive", renderEmissions(sink))
}
