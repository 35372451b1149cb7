package library

import (
	"fmt"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// DriveState is the steering decision of the light-following robot.
type DriveState int

const (
	DriveRight DriveState = iota
	DriveStraight
	DriveLeft
	DriveStop
)

func (d DriveState) String() string {
	switch d {
	case DriveRight:
		return "right"
	case DriveStraight:
		return "straight"
	case DriveLeft:
		return "left"
	case DriveStop:
		return "stop"
	}
	return fmt.Sprintf("DriveState(%d)", int(d))
}

// DefaultLightThreshold is the sensor difference that triggers a turn.
const DefaultLightThreshold = 0.1

// LightBot ports.
var (
	RightLightSens = sim.NewPort[float64]("rightLightSens")
	LeftLightSens  = sim.NewPort[float64]("leftLightSens")
	CenterIR       = sim.NewPort[bool]("centerIR")

	RightMotor1 = sim.NewPort[float64]("rightMotor1") // PWM duty cycle
	RightMotor2 = sim.NewPort[bool]("rightMotor2")    // enable
	LeftMotor1  = sim.NewPort[float64]("leftMotor1")
	LeftMotor2  = sim.NewPort[bool]("leftMotor2")
)

// LightBotState keeps the last reading of every sensor so that a message on
// one port is judged against the latest values of the others.
type LightBotState struct {
	Dir    DriveState
	Right  float64
	Left   float64
	Ground bool // centerIR sees the ground
	Report bool // motor commands are due
}

// LightBot steers towards the brighter side and stops when the center
// infrared sensor loses the ground. It reacts in the instant a reading
// arrives and is passive otherwise; ties resolve internal first.
type LightBot struct {
	Threshold float64
}

func (b LightBot) TimeAdvance(s LightBotState) sim.Time {
	if s.Report {
		return 0
	}
	return sim.Infinity
}

func (b LightBot) Internal(s LightBotState) LightBotState {
	s.Report = false
	return s
}

func (b LightBot) External(s LightBotState, _ sim.Time, in sim.Bag) LightBotState {
	if vs := sim.Messages(in, CenterIR); len(vs) > 0 {
		s.Ground = vs[len(vs)-1]
	}
	if vs := sim.Messages(in, RightLightSens); len(vs) > 0 {
		s.Right = vs[len(vs)-1]
	}
	if vs := sim.Messages(in, LeftLightSens); len(vs) > 0 {
		s.Left = vs[len(vs)-1]
	}
	s.Dir = b.steer(s)
	s.Report = true
	return s
}

func (b LightBot) steer(s LightBotState) DriveState {
	switch {
	case !s.Ground:
		return DriveStop
	case s.Left-s.Right > b.Threshold:
		return DriveRight
	case s.Right-s.Left > b.Threshold:
		return DriveLeft
	}
	return DriveStraight
}

// MotorCommand is what the robot sends to each side for a drive state.
type MotorCommand struct {
	RightDuty, LeftDuty     float64
	RightEnable, LeftEnable bool
}

// Motors maps a drive state to duty cycles and enables. Turning slows the
// wheel on the inside of the turn.
func Motors(d DriveState) MotorCommand {
	switch d {
	case DriveRight:
		return MotorCommand{RightDuty: 0.5, LeftDuty: 1, RightEnable: true, LeftEnable: true}
	case DriveLeft:
		return MotorCommand{RightDuty: 1, LeftDuty: 0.5, RightEnable: true, LeftEnable: true}
	case DriveStraight:
		return MotorCommand{RightDuty: 1, LeftDuty: 1, RightEnable: true, LeftEnable: true}
	}
	return MotorCommand{}
}

func (b LightBot) Output(s LightBotState) sim.Bag {
	m := Motors(s.Dir)
	out := sim.NewBag()
	sim.Put(out, RightMotor1, m.RightDuty)
	sim.Put(out, RightMotor2, m.RightEnable)
	sim.Put(out, LeftMotor1, m.LeftDuty)
	sim.Put(out, LeftMotor2, m.LeftEnable)
	return out
}

// NewLightBot defines the robot controller. It starts driving straight with
// the ground in sight.
func NewLightBot(name string, threshold float64) (*sim.Atomic, error) {
	if threshold < 0 {
		return nil, &sim.ConfigError{Model: name, Reason: fmt.Sprintf("threshold must be non-negative, got %g", threshold)}
	}
	return sim.NewAtomic[LightBotState](name,
		LightBot{Threshold: threshold},
		LightBotState{Dir: DriveStraight, Ground: true},
		sim.Ports(RightLightSens, LeftLightSens, CenterIR),
		sim.Ports(RightMotor1, RightMotor2, LeftMotor1, LeftMotor2),
		sim.WithConfluence(sim.InternalFirst))
}
