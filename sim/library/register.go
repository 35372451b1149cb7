package library

import (
	"fmt"

	"github.com/pdevs-sim/pdevs-sim/sim"
	"github.com/pdevs-sim/pdevs-sim/sim/network"
)

func init() {
	network.Register("generator", generatorFromParams)
	network.Register("passthrough", func(name string, p network.Params) (*sim.Atomic, error) {
		if err := p.Known(); err != nil {
			return nil, err
		}
		return NewPassthrough[float64](name)
	})
	network.Register("passthrough_bool", func(name string, p network.Params) (*sim.Atomic, error) {
		if err := p.Known(); err != nil {
			return nil, err
		}
		return NewPassthrough[bool](name)
	})
	network.Register("lightbot", lightBotFromParams)
	network.Register("analog_input", analogInputFromParams)
	network.Register("digital_input", digitalInputFromParams)
	network.Register("pwm_output", func(name string, p network.Params) (*sim.Atomic, error) {
		if err := p.Known(); err != nil {
			return nil, err
		}
		return NewPwmOutput(name, LogWriter[float64](name))
	})
	network.Register("digital_output", func(name string, p network.Params) (*sim.Atomic, error) {
		if err := p.Known(); err != nil {
			return nil, err
		}
		return NewDigitalOutput(name, LogWriter[bool](name))
	})
}

func generatorFromParams(name string, p network.Params) (*sim.Atomic, error) {
	if err := p.Known("period", "value"); err != nil {
		return nil, err
	}
	period, err := p.Time("period", 1)
	if err != nil {
		return nil, err
	}
	value, err := p.Float("value", 1)
	if err != nil {
		return nil, err
	}
	return NewGenerator(name, period, value)
}

func lightBotFromParams(name string, p network.Params) (*sim.Atomic, error) {
	if err := p.Known("threshold"); err != nil {
		return nil, err
	}
	threshold, err := p.Float("threshold", DefaultLightThreshold)
	if err != nil {
		return nil, err
	}
	return NewLightBot(name, threshold)
}

func analogInputFromParams(name string, p network.Params) (*sim.Atomic, error) {
	if err := p.Known("period", "samples"); err != nil {
		return nil, err
	}
	period, err := p.Time("period", sim.TicksPerSecond)
	if err != nil {
		return nil, err
	}
	samples, err := p.Floats("samples")
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("samples: at least one value required")
	}
	return NewAnalogInput(name, period, Cycle(samples...))
}

func digitalInputFromParams(name string, p network.Params) (*sim.Atomic, error) {
	if err := p.Known("period", "samples"); err != nil {
		return nil, err
	}
	period, err := p.Time("period", sim.TicksPerSecond)
	if err != nil {
		return nil, err
	}
	samples, err := p.Bools("samples")
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("samples: at least one value required")
	}
	return NewDigitalInput(name, period, Cycle(samples...))
}
