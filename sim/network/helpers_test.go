package network

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

var (
	testIn  = sim.NewPort[float64]("in")
	testOut = sim.NewPort[float64]("out")
)

// constant emits value every period.
type constant struct {
	period sim.Time
	value  float64
}

func (c constant) TimeAdvance(struct{}) sim.Time                        { return c.period }
func (c constant) Internal(s struct{}) struct{}                         { return s }
func (c constant) External(s struct{}, _ sim.Time, _ sim.Bag) struct{} { return s }
func (c constant) Output(struct{}) sim.Bag {
	b := sim.NewBag()
	sim.Put(b, testOut, c.value)
	return b
}

// sinkhole accepts float64 input and never acts.
type sinkhole struct{}

func (sinkhole) TimeAdvance(struct{}) sim.Time                        { return sim.Infinity }
func (sinkhole) Internal(s struct{}) struct{}                         { return s }
func (sinkhole) External(s struct{}, _ sim.Time, _ sim.Bag) struct{} { return s }
func (sinkhole) Output(struct{}) sim.Bag                              { return nil }

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	Register("test_constant", func(name string, p Params) (*sim.Atomic, error) {
		if err := p.Known("period", "value"); err != nil {
			return nil, err
		}
		period, err := p.Time("period", 1)
		if err != nil {
			return nil, err
		}
		value, err := p.Float("value", 0)
		if err != nil {
			return nil, err
		}
		return sim.NewAtomic[struct{}](name, constant{period: period, value: value}, struct{}{}, nil, sim.Ports(testOut))
	})
	Register("test_sinkhole", func(name string, _ Params) (*sim.Atomic, error) {
		return sim.NewAtomic[struct{}](name, sinkhole{}, struct{}{}, sim.Ports(testIn), nil)
	})
	os.Exit(m.Run())
}
