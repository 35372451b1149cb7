package network

import (
	"errors"
	"fmt"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// Build validates the description and turns it into a model tree. Errors from
// model construction keep their *sim.ConfigError identity.
func Build(s *Spec) (*sim.Coupled, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfig, err)
	}
	return build(s, s.Name)
}

func build(s *Spec, name string) (*sim.Coupled, error) {
	in, err := ports(s.InPorts)
	if err != nil {
		return nil, err
	}
	out, err := ports(s.OutPorts)
	if err != nil {
		return nil, err
	}

	children := make([]sim.Model, 0, len(s.Models))
	for _, m := range s.Models {
		if m.Coupled != nil {
			c, err := build(m.Coupled, m.Name)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
			continue
		}
		factory, _ := Lookup(m.Kind)
		a, err := factory(m.Name, m.Params)
		if err != nil {
			if errors.Is(err, sim.ErrConfig) {
				return nil, err
			}
			return nil, &sim.ConfigError{Model: m.Name, Reason: fmt.Sprintf("kind %s: %v", m.Kind, err)}
		}
		children = append(children, a)
	}

	couplings := make([]sim.Coupling, 0, len(s.Couplings))
	for _, c := range s.Couplings {
		from, err := sim.ParseEndpoint(c.From)
		if err != nil {
			return nil, err
		}
		to, err := sim.ParseEndpoint(c.To)
		if err != nil {
			return nil, err
		}
		couplings = append(couplings, sim.Coupling{From: from, To: to})
	}
	return sim.NewCoupled(name, children, in, out, couplings)
}

func ports(decls []PortSpec) ([]sim.PortSpec, error) {
	out := make([]sim.PortSpec, 0, len(decls))
	for _, d := range decls {
		t, ok := PortType(d.Type)
		if !ok {
			return nil, fmt.Errorf("port %q: unknown type %q", d.Name, d.Type)
		}
		out = append(out, sim.DynamicPort{PortName: d.Name, PortType: t})
	}
	return out, nil
}

// Describe renders a one-line summary per model of a built tree, depth first,
// for the validate command.
func Describe(c *sim.Coupled) []string {
	var lines []string
	describe(c, "", &lines)
	return lines
}

func describe(m sim.Model, prefix string, lines *[]string) {
	path := m.Name()
	if prefix != "" {
		path = prefix + "/" + m.Name()
	}
	switch m := m.(type) {
	case *sim.Coupled:
		*lines = append(*lines, fmt.Sprintf("%s: coupled, %d children, %d couplings, in %s, out %s",
			path, len(m.Children()), len(m.Couplings()), portList(m.InPorts()), portList(m.OutPorts())))
		for _, child := range m.Children() {
			describe(child, path, lines)
		}
	case *sim.Atomic:
		*lines = append(*lines, fmt.Sprintf("%s: atomic, in %s, out %s",
			path, portList(m.InPorts()), portList(m.OutPorts())))
	}
}

func portList(ps []sim.PortSpec) string {
	if len(ps) == 0 {
		return "[]"
	}
	s := "["
	for i, p := range ps {
		if i > 0 {
			s += " "
		}
		s += p.Name() + ":" + p.Type().String()
	}
	return s + "]"
}
