// Package network loads YAML descriptions of simulation networks and builds
// them into *sim.Coupled trees. Atomic model kinds are looked up in a
// registry that model packages fill from their init() functions.
package network

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// Spec describes one coupled model. The top-level document is a Spec; nested
// coupled models appear as ModelSpec.Coupled.
type Spec struct {
	Name      string         `yaml:"name,omitempty"`
	InPorts   []PortSpec     `yaml:"in_ports,omitempty"`
	OutPorts  []PortSpec     `yaml:"out_ports,omitempty"`
	Models    []ModelSpec    `yaml:"models"`
	Couplings []CouplingSpec `yaml:"couplings,omitempty"`
}

// PortSpec declares an external port of a coupled model.
type PortSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // float64, int, bool, string
}

// ModelSpec is one child: either an atomic model of a registered kind or a
// nested coupled model.
type ModelSpec struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind,omitempty"`
	Params  Params `yaml:"params,omitempty"`
	Coupled *Spec  `yaml:"coupled,omitempty"`
}

// CouplingSpec links two endpoints written as "model.port" or, for the
// enclosing model's own ports, "port".
type CouplingSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

var portTypes = map[string]reflect.Type{
	"float64": reflect.TypeFor[float64](),
	"int":     reflect.TypeFor[int](),
	"bool":    reflect.TypeFor[bool](),
	"string":  reflect.TypeFor[string](),
}

// PortTypeNames lists the accepted port type names.
func PortTypeNames() []string {
	names := make([]string, 0, len(portTypes))
	for n := range portTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PortType resolves a port type name.
func PortType(name string) (reflect.Type, bool) {
	t, ok := portTypes[name]
	return t, ok
}

// Load reads and strictly decodes a network file. Unknown fields are errors.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network spec: %w", err)
	}
	return Parse(data)
}

// Parse strictly decodes a network description.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing network spec: %w", err)
	}
	return &spec, nil
}

// Validate checks the parts of the description that do not need the
// registry or the model tree: names, port types, child kinds and endpoint
// syntax. Structural checks (dangling endpoints, type mismatches) happen in
// Build through sim.NewCoupled.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("network name is required")
	}
	return s.validate(s.Name)
}

func (s *Spec) validate(prefix string) error {
	if len(s.Models) == 0 {
		return fmt.Errorf("%s: at least one model required", prefix)
	}
	for _, list := range [][]PortSpec{s.InPorts, s.OutPorts} {
		for i, p := range list {
			if p.Name == "" {
				return fmt.Errorf("%s: port[%d]: name is required", prefix, i)
			}
			if _, ok := portTypes[p.Type]; !ok {
				return fmt.Errorf("%s: port %q: unknown type %q; valid: %s", prefix, p.Name, p.Type, strings.Join(PortTypeNames(), ", "))
			}
		}
	}
	for i, m := range s.Models {
		if m.Name == "" {
			return fmt.Errorf("%s: models[%d]: name is required", prefix, i)
		}
		child := prefix + "/" + m.Name
		switch {
		case m.Coupled != nil && m.Kind != "":
			return fmt.Errorf("%s: set either kind or coupled, not both", child)
		case m.Coupled != nil:
			if m.Coupled.Name != "" && m.Coupled.Name != m.Name {
				return fmt.Errorf("%s: nested name %q does not match", child, m.Coupled.Name)
			}
			if len(m.Params) > 0 {
				return fmt.Errorf("%s: params are only allowed on atomic models", child)
			}
			if err := m.Coupled.validate(child); err != nil {
				return err
			}
		case m.Kind == "":
			return fmt.Errorf("%s: kind or coupled is required", child)
		default:
			if _, ok := Lookup(m.Kind); !ok {
				return fmt.Errorf("%s: unknown kind %q; valid: %s", child, m.Kind, strings.Join(Kinds(), ", "))
			}
		}
	}
	for i, c := range s.Couplings {
		if _, err := sim.ParseEndpoint(c.From); err != nil {
			return fmt.Errorf("%s: couplings[%d].from: %w", prefix, i, err)
		}
		if _, err := sim.ParseEndpoint(c.To); err != nil {
			return fmt.Errorf("%s: couplings[%d].to: %w", prefix, i, err)
		}
	}
	return nil
}
