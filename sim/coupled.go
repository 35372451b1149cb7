package sim

// Coupled is a named composite of child models plus the coupling table that
// routes messages between them and its own external ports. It exposes the
// same port contract as an atomic model, so coupled models nest.
type Coupled struct {
	name                string
	in, out             []PortSpec
	inByName, outByName map[string]PortSpec
	children            []Model
	childIndex          map[string]int
	couplings           []Coupling
	routes              map[Endpoint][]Endpoint
}

// NewCoupled validates and builds a coupled model. Every problem (duplicate
// child names, dangling endpoints, direction or type mismatches) is reported
// as a *ConfigError before any simulation can run.
func NewCoupled(name string, children []Model, in, out []PortSpec, couplings []Coupling) (*Coupled, error) {
	if err := checkModelName(name); err != nil {
		return nil, err
	}
	inByName, err := validatePorts(name, "input", in)
	if err != nil {
		return nil, err
	}
	outByName, err := validatePorts(name, "output", out)
	if err != nil {
		return nil, err
	}

	c := &Coupled{
		name:       name,
		in:         append([]PortSpec(nil), in...),
		out:        append([]PortSpec(nil), out...),
		inByName:   inByName,
		outByName:  outByName,
		children:   make([]Model, 0, len(children)),
		childIndex: make(map[string]int, len(children)),
		routes:     make(map[Endpoint][]Endpoint),
	}

	for i, child := range children {
		if child == nil {
			return nil, configErrorf(name, "child %d is nil", i)
		}
		if _, dup := c.childIndex[child.Name()]; dup {
			return nil, configErrorf(name, "duplicate child name %q", child.Name())
		}
		c.childIndex[child.Name()] = len(c.children)
		c.children = append(c.children, child)
	}

	seen := make(map[Coupling]bool, len(couplings))
	for _, cp := range couplings {
		if seen[cp] {
			return nil, configErrorf(name, "duplicate coupling %s", cp)
		}
		seen[cp] = true
		if err := c.checkCoupling(cp); err != nil {
			return nil, err
		}
		c.couplings = append(c.couplings, cp)
		c.routes[cp.From] = append(c.routes[cp.From], cp.To)
	}
	return c, nil
}

// MustCoupled is like NewCoupled but panics on a configuration error.
func MustCoupled(name string, children []Model, in, out []PortSpec, couplings []Coupling) *Coupled {
	c, err := NewCoupled(name, children, in, out, couplings)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Coupled) checkCoupling(cp Coupling) error {
	var src, dst PortSpec
	var err error

	switch cp.Kind() {
	case ExternalInput:
		if src, err = c.selfPort(cp.From, true); err != nil {
			return err
		}
		if dst, err = c.childPort(cp.To, true); err != nil {
			return err
		}
	case ExternalOutput:
		if src, err = c.childPort(cp.From, false); err != nil {
			return err
		}
		if dst, err = c.selfPort(cp.To, false); err != nil {
			return err
		}
	case Internal:
		if cp.From.Model == cp.To.Model {
			return configErrorf(c.name, "coupling %s loops a child onto itself", cp)
		}
		if src, err = c.childPort(cp.From, false); err != nil {
			return err
		}
		if dst, err = c.childPort(cp.To, true); err != nil {
			return err
		}
	default:
		return configErrorf(c.name, "coupling %s -> %s links an input straight to an output", cp.From, cp.To)
	}

	if src.Type() != dst.Type() {
		return configErrorf(c.name, "coupling %s: type mismatch %s -> %s", cp, src.Type(), dst.Type())
	}
	return nil
}

func (c *Coupled) selfPort(e Endpoint, input bool) (PortSpec, error) {
	ports, dir := c.outByName, "output"
	if input {
		ports, dir = c.inByName, "input"
	}
	p, ok := ports[e.Port]
	if !ok {
		return nil, configErrorf(c.name, "coupling references undeclared %s port %q", dir, e.Port)
	}
	return p, nil
}

func (c *Coupled) childPort(e Endpoint, input bool) (PortSpec, error) {
	idx, ok := c.childIndex[e.Model]
	if !ok {
		return nil, configErrorf(c.name, "coupling references unknown child %q", e.Model)
	}
	ports, dir := c.children[idx].OutPorts(), "output"
	if input {
		ports, dir = c.children[idx].InPorts(), "input"
	}
	for _, p := range ports {
		if p.Name() == e.Port {
			return p, nil
		}
	}
	return nil, configErrorf(c.name, "coupling references undeclared %s port %s", dir, e)
}

func (c *Coupled) Name() string         { return c.name }
func (c *Coupled) InPorts() []PortSpec  { return c.in }
func (c *Coupled) OutPorts() []PortSpec { return c.out }
func (*Coupled) isModel()               {}

// Children returns the child models in declaration order.
func (c *Coupled) Children() []Model {
	return append([]Model(nil), c.children...)
}

// Child looks up a direct child by name.
func (c *Coupled) Child(name string) (Model, bool) {
	idx, ok := c.childIndex[name]
	if !ok {
		return nil, false
	}
	return c.children[idx], true
}

// Couplings returns the coupling table in declaration order.
func (c *Coupled) Couplings() []Coupling {
	return append([]Coupling(nil), c.couplings...)
}

// Destinations resolves one level of the coupling table: the endpoints a
// message leaving from (a child's output or this model's input) is copied to.
// A nil result means the message is dropped at this level.
func (c *Coupled) Destinations(from Endpoint) []Endpoint {
	return c.routes[from]
}
