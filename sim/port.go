package sim

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// PortSpec is the type-erased view of a port declaration: a name and the
// type of the messages it carries. Whether a port is an input or an output
// depends on which list of a model it is declared in.
type PortSpec interface {
	Name() string
	Type() reflect.Type
}

// Port declares a port carrying messages of type T.
//
//	var Out = sim.NewPort[float64]("out")
type Port[T any] struct {
	name string
}

// NewPort declares a port named name carrying values of type T.
func NewPort[T any](name string) Port[T] {
	return Port[T]{name: name}
}

// Name returns the port name.
func (p Port[T]) Name() string { return p.name }

// Type returns the declared message type.
func (p Port[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// DynamicPort declares a port whose message type is only known at run time
// (network descriptions loaded from YAML).
type DynamicPort struct {
	PortName string
	PortType reflect.Type
}

// Name returns the port name.
func (p DynamicPort) Name() string { return p.PortName }

// Type returns the declared message type.
func (p DynamicPort) Type() reflect.Type { return p.PortType }

// Ports is a convenience constructor for port lists.
func Ports(ps ...PortSpec) []PortSpec {
	return ps
}

// Bag holds the messages of one instant, keyed by port name. Messages on a
// port keep the order in which they were added.
type Bag map[string][]any

// NewBag returns an empty bag.
func NewBag() Bag {
	return make(Bag)
}

// Put appends typed values to port p of bag b.
func Put[T any](b Bag, p Port[T], vs ...T) {
	for _, v := range vs {
		b[p.name] = append(b[p.name], v)
	}
}

// Messages returns the values on port p. Values of another type are skipped;
// the simulator rejects them before they reach a model.
func Messages[T any](b Bag, p Port[T]) []T {
	raw := b[p.name]
	if len(raw) == 0 {
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		if tv, ok := v.(T); ok {
			out = append(out, tv)
		}
	}
	return out
}

// Has reports whether port p carries at least one message.
func Has[T any](b Bag, p Port[T]) bool {
	return len(b[p.name]) > 0
}

// Add appends an untyped value to the named port.
func (b Bag) Add(port string, v any) {
	b[port] = append(b[port], v)
}

// Len returns the total number of messages across all ports.
func (b Bag) Len() int {
	n := 0
	for _, vs := range b {
		n += len(vs)
	}
	return n
}

// Empty reports whether the bag carries no message.
func (b Bag) Empty() bool {
	return b.Len() == 0
}

// PortNames returns the names of ports carrying messages, sorted.
func (b Bag) PortNames() []string {
	names := make([]string, 0, len(b))
	for name, vs := range b {
		if len(vs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the bag. Message values are copied shallowly.
func (b Bag) Clone() Bag {
	c := make(Bag, len(b))
	for name, vs := range b {
		if len(vs) == 0 {
			continue
		}
		c[name] = append([]any(nil), vs...)
	}
	return c
}

// clear empties the bag in place, keeping its allocation.
func (b Bag) clear() {
	for name := range b {
		delete(b, name)
	}
}

// validatePorts checks a port list for nil entries and duplicate names.
func validatePorts(model, dir string, ports []PortSpec) (map[string]PortSpec, error) {
	byName := make(map[string]PortSpec, len(ports))
	for i, p := range ports {
		if p == nil {
			return nil, configErrorf(model, "%s port %d is nil", dir, i)
		}
		if p.Name() == "" {
			return nil, configErrorf(model, "%s port %d has an empty name", dir, i)
		}
		if strings.ContainsAny(p.Name(), "./ ") {
			return nil, configErrorf(model, "%s port %q: names cannot contain '.', '/' or spaces", dir, p.Name())
		}
		if p.Type() == nil {
			return nil, configErrorf(model, "%s port %q has no message type", dir, p.Name())
		}
		if _, dup := byName[p.Name()]; dup {
			return nil, configErrorf(model, "duplicate %s port %q", dir, p.Name())
		}
		byName[p.Name()] = p
	}
	return byName, nil
}

// checkValue verifies v can travel on port p.
func checkValue(p PortSpec, v any) error {
	if v == nil {
		if canBeNil(p.Type()) {
			return nil
		}
		return fmt.Errorf("nil message on port %q of type %s", p.Name(), p.Type())
	}
	vt := reflect.TypeOf(v)
	if vt == p.Type() {
		return nil
	}
	if p.Type().Kind() == reflect.Interface && vt.Implements(p.Type()) {
		return nil
	}
	return fmt.Errorf("message of type %s on port %q of type %s", vt, p.Name(), p.Type())
}

func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// checkModelName rejects names that would break model paths ("a/b") or
// endpoints ("a.port").
func checkModelName(name string) error {
	if name == "" {
		return configErrorf("", "model has an empty name")
	}
	if strings.ContainsAny(name, "./ ") {
		return configErrorf(name, "model names cannot contain '.', '/' or spaces")
	}
	return nil
}
