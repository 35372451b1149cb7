package sim

import (
	"fmt"
	"strings"
)

// Endpoint names a port of a coupled model (Model == "") or of one of its
// direct children.
type Endpoint struct {
	Model string
	Port  string
}

// String renders "model.port", or just "port" for the enclosing model.
func (e Endpoint) String() string {
	if e.Model == "" {
		return e.Port
	}
	return e.Model + "." + e.Port
}

// ParseEndpoint is the inverse of Endpoint.String.
func ParseEndpoint(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Endpoint{}, fmt.Errorf("empty endpoint")
	}
	model, port, found := strings.Cut(s, ".")
	if !found {
		return Endpoint{Port: s}, nil
	}
	if model == "" || port == "" || strings.Contains(port, ".") {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: want model.port or port", s)
	}
	return Endpoint{Model: model, Port: port}, nil
}

// CouplingKind classifies a coupling by its endpoints.
type CouplingKind string

const (
	// ExternalInput links the coupled model's input to a child's input.
	ExternalInput CouplingKind = "EIC"
	// ExternalOutput links a child's output to the coupled model's output.
	ExternalOutput CouplingKind = "EOC"
	// Internal links a child's output to a sibling's input.
	Internal CouplingKind = "IC"
	// InvalidCoupling links the coupled model's input directly to its output.
	InvalidCoupling CouplingKind = "invalid"
)

// Coupling is one routing rule of a coupled model.
type Coupling struct {
	From Endpoint
	To   Endpoint
}

// EIC couples input port of the enclosing model to a child's input port.
func EIC(port, child, childPort string) Coupling {
	return Coupling{From: Endpoint{Port: port}, To: Endpoint{Model: child, Port: childPort}}
}

// EOC couples a child's output port to an output port of the enclosing model.
func EOC(child, childPort, port string) Coupling {
	return Coupling{From: Endpoint{Model: child, Port: childPort}, To: Endpoint{Port: port}}
}

// IC couples a child's output port to a sibling's input port.
func IC(from, fromPort, to, toPort string) Coupling {
	return Coupling{From: Endpoint{Model: from, Port: fromPort}, To: Endpoint{Model: to, Port: toPort}}
}

// Kind classifies the coupling.
func (c Coupling) Kind() CouplingKind {
	switch {
	case c.From.Model == "" && c.To.Model != "":
		return ExternalInput
	case c.From.Model != "" && c.To.Model == "":
		return ExternalOutput
	case c.From.Model != "" && c.To.Model != "":
		return Internal
	}
	return InvalidCoupling
}

func (c Coupling) String() string {
	return fmt.Sprintf("%s %s -> %s", c.Kind(), c.From, c.To)
}
