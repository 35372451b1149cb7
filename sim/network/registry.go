package network

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// Factory builds an atomic model named name from its YAML parameters.
type Factory func(name string, p Params) (*sim.Atomic, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a model kind available to Build. It panics on an empty kind,
// a nil factory or a kind registered twice; registration happens in init().
func Register(kind string, f Factory) {
	if kind == "" || f == nil {
		panic("network: Register needs a kind and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("network: kind %q registered twice", kind))
	}
	registry[kind] = f
}

// Lookup returns the factory registered for kind.
func Lookup(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// Kinds lists the registered kinds, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
