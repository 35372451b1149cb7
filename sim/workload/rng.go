package workload

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG hands out one generator per stream, each seeded from the
// master seed XOR a hash of the stream's name, so adding or reordering
// streams leaves the others' sequences unchanged. Not safe for concurrent use.
type PartitionedRNG struct {
	seed  int64
	parts map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:  seed,
		parts: make(map[string]*rand.Rand),
	}
}

// For returns the generator for name. The same name always returns the
// same instance.
func (p *PartitionedRNG) For(name string) *rand.Rand {
	if rng, ok := p.parts[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.parts[name] = rng
	return rng
}

// StreamName names the generator of a stream: its port, plus its position
// when several streams feed the same port.
func StreamName(port string, occurrence int) string {
	if occurrence == 0 {
		return port
	}
	return fmt.Sprintf("%s#%d", port, occurrence)
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
