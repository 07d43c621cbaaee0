package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible synthetic run.
// Two runs with the same key and configuration produce identical reports.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemProcesses draws burst times and priorities. Uses the master seed directly.
	SubsystemProcesses = "processes"

	// SubsystemPages draws the page reference string.
	SubsystemPages = "pages"
)

// PartitionedRNG hands out one deterministically seeded *rand.Rand per subsystem,
// so adding draws to one subsystem never shifts another's sequence.
//
// Derivation: SubsystemProcesses uses the master seed; every other name uses
// masterSeed XOR fnv1a64(name).
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached RNG for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key)
	if name != SubsystemProcesses {
		derivedSeed ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
