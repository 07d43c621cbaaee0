package sim

import "fmt"

// ProcessSpec is the creation request for one process.
type ProcessSpec struct {
	Burst    int
	Priority int
}

// hotSetFraction of a process's pages receive hotSetWeight of its references.
const (
	hotSetFraction = 0.25
	hotSetWeight   = 0.8
)

// GenerateProcesses draws n processes with bursts uniform in [1, maxBurst]
// and priorities uniform in [MinPriority, MaxPriority].
func GenerateProcesses(rng *PartitionedRNG, n, maxBurst int) ([]ProcessSpec, error) {
	if n < 0 {
		return nil, fmt.Errorf("process count %d: %w", n, ErrInvalidParameter)
	}
	if maxBurst <= 0 {
		return nil, fmt.Errorf("max burst must be > 0, got %d: %w", maxBurst, ErrInvalidParameter)
	}
	r := rng.ForSubsystem(SubsystemProcesses)
	specs := make([]ProcessSpec, n)
	for i := range specs {
		specs[i] = ProcessSpec{
			Burst:    1 + r.Intn(maxBurst),
			Priority: MinPriority + r.Intn(MaxPriority-MinPriority+1),
		}
	}
	return specs, nil
}

// NextPage draws a page index in [0, pages) with an 80/20 locality skew
// toward the lowest quarter of the address space.
func NextPage(rng *PartitionedRNG, pages int) int {
	r := rng.ForSubsystem(SubsystemPages)
	hot := int(float64(pages) * hotSetFraction)
	if hot < 1 || hot >= pages {
		return r.Intn(pages)
	}
	if r.Float64() < hotSetWeight {
		return r.Intn(hot)
	}
	return hot + r.Intn(pages-hot)
}
