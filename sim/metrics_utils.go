// sim/metrics_utils.go
package sim

import (
	"math"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile returns the p-th percentile of an ascending-sorted data list,
// interpolating linearly between neighbouring ranks. Values are in ticks.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0.0
	}

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))

	if lowerIdx == upperIdx {
		return float64(data[lowerIdx])
	}
	if upperIdx >= n {
		return float64(data[n-1])
	}
	lowerVal := data[lowerIdx]
	upperVal := data[upperIdx]
	return float64(lowerVal) + float64(upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// CalculateMean returns the arithmetic mean of a data list, or 0 when empty.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return sum / float64(len(numbers))
}
