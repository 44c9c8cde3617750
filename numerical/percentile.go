// Package numerical holds small statistics helpers shared by the remeshing
// passes' adaptive-threshold computation.
package numerical

import "github.com/unixpickle/essentials"

// Distribution is a fixed sample of scalar values that supports percentile
// queries. It is built once per adaptive pass from a mesh's per-vertex
// quality scalars.
type Distribution struct {
	sorted []float64
}

// NewDistribution copies and sorts values into a Distribution. The input
// slice is not modified.
func NewDistribution(values []float64) *Distribution {
	sorted := append([]float64{}, values...)
	essentials.VoodooSort(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	return &Distribution{sorted: sorted}
}

// Percentile returns the value at the given percentile (0-100), linearly
// interpolating between the two nearest samples. Percentile of an empty
// distribution is 0.
func (d *Distribution) Percentile(p float64) float64 {
	if len(d.sorted) == 0 {
		return 0
	}
	if len(d.sorted) == 1 {
		return d.sorted[0]
	}
	pos := clamp(p, 0, 100) / 100 * float64(len(d.sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(d.sorted) {
		return d.sorted[len(d.sorted)-1]
	}
	frac := pos - float64(lo)
	return d.sorted[lo]*(1-frac) + d.sorted[hi]*frac
}

// ClampedLerp linearly interpolates between lo and hi at parameter t,
// clamping t to [0, 1] first. Used to turn a normalized quality scalar into
// a split/collapse threshold multiplier in [lo, hi].
func ClampedLerp(lo, hi, t float64) float64 {
	t = clamp(t, 0, 1)
	return lo + (hi-lo)*t
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
