package gas

import (
	"sort"

	"github.com/holiman/uint256"
)

// Percentile returns the p-th percentile (0-100) of values, linear
// interpolated between the two bracketing ordered values (spec.md §4.6
// "The percentile is linear-interpolated between ordered values"). values
// is not mutated.
func Percentile(values []*uint256.Int, p float64) *uint256.Int {
	if len(values) == 0 {
		return uint256.NewInt(0)
	}
	sorted := make([]*uint256.Int, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lowIdx := int(rank)
	if lowIdx >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	highIdx := lowIdx + 1
	frac := rank - float64(lowIdx)

	low, high := sorted[lowIdx], sorted[highIdx]
	if frac == 0 {
		return low
	}

	// low + (high-low)*frac, computed in float64 on the difference to avoid
	// needing fixed-point math for a bounded fee-wei delta.
	diff := new(uint256.Int).Sub(high, low)
	scaled := new(uint256.Int).Mul(diff, uint256.NewInt(uint64(frac*1e6)))
	scaled.Div(scaled, uint256.NewInt(1e6))

	return new(uint256.Int).Add(low, scaled)
}
