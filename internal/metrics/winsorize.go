// Package metrics derives the per-bond-day liquidity and pricing metrics:
// bid-ask spread and bias from the quote feed, daily returns and credit
// spreads from the price feed.
package metrics

import (
	"fmt"
	"math"
	"sort"
)

// WinsorizeBounds are the two-sided tail fractions clamped by Winsorize.
type WinsorizeBounds struct {
	Lower float64
	Upper float64
}

// DefaultWinsorizeBounds clamp half a percent on each tail, the convention
// of the sample methodology.
var DefaultWinsorizeBounds = WinsorizeBounds{Lower: 0.005, Upper: 0.005}

// IsValid checks the bounds are fractions that leave some data unclamped.
func (b WinsorizeBounds) IsValid() bool {
	return b.Lower >= 0 && b.Upper >= 0 && b.Lower+b.Upper < 1
}

// Winsorize returns a copy of values with the lowest Lower and highest
// Upper fractions clamped to the nearest kept order statistic. This is a
// two-sided clamp, not truncation: the sample size is preserved, and the
// operation is idempotent. Non-finite values pass through untouched and do
// not influence the clamp bounds.
func Winsorize(values []float64, bounds WinsorizeBounds) ([]float64, error) {
	if !bounds.IsValid() {
		return nil, fmt.Errorf("invalid winsorize bounds: lower=%.4f upper=%.4f", bounds.Lower, bounds.Upper)
	}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	out := make([]float64, len(values))
	copy(out, values)
	if len(finite) == 0 {
		return out, nil
	}

	sort.Float64s(finite)
	n := len(finite)
	lowCut := int(math.Floor(bounds.Lower * float64(n)))
	highCut := int(math.Floor(bounds.Upper * float64(n)))
	lo := finite[lowCut]
	hi := finite[n-1-highCut]

	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			out[i] = lo
		} else if v > hi {
			out[i] = hi
		}
	}
	return out, nil
}
