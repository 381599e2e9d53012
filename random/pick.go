package random

import "math"

// Pick performs one weighted draw over weights: a ticket is drawn in
// [0, total) and weights are subtracted in order until it goes
// non-positive. Negative and NaN weights count as zero.
//
// When the total is zero, NaN or infinite every index is equally likely
// and degenerate is true so callers can log it. Pick returns -1 only for
// an empty slice.
func Pick(src Source, weights []float64) (idx int, degenerate bool) {
	if len(weights) == 0 {
		return -1, false
	}
	var total float64
	for _, w := range weights {
		total += clean(w)
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return src.Intn(len(weights)), true
	}

	ticket := src.Float64() * total
	for i, w := range weights {
		ticket -= clean(w)
		if ticket <= 0 && clean(w) > 0 {
			return i, false
		}
	}
	// Float rounding can leave a sliver of ticket; hand it to the last
	// candidate that had any weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if clean(weights[i]) > 0 {
			return i, false
		}
	}
	return len(weights) - 1, false
}

// Chance reports whether a uniform draw lands under p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Between returns a uniform float in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

func clean(w float64) float64 {
	if w < 0 || math.IsNaN(w) {
		return 0
	}
	return w
}
