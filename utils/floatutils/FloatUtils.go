// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"
)

// Clip returns value limited to the interval [min, max]
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// MaxSliceMasked gets the maximum value over the entries of values for
// which mask is true, along with the indices attaining it. Entries with
// a false mask are treated as -∞ and are never returned. If no entry
// is unmasked, the maximum is -∞ and no indices are returned.
//
// The indices are appended to buf, which may be nil, so that callers
// can reuse storage across calls.
func MaxSliceMasked(values []float64, mask []bool,
	buf []int) (max float64, indices []int) {
	max, indices = math.Inf(-1), buf[:0]

	for i, value := range values {
		if !mask[i] {
			continue
		}
		if value > max {
			max = value
			indices = append(indices[:0], i)
		} else if value == max {
			indices = append(indices, i)
		}
	}
	return
}
