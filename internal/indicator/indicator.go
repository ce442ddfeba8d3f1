// Package indicator implements pure, deterministic technical indicators over
// price series. Every function returns a column aligned to its input, with
// NaN for bars inside the warmup window, and never reads ahead of the bar
// being computed.
package indicator

import "math"

// nanSlice returns a column of length n filled with NaN.
func nanSlice(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}

	return values
}
