package diagnostic

import "math"

// Steps returns lo, lo+step, ... up to and including the last value not
// above hi.
func Steps(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step + 1e-9))
	out := make([]float64, n+1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Intervals splits [lo, hi] into n equal intervals and returns the n+1
// boundaries.
func Intervals(lo, hi float64, n int) []float64 {
	return Steps(lo, hi, (hi-lo)/float64(n))
}

// roundEven rounds x to the nearest multiple of 2.
func roundEven(x float64) float64 { return 2 * math.Round(x/2) }
