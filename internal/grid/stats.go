package grid

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Percentile returns the p-th percentile (0-100) of the field's finite
// values, interpolating linearly between ranks. NaN when nothing is finite.
func Percentile(f *Field, p float64) float64 {
	x := finite(f.Values())
	if len(x) == 0 {
		return math.NaN()
	}
	sort.Float64s(x)
	return stat.Quantile(p/100, stat.LinInterp, x, nil)
}

// Range returns the minimum and maximum finite values.
func Range(f *Field) (lo, hi float64) {
	x := finite(f.Values())
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(x), floats.Max(x)
}

func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
