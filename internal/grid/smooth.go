package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Default smoother weights.
const (
	DefaultP = 0.5
	DefaultQ = 0.25
)

// Smooth9 applies the 9-point smoother to every interior point:
//
//	x + p/4·(N+S+E+W−4x) + q/4·(NE+NW+SE+SW−4x)
//
// Perimeter points are copied unchanged. A point with a NaN neighbour is
// left as it is. p = q = 0 returns an unchanged copy.
func Smooth9(f *Field, p, q float64) (*Field, error) {
	r, c := f.Dims()
	if r < 3 || c < 3 {
		return nil, fmt.Errorf("smooth9 %dx%d: %w", r, c, ErrGridTooSmall)
	}

	out := mat.DenseCopyOf(f.Data)
	src := f.Data
	for i := 1; i < r-1; i++ {
		for j := 1; j < c-1; j++ {
			x := src.At(i, j)
			side := src.At(i-1, j) + src.At(i+1, j) + src.At(i, j-1) + src.At(i, j+1)
			corner := src.At(i-1, j-1) + src.At(i-1, j+1) + src.At(i+1, j-1) + src.At(i+1, j+1)
			if math.IsNaN(side) || math.IsNaN(corner) {
				continue
			}
			out.Set(i, j, x+p/4*(side-4*x)+q/4*(corner-4*x))
		}
	}
	return f.Like(out), nil
}
