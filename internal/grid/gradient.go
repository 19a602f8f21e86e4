package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// EarthRadius is the GFS model sphere radius in metres.
const EarthRadius = 6371229.0

// Gradients returns ∂f/∂x and ∂f/∂y in units of f per metre. Interior points
// use centred differences and edges use one-sided differences.
func Gradients(f *Field) (dfdx, dfdy *Field, err error) {
	r, c := f.Dims()
	if r < 2 || c < 2 {
		return nil, nil, fmt.Errorf("gradients %dx%d: %w", r, c, ErrGridTooSmall)
	}

	toRad := math.Pi / 180
	dx := mat.NewDense(r, c, nil)
	dy := mat.NewDense(r, c, nil)
	for i := range r {
		lo, hi := neighbours(i, r)
		dist := (f.Lat[hi] - f.Lat[lo]) * toRad * EarthRadius
		for j := range c {
			dy.Set(i, j, (f.Data.At(hi, j)-f.Data.At(lo, j))/dist)
		}
	}
	for j := range c {
		lo, hi := neighbours(j, c)
		dlon := (f.Lon[hi] - f.Lon[lo]) * toRad * EarthRadius
		for i := range r {
			dist := dlon * math.Cos(f.Lat[i]*toRad)
			dx.Set(i, j, (f.Data.At(i, hi)-f.Data.At(i, lo))/dist)
		}
	}
	return f.Like(dx), f.Like(dy), nil
}

func neighbours(i, n int) (lo, hi int) {
	switch i {
	case 0:
		return 0, 1
	case n - 1:
		return n - 2, n - 1
	default:
		return i - 1, i + 1
	}
}
