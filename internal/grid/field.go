// Package grid holds regular latitude/longitude fields and the numerics the
// diagnostics are built from: window location, 9-point smoothing, spherical
// gradients and summary statistics.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrGridTooSmall is returned by operations that need more points than the
// field has.
var ErrGridTooSmall = errors.New("grid too small")

// Field is a 2-D field on a lat/lon grid. Rows follow Lat, columns follow
// Lon.
type Field struct {
	Data *mat.Dense
	Lat  []float64
	Lon  []float64
}

// NewField wraps row-major data. len(data) must equal len(lat)*len(lon).
func NewField(data []float64, lat, lon []float64) (*Field, error) {
	if len(lat) == 0 || len(lon) == 0 {
		return nil, fmt.Errorf("new field: %w", ErrGridTooSmall)
	}
	if len(data) != len(lat)*len(lon) {
		return nil, fmt.Errorf("new field: %d values for a %dx%d grid", len(data), len(lat), len(lon))
	}
	return &Field{Data: mat.NewDense(len(lat), len(lon), data), Lat: lat, Lon: lon}, nil
}

// Dims returns the number of rows and columns.
func (f *Field) Dims() (rows, cols int) { return f.Data.Dims() }

// Values returns the row-major backing slice. It aliases the field.
func (f *Field) Values() []float64 { return f.Data.RawMatrix().Data }

// Like returns a field on the same grid holding d.
func (f *Field) Like(d *mat.Dense) *Field {
	return &Field{Data: d, Lat: f.Lat, Lon: f.Lon}
}

// Map applies fn to every point and returns the result as a new field.
func (f *Field) Map(fn func(v float64) float64) *Field {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, f.Data)
	return f.Like(&out)
}

// Zip combines fields pointwise. All fields must share f's shape.
func (f *Field) Zip(fn func(vals []float64) float64, others ...*Field) (*Field, error) {
	r, c := f.Dims()
	for _, o := range others {
		if or, oc := o.Dims(); or != r || oc != c {
			return nil, fmt.Errorf("zip: shape %dx%d does not match %dx%d", or, oc, r, c)
		}
	}
	vals := make([]float64, len(others)+1)
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		vals[0] = v
		for k, o := range others {
			vals[k+1] = o.Data.At(i, j)
		}
		return fn(vals)
	}, f.Data)
	return f.Like(&out), nil
}

// Add returns a+b.
func Add(a, b *Field) (*Field, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Add(a.Data, b.Data)
	return a.Like(&out), nil
}

// Sub returns a-b.
func Sub(a, b *Field) (*Field, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Sub(a.Data, b.Data)
	return a.Like(&out), nil
}

// Scale returns s*f.
func Scale(s float64, f *Field) *Field {
	var out mat.Dense
	out.Scale(s, f.Data)
	return f.Like(&out)
}

// Hypot returns the pointwise magnitude sqrt(u²+v²).
func Hypot(u, v *Field) (*Field, error) {
	return u.Zip(func(x []float64) float64 { return math.Hypot(x[0], x[1]) }, v)
}

// Mean averages fields pointwise.
func Mean(fields ...*Field) (*Field, error) {
	if len(fields) == 0 {
		return nil, errors.New("mean of no fields")
	}
	sum := fields[0]
	for _, f := range fields[1:] {
		var err error
		if sum, err = Add(sum, f); err != nil {
			return nil, err
		}
	}
	return Scale(1/float64(len(fields)), sum), nil
}

func sameShape(a, b *Field) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return fmt.Errorf("shape %dx%d does not match %dx%d", br, bc, ar, ac)
	}
	return nil
}
