package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField(t *testing.T, rows, cols int, fn func(i, j int) float64) *Field {
	t.Helper()
	lat := make([]float64, rows)
	for i := range lat {
		lat[i] = float64(rows-i) * 0.5
	}
	lon := make([]float64, cols)
	for j := range lon {
		lon[j] = float64(j) * 0.5
	}
	data := make([]float64, rows*cols)
	for i := range rows {
		for j := range cols {
			data[i*cols+j] = fn(i, j)
		}
	}
	f, err := NewField(data, lat, lon)
	require.NoError(t, err)
	return f
}

func TestNewField(t *testing.T) {
	_, err := NewField([]float64{1, 2, 3}, []float64{0, 1}, []float64{0, 1})
	require.Error(t, err)

	_, err = NewField(nil, nil, []float64{0})
	require.ErrorIs(t, err, ErrGridTooSmall)
}

func TestArithmetic(t *testing.T) {
	a := testField(t, 2, 3, func(i, j int) float64 { return float64(i + j) })
	b := testField(t, 2, 3, func(_, _ int) float64 { return 2 })

	sum, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4, 3, 4, 5}, sum.Values())

	diff, err := Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 0, -1, 0, 1}, diff.Values())

	assert.Equal(t, []float64{0, 3, 6, 3, 6, 9}, Scale(3, a).Values())
	assert.Equal(t, []float64{0, 1, 4, 1, 4, 9}, a.Map(func(v float64) float64 { return v * v }).Values())

	mean, err := Mean(a, b, b)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3, mean.Data.At(0, 0), 1e-12)

	mag, err := Hypot(b, b)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Sqrt2, mag.Data.At(1, 2), 1e-12)

	c := testField(t, 3, 3, func(_, _ int) float64 { return 0 })
	_, err = Add(a, c)
	require.Error(t, err)
	_, err = a.Zip(func(v []float64) float64 { return v[0] }, c)
	require.Error(t, err)
	_, err = Mean()
	require.Error(t, err)
}

func TestSmooth9(t *testing.T) {
	f := testField(t, 4, 5, func(i, j int) float64 { return float64(i*i + 3*j) })

	t.Run("zero weights are the identity", func(t *testing.T) {
		out, err := Smooth9(f, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, f.Values(), out.Values())
	})

	t.Run("perimeter unchanged", func(t *testing.T) {
		out, err := Smooth9(f, DefaultP, DefaultQ)
		require.NoError(t, err)
		r, c := out.Dims()
		for j := range c {
			assert.Equal(t, f.Data.At(0, j), out.Data.At(0, j))
			assert.Equal(t, f.Data.At(r-1, j), out.Data.At(r-1, j))
		}
		for i := range r {
			assert.Equal(t, f.Data.At(i, 0), out.Data.At(i, 0))
			assert.Equal(t, f.Data.At(i, c-1), out.Data.At(i, c-1))
		}
	})

	t.Run("stencil", func(t *testing.T) {
		out, err := Smooth9(f, DefaultP, DefaultQ)
		require.NoError(t, err)
		// At (1,1): x=4, sides=3+7+1+7=18, corners=0+6+4+10=20.
		want := 4 + 0.5/4*(18-16) + 0.25/4*(20-16)
		assert.InDelta(t, want, out.Data.At(1, 1), 1e-12)
	})

	t.Run("linear field is preserved", func(t *testing.T) {
		lin := testField(t, 5, 5, func(i, j int) float64 { return float64(2*i - j) })
		out, err := Smooth9(lin, DefaultP, DefaultQ)
		require.NoError(t, err)
		assert.InDeltaSlice(t, lin.Values(), out.Values(), 1e-12)
	})

	t.Run("NaN neighbour leaves point", func(t *testing.T) {
		g := testField(t, 3, 3, func(i, j int) float64 { return float64(i * j) })
		g.Data.Set(0, 1, math.NaN())
		out, err := Smooth9(g, DefaultP, DefaultQ)
		require.NoError(t, err)
		assert.Equal(t, g.Data.At(1, 1), out.Data.At(1, 1))
	})

	t.Run("too small", func(t *testing.T) {
		g := testField(t, 2, 5, func(_, _ int) float64 { return 1 })
		_, err := Smooth9(g, DefaultP, DefaultQ)
		require.ErrorIs(t, err, ErrGridTooSmall)
	})
}

func TestGradients(t *testing.T) {
	// f = lon in degrees, so ∂f/∂x = 1 / (R cosφ · π/180).
	f := testField(t, 3, 4, func(_, j int) float64 { return float64(j) * 0.5 })
	dfdx, dfdy, err := Gradients(f)
	require.NoError(t, err)

	for i := range 3 {
		want := 1 / (EarthRadius * math.Pi / 180 * math.Cos(f.Lat[i]*math.Pi/180))
		for j := range 4 {
			assert.InEpsilon(t, want, dfdx.Data.At(i, j), 1e-9)
			assert.InDelta(t, 0, dfdy.Data.At(i, j), 1e-18)
		}
	}

	// Latitudes decrease down the rows; f = lat gives a positive ∂f/∂y.
	g := testField(t, 3, 3, func(i, _ int) float64 { return float64(3-i) * 0.5 })
	_, dgdy, err := Gradients(g)
	require.NoError(t, err)
	assert.InEpsilon(t, 1/(EarthRadius*math.Pi/180), dgdy.Data.At(0, 0), 1e-9)
	assert.InEpsilon(t, 1/(EarthRadius*math.Pi/180), dgdy.Data.At(1, 1), 1e-9)

	_, _, err = Gradients(testField(t, 1, 3, func(_, _ int) float64 { return 0 }))
	require.ErrorIs(t, err, ErrGridTooSmall)
}

func TestPercentileAndRange(t *testing.T) {
	f := testField(t, 2, 5, func(i, j int) float64 { return float64(i*5 + j + 1) })
	f.Data.Set(0, 0, math.NaN())

	lo, hi := Range(f)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 10.0, hi)

	assert.Equal(t, 10.0, Percentile(f, 100))
	p90 := Percentile(f, 90)
	assert.GreaterOrEqual(t, p90, 9.0)
	assert.LessOrEqual(t, p90, 10.0)

	empty := f.Map(func(float64) float64 { return math.NaN() })
	assert.True(t, math.IsNaN(Percentile(empty, 50)))
	lo, _ = Range(empty)
	assert.True(t, math.IsNaN(lo))
}
