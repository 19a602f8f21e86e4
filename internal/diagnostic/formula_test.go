package diagnostic

import (
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gfs-plot/internal/grid"
)

var errMissing = errors.New("missing")

// memSource serves constant fields from memory.
type memSource struct {
	lat, lon []float64
	surface  map[string]float64
	levels   map[string]map[int]float64
	reads    int
}

func newMemSource() *memSource {
	return &memSource{
		lat:     []float64{30, 20, 10, 0},
		lon:     []float64{0, 10, 20},
		surface: map[string]float64{},
		levels:  map[string]map[int]float64{},
	}
}

func (m *memSource) field(v float64) *grid.Field {
	data := make([]float64, len(m.lat)*len(m.lon))
	for i := range data {
		data[i] = v
	}
	f, _ := grid.NewField(data, m.lat, m.lon)
	return f
}

func (m *memSource) setLevel(name string, lev int, v float64) {
	if m.levels[name] == nil {
		m.levels[name] = map[int]float64{}
	}
	m.levels[name][lev] = v
}

func (m *memSource) Surface(name string) (*grid.Field, error) {
	m.reads++
	v, ok := m.surface[name]
	if !ok {
		return nil, errMissing
	}
	return m.field(v), nil
}

func (m *memSource) Level(name string, hPa int) (*grid.Field, error) {
	m.reads++
	v, ok := m.levels[name][hPa]
	if !ok {
		return nil, errMissing
	}
	return m.field(v), nil
}

func (m *memSource) LevelsOf(name string) ([]int, error) {
	if m.levels[name] == nil {
		return nil, errMissing
	}
	var out []int
	for lev := range m.levels[name] {
		out = append(out, lev)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

func (m *memSource) Find(substr string) (string, bool) {
	for name := range m.surface {
		if strings.Contains(name, substr) {
			return name, true
		}
	}
	return "", false
}

func TestDewpoint(t *testing.T) {
	m := newMemSource()
	td, err := Dewpoint(m.field(300), m.field(80))
	require.NoError(t, err)
	assert.InDelta(t, 300-Kelvin-4, td.Data.At(0, 0), 1e-12)
}

func TestKIndex(t *testing.T) {
	m := newMemSource()
	ki, err := KIndex(m.field(20), m.field(10), m.field(-10), m.field(15), m.field(5))
	require.NoError(t, err)
	// (20 - -10) + 15 - (10 - 5)
	assert.InDelta(t, 40.0, ki.Data.At(1, 1), 1e-12)
}

func TestSaturationVapourDensity(t *testing.T) {
	m := newMemSource()
	svd := SaturationVapourDensity(m.field(Kelvin + 20))
	// 2337 Pa of vapour at 20 °C is about 17.3 g/m³.
	assert.InDelta(t, 0.0173, svd.Data.At(0, 0), 2e-4)
}

func TestMonsoonDepth(t *testing.T) {
	m := newMemSource()
	t850 := m.field(Kelvin + 20)
	md, err := MonsoonDepth(m.field(500), m.field(40), t850)
	require.NoError(t, err)
	svd := SaturationVapourDensity(t850).Data.At(0, 0)
	assert.InDelta(t, 500+40/svd, md.Data.At(2, 2), 1e-9)
}

func TestTheta(t *testing.T) {
	m := newMemSource()
	assert.InDelta(t, 300.0, Theta(m.field(300), 1000).Data.At(0, 0), 1e-12)
	assert.InDelta(t, 250*math.Pow(2, Kappa), Theta(m.field(250), 500).Data.At(0, 0), 1e-9)
}

func TestRelativeVorticity(t *testing.T) {
	m := newMemSource()
	absv := m.field(1e-4)
	rv := RelativeVorticity(absv)
	f30 := 2 * Omega * math.Sin(30*math.Pi/180)
	assert.InDelta(t, 1e-4-f30, rv.Data.At(0, 0), 1e-15)
	assert.InDelta(t, 1e-4, rv.Data.At(3, 0), 1e-15, "no Coriolis at the equator")
	assert.Equal(t, 1e-4, absv.Data.At(0, 0), "input untouched")
}

func TestDivergence_UniformWind(t *testing.T) {
	m := newMemSource()
	div, err := Divergence(m.field(10), m.field(-5))
	require.NoError(t, err)
	for _, v := range div.Values() {
		assert.InDelta(t, 0, v, 1e-15)
	}
}

func TestPotentialVorticity(t *testing.T) {
	m := newMemSource()
	m.setLevel(varTMP, 600, 270)
	m.setLevel(varTMP, 500, 260)
	m.setLevel(varTMP, 400, 248)
	m.setLevel(varABSV, 500, 1e-4)

	pv, err := PotentialVorticity(m, 500)
	require.NoError(t, err)

	dtheta := 270*math.Pow(1000.0/600, Kappa) - 248*math.Pow(1000.0/400, Kappa)
	want := -Gravity * 1e-4 * dtheta / 20000 * 1e6
	assert.InDelta(t, want, pv.Data.At(0, 0), 1e-9)
	assert.Greater(t, pv.Data.At(0, 0), 0.0, "stable column with cyclonic vorticity has positive PV")

	_, err = PotentialVorticity(m, 600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a level above and below")

	_, err = PotentialVorticity(m, 450)
	require.Error(t, err)
}

func TestMaxShear(t *testing.T) {
	m := newMemSource()
	for _, lev := range ShearLower {
		m.setLevel(varU, lev, 2)
		m.setLevel(varV, lev, 0)
	}
	for _, lev := range ShearUpper {
		m.setLevel(varU, lev, 5)
		m.setLevel(varV, lev, 0)
	}
	m.setLevel(varU, 925, -3)
	m.setLevel(varV, 550, 12)

	shear, err := MaxShear(m)
	require.NoError(t, err)
	// Largest difference: 550 hPa (5, 12) minus 925 hPa (-3, 0).
	assert.InDelta(t, math.Hypot(8, 12), shear.Magnitude.Data.At(0, 0), 1e-12)
	assert.InDelta(t, 8.0, shear.U.Data.At(0, 0), 1e-12)
	assert.InDelta(t, 12.0, shear.V.Data.At(0, 0), 1e-12)

	delete(m.levels[varV], 500)
	_, err = MaxShear(m)
	require.ErrorIs(t, err, errMissing)
}

func TestLayerMean(t *testing.T) {
	m := newMemSource()
	m.setLevel(varV, 1000, 100)
	m.setLevel(varV, 950, 1)
	m.setLevel(varV, 700, 2)
	m.setLevel(varV, 600, 6)
	m.setLevel(varV, 500, 100)

	mean, err := LayerMean(m, varV, 600, 950)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, mean.Data.At(0, 0), 1e-12)

	_, err = LayerMean(m, varV, 10, 20)
	require.Error(t, err)
}

func TestLevelHelpers(t *testing.T) {
	assert.Equal(t, []float64{15, 30, 45, 60}, Steps(15, 60, 15))
	got := Intervals(-1, 1, 4)
	assert.InDeltaSlice(t, []float64{-1, -0.5, 0, 0.5, 1}, got, 1e-12)
	assert.Len(t, Steps(-38.5, 21, 2.5), 24)
	assert.Equal(t, 1002.0, roundEven(1002.9))
	assert.Equal(t, 1004.0, roundEven(1003.1))
}
