package diagnostic

import (
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/gfs-plot/internal/grid"
)

// Physical constants.
const (
	Kelvin  = 273.15
	Gravity = 9.80665  // m s-2
	Omega   = 7.292e-5 // Earth's rotation rate, s-1
	Rv      = 461.5    // gas constant for water vapour, J kg-1 K-1
	Kappa   = 0.286    // R/cp for dry air
)

// Shear layer pressure levels in hPa.
var (
	ShearLower = []int{925, 900, 850, 800}
	ShearUpper = []int{700, 650, 600, 550, 500}
)

// GFS variable names.
const (
	varTMP   = "TMP_P0_L100_GLL0"
	varRH    = "RH_P0_L100_GLL0"
	varU     = "UGRD_P0_L100_GLL0"
	varV     = "VGRD_P0_L100_GLL0"
	varHGT   = "HGT_P0_L100_GLL0"
	varABSV  = "ABSV_P0_L100_GLL0"
	varPWAT  = "PWAT_P0_L200_GLL0"
	varCAPE  = "CAPE_P0_L1_GLL0"
	varCIN   = "CIN_P0_L1_GLL0"
	varZsfc  = "HGT_P0_L1_GLL0"
	varPRMSL = "PRMSL_P0_L101_GLL0"
	varDPT2m = "DPT_P0_L103_GLL0"
	varU10m  = "UGRD_P0_L103_GLL0"
	varV10m  = "VGRD_P0_L103_GLL0"
	prefixPR = "PRATE"
)

// RainfallPrefix starts the name of the precipitation rate variable, whose
// suffix depends on the averaging window of the forecast file.
const RainfallPrefix = prefixPR

// Variables lists the GFS variables products read, other than rainfall.
func Variables() []string {
	return []string{varTMP, varRH, varU, varV, varHGT, varABSV, varPWAT, varCAPE, varCIN,
		varZsfc, varPRMSL, varDPT2m, varU10m, varV10m}
}

// Source is where products read their fields from.
type Source interface {
	Surface(name string) (*grid.Field, error)
	Level(name string, hPa int) (*grid.Field, error)
	LevelsOf(name string) ([]int, error)
	Find(substr string) (string, bool)
}

// Dewpoint estimates the dewpoint in °C from temperature (K) and relative
// humidity (%): Td = T - (100-RH)/5.
func Dewpoint(t, rh *grid.Field) (*grid.Field, error) {
	return t.Zip(func(v []float64) float64 { return v[0] - Kelvin - (100-v[1])/5 }, rh)
}

// KIndex computes the K-index from temperatures and dewpoints in °C:
// (T850 - T500) + Td850 - (T700 - Td700).
func KIndex(t850, t700, t500, td850, td700 *grid.Field) (*grid.Field, error) {
	return t850.Zip(func(v []float64) float64 {
		return (v[0] - v[2]) + v[3] - (v[1] - v[4])
	}, t700, t500, td850, td700)
}

// SaturationVapourDensity returns the saturation vapour density in kg m-3
// for a temperature in K.
func SaturationVapourDensity(t *grid.Field) *grid.Field {
	return t.Map(func(k float64) float64 {
		tc := k - Kelvin
		return 100 * 6.11 * math.Pow(10, 7.5*tc/(237.3+tc)) / (Rv * k)
	})
}

// MonsoonDepth is the height (m) a column's precipitable water would reach
// at saturation, added to the surface height: Zsfc + PWAT/SVD(T850).
func MonsoonDepth(zsfc, pwat, t850 *grid.Field) (*grid.Field, error) {
	svd := SaturationVapourDensity(t850)
	return zsfc.Zip(func(v []float64) float64 { return v[0] + v[1]/v[2] }, pwat, svd)
}

// Theta is the potential temperature T·(1000/p)^κ for p in hPa.
func Theta(t *grid.Field, hPa int) *grid.Field {
	factor := math.Pow(1000/float64(hPa), Kappa)
	return grid.Scale(factor, t)
}

// RelativeVorticity removes the Coriolis parameter 2Ω·sinφ from absolute
// vorticity.
func RelativeVorticity(absv *grid.Field) *grid.Field {
	out := absv.Map(func(v float64) float64 { return v })
	r, c := out.Dims()
	for i := range r {
		f := 2 * Omega * math.Sin(absv.Lat[i]*math.Pi/180)
		for j := range c {
			out.Data.Set(i, j, out.Data.At(i, j)-f)
		}
	}
	return out
}

// Divergence is ∂u/∂x + ∂v/∂y.
func Divergence(u, v *grid.Field) (*grid.Field, error) {
	dudx, _, err := grid.Gradients(u)
	if err != nil {
		return nil, err
	}
	_, dvdy, err := grid.Gradients(v)
	if err != nil {
		return nil, err
	}
	return grid.Add(dudx, dvdy)
}

// PotentialVorticity computes isobaric PV in PVU at a level from θ on the
// neighbouring levels: -g·η·∂θ/∂p·1e6, with p in Pa. The level must have a
// neighbour on both sides.
func PotentialVorticity(src Source, hPa int) (*grid.Field, error) {
	levels, err := src.LevelsOf(varTMP)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(levels)
	slices.Sort(sorted)
	k := slices.Index(sorted, hPa)
	if k < 0 {
		return nil, fmt.Errorf("pv at %d hPa: no temperature on that level", hPa)
	}
	if k == 0 || k == len(sorted)-1 {
		return nil, fmt.Errorf("pv at %d hPa: needs a level above and below", hPa)
	}
	pLo, pHi := sorted[k-1], sorted[k+1]

	tLo, err := src.Level(varTMP, pLo)
	if err != nil {
		return nil, err
	}
	tHi, err := src.Level(varTMP, pHi)
	if err != nil {
		return nil, err
	}
	eta, err := src.Level(varABSV, hPa)
	if err != nil {
		return nil, err
	}

	dp := float64(pHi-pLo) * 100
	dtheta, err := grid.Sub(Theta(tHi, pHi), Theta(tLo, pLo))
	if err != nil {
		return nil, err
	}
	return eta.Zip(func(v []float64) float64 { return -Gravity * v[0] * v[1] / dp * 1e6 }, dtheta)
}

// Shear is the strongest low-level wind shear at each point and the vector
// difference it came from.
type Shear struct {
	Magnitude, U, V *grid.Field
}

// MaxShear searches every pair of a lower and an upper level for the
// largest vector wind difference at each grid point.
func MaxShear(src Source) (*Shear, error) {
	lower, err := winds(src, ShearLower)
	if err != nil {
		return nil, err
	}
	upper, err := winds(src, ShearUpper)
	if err != nil {
		return nil, err
	}

	first := lower[0].u
	mag := first.Map(func(float64) float64 { return 0 })
	su := first.Map(func(float64) float64 { return 0 })
	sv := first.Map(func(float64) float64 { return 0 })
	r, c := first.Dims()
	for _, lo := range lower {
		for _, up := range upper {
			for i := range r {
				for j := range c {
					du := up.u.Data.At(i, j) - lo.u.Data.At(i, j)
					dv := up.v.Data.At(i, j) - lo.v.Data.At(i, j)
					if m := math.Hypot(du, dv); m > mag.Data.At(i, j) {
						mag.Data.Set(i, j, m)
						su.Data.Set(i, j, du)
						sv.Data.Set(i, j, dv)
					}
				}
			}
		}
	}
	return &Shear{Magnitude: mag, U: su, V: sv}, nil
}

type wind struct{ u, v *grid.Field }

func winds(src Source, levels []int) ([]wind, error) {
	out := make([]wind, 0, len(levels))
	for _, lev := range levels {
		u, err := src.Level(varU, lev)
		if err != nil {
			return nil, err
		}
		v, err := src.Level(varV, lev)
		if err != nil {
			return nil, err
		}
		out = append(out, wind{u, v})
	}
	return out, nil
}

// LayerMean averages a variable over every available level in [lo, hi] hPa.
func LayerMean(src Source, name string, lo, hi int) (*grid.Field, error) {
	levels, err := src.LevelsOf(name)
	if err != nil {
		return nil, err
	}
	var fields []*grid.Field
	for _, lev := range levels {
		if lev < lo || lev > hi {
			continue
		}
		f, err := src.Level(name, lev)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("layer mean of %s: no levels in %d-%d hPa", name, lo, hi)
	}
	return grid.Mean(fields...)
}
