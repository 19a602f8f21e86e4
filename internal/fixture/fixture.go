// Package fixture writes synthetic GFS analysis and forecast files in the
// layout of NCL-converted GRIB2 output. Fields are smooth analytic
// functions of position, level and forecast step, so every product has
// structure to contour.
package fixture

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/couchcryptid/gfs-plot/internal/adapter/netcdf"
	"github.com/couchcryptid/gfs-plot/internal/domain"
)

// FillValue is the _FillValue attribute of every data variable.
const FillValue float32 = 1e20

// Levels are the isobaric levels written, in hPa, in GFS file order.
var Levels = []int{200, 250, 300, 350, 400, 450, 500, 550, 600, 650, 700, 750, 800, 850, 900, 925, 950, 975, 1000}

// Grid is the resolution of a fixture in degrees. The grid is global, with
// latitudes from 90 down to -90 and longitudes from 0 up to 360-Res.
type Grid struct {
	Res float64
}

// DefaultGrid is coarse enough to keep fixtures small.
var DefaultGrid = Grid{Res: 2}

func (g Grid) coords() (lat, lon []float64) {
	nlat := int(math.Round(180/g.Res)) + 1
	nlon := int(math.Round(360 / g.Res))
	lat = make([]float64, nlat)
	for i := range lat {
		lat[i] = 90 - g.Res*float64(i)
	}
	lon = make([]float64, nlon)
	for j := range lon {
		lon[j] = g.Res * float64(j)
	}
	return lat, lon
}

// Write creates the analysis and forecast files for init in dir, using the
// GFS file names.
func Write(dir string, init domain.InitTime, fore []int, g Grid) error {
	if err := WriteAnalysis(filepath.Join(dir, domain.AnalysisFile(init)), g); err != nil {
		return err
	}
	return WriteForecast(filepath.Join(dir, domain.ForecastFile(init)), fore, g)
}

// WriteAnalysis writes an analysis file.
func WriteAnalysis(path string, g Grid) error {
	return netcdf.WriteClassic(path, layout(g, nil))
}

// WriteForecast writes a forecast file with one time step per forecast hour.
func WriteForecast(path string, fore []int, g Grid) error {
	if len(fore) == 0 {
		return fmt.Errorf("write forecast %s: no forecast hours", path)
	}
	return netcdf.WriteClassic(path, layout(g, fore))
}

const (
	timeDim  = "forecast_time0"
	levDim   = "lv_ISBL0"
	hgtDim   = "lv_HTGL1"
	latDim   = "lat_0"
	lonDim   = "lon_0"
	omega    = 7.292e-5
	degToRad = math.Pi / 180
)

// point is the position a field function is evaluated at.
type point struct {
	lat, lon float64 // degrees
	p        float64 // hPa, 0 for single-level fields
	step     int
}

type fieldFunc func(pt point) float64

func layout(g Grid, fore []int) netcdf.Layout {
	lat, lon := g.coords()
	l := netcdf.Layout{
		Dims: []netcdf.Dim{
			{Name: levDim, Len: len(Levels)},
			{Name: hgtDim, Len: 1},
			{Name: latDim, Len: len(lat)},
			{Name: lonDim, Len: len(lon)},
		},
		Attrs: map[string]any{"Conventions": "None", "creation_date": "synthetic"},
	}
	if fore != nil {
		l.Dims = append([]netcdf.Dim{{Name: timeDim, Len: len(fore)}}, l.Dims...)
		hours := make([]float32, len(fore))
		for i, h := range fore {
			hours[i] = float32(h)
		}
		l.Vars = append(l.Vars, netcdf.Var{Name: timeDim, Dims: []string{timeDim}, Data: hours,
			Attrs: map[string]any{"units": "hours"}})
	}

	pa := make([]float32, len(Levels))
	for i, lev := range Levels {
		pa[i] = float32(lev * 100)
	}
	l.Vars = append(l.Vars,
		coordVar(latDim, lat, "degrees_north"),
		coordVar(lonDim, lon, "degrees_east"),
		netcdf.Var{Name: levDim, Dims: []string{levDim}, Data: pa, Attrs: map[string]any{"units": "Pa"}},
		netcdf.Var{Name: hgtDim, Dims: []string{hgtDim}, Data: []float32{10}, Attrs: map[string]any{"units": "m"}},
	)

	steps := max(len(fore), 1)
	for _, v := range isobaric {
		l.Vars = append(l.Vars, dataVar(v.name, v.units, fore != nil, []string{levDim}, lat, lon, steps, Levels, v.fn))
	}
	for _, v := range single {
		l.Vars = append(l.Vars, dataVar(v.name, v.units, fore != nil, nil, lat, lon, steps, nil, v.fn))
	}
	for _, v := range aboveGround {
		l.Vars = append(l.Vars, dataVar(v.name, v.units, fore != nil, []string{hgtDim}, lat, lon, steps, []int{0}, v.fn))
	}
	if fore != nil {
		l.Vars = append(l.Vars, dataVar("PRATE_P8_L1_GLL0_avg", "kg m-2 s-1", true, nil, lat, lon, steps, nil, prate))
	}
	return l
}

func coordVar(name string, vals []float64, units string) netcdf.Var {
	data := make([]float32, len(vals))
	for i, v := range vals {
		data[i] = float32(v)
	}
	return netcdf.Var{Name: name, Dims: []string{name}, Data: data, Attrs: map[string]any{"units": units}}
}

// dataVar evaluates fn over [time,] [extra,] lat, lon.
func dataVar(name, units string, timed bool, extra []string, lat, lon []float64, steps int, levels []int, fn fieldFunc) netcdf.Var {
	dims := append([]string(nil), extra...)
	if timed {
		dims = append([]string{timeDim}, dims...)
	} else {
		steps = 1
	}
	dims = append(dims, latDim, lonDim)

	nlev := max(len(levels), 1)
	data := make([]float32, 0, steps*nlev*len(lat)*len(lon))
	for s := range steps {
		for k := range nlev {
			pt := point{step: s}
			if len(extra) > 0 && extra[0] == levDim {
				pt.p = float64(levels[k])
			}
			for _, la := range lat {
				for _, lo := range lon {
					pt.lat, pt.lon = la, lo
					data = append(data, float32(fn(pt)))
				}
			}
		}
	}
	return netcdf.Var{
		Name:  name,
		Dims:  dims,
		Data:  data,
		Attrs: map[string]any{"units": units, "_FillValue": []float32{FillValue}},
	}
}

type namedField struct {
	name, units string
	fn          fieldFunc
}

var isobaric = []namedField{
	{"TMP_P0_L100_GLL0", "K", temperature},
	{"RH_P0_L100_GLL0", "%", humidity},
	{"UGRD_P0_L100_GLL0", "m s-1", uwind},
	{"VGRD_P0_L100_GLL0", "m s-1", vwind},
	{"HGT_P0_L100_GLL0", "gpm", geopotential},
	{"ABSV_P0_L100_GLL0", "s-1", absVorticity},
}

var single = []namedField{
	{"PWAT_P0_L200_GLL0", "kg m-2", func(pt point) float64 { return 40 + 20*math.Cos(pt.lat*degToRad) + wave(pt, 5) }},
	{"CAPE_P0_L1_GLL0", "J kg-1", func(pt point) float64 {
		return math.Max(0, 1500+2500*math.Sin(2*pt.lon*degToRad)*math.Cos(pt.lat*degToRad)+wave(pt, 100))
	}},
	{"CIN_P0_L1_GLL0", "J kg-1", func(pt point) float64 { return -150 - 120*math.Cos(3*pt.lon*degToRad) }},
	{"HGT_P0_L1_GLL0", "gpm", func(pt point) float64 { return 600 + 400*math.Pow(math.Sin(2*pt.lat*degToRad), 2) }},
	{"PRMSL_P0_L101_GLL0", "Pa", func(pt point) float64 {
		return 101325 + 1200*math.Sin((2*pt.lat+pt.lon)*degToRad) + wave(pt, 50)
	}},
	{"DPT_P0_L103_GLL0", "K", func(pt point) float64 {
		return 283 + 12*math.Cos(pt.lat*degToRad)*math.Sin(pt.lon*degToRad) + wave(pt, 0.5)
	}},
}

var aboveGround = []namedField{
	{"UGRD_P0_L103_GLL0", "m s-1", func(pt point) float64 { return 6 * math.Sin(pt.lat*degToRad*3) }},
	{"VGRD_P0_L103_GLL0", "m s-1", func(pt point) float64 { return 4 * math.Cos(pt.lon*degToRad*2) }},
}

// wave adds a forecast-step dependent perturbation of amplitude a.
func wave(pt point, a float64) float64 {
	return a * math.Sin((pt.lon+10*float64(pt.step))*degToRad*4)
}

func temperature(pt point) float64 {
	sfc := 300 - 30*math.Pow(math.Sin(pt.lat*degToRad), 2)
	return sfc*math.Pow(pt.p/1000, 0.19) + 2*math.Sin(pt.lon*degToRad*2) + wave(pt, 0.5)
}

func humidity(pt point) float64 {
	return 55 + 35*math.Sin(pt.lon*degToRad*2)*math.Cos(pt.lat*degToRad) - 10*(1000-pt.p)/800
}

func uwind(pt point) float64 {
	return (5 + 25*(1000-pt.p)/800) * math.Sin(pt.lat*degToRad*2)
}

func vwind(pt point) float64 {
	return 8*math.Cos(pt.lon*degToRad*3)*math.Cos(pt.lat*degToRad) + wave(pt, 1)
}

func geopotential(pt point) float64 {
	return 44331*(1-math.Pow(pt.p/1013.25, 0.19)) + 40*math.Sin(pt.lon*degToRad) + 30*math.Cos(pt.lat*degToRad*2)
}

func absVorticity(pt point) float64 {
	return 2*omega*math.Sin(pt.lat*degToRad) + 3e-5*math.Sin(pt.lon*degToRad*3)*math.Cos(pt.lat*degToRad)
}

func prate(pt point) float64 {
	return 5e-4 * math.Max(0, math.Sin(pt.lon*degToRad*2)*math.Cos(pt.lat*degToRad)+0.2*math.Sin(float64(pt.step)))
}
