package diagnostic

import (
	"fmt"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/grid"
)

var (
	capeLevels = []float64{25, 75, 125, 250, 500, 750, 1000, 1250, 1500, 1750, 2000, 2250,
		2500, 2750, 3000, 3250, 3500, 3750, 4000, 4500, 5000, 5500}
	rainLevels = []float64{0.1, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2, 2.25, 2.5, 3, 3.5, 4, 5}
	wbgyr      = Palette{Ramp: RampWBGYR}
)

func init() {
	register(Product{Key: "CAPE_CIN", title: "CAPE and CIN", tag: "CAPECIN_SNGL",
		HasAnalysis: true, Resize: true, build: buildCAPECIN})
	register(Product{Key: "KI_PWAT_maxshear", title: "K-index, PWAT and max low-level shear", tag: "KI_PWAT_maxshear_SNGL",
		HasAnalysis: true, Resize: true, build: buildKIPWAT})
	register(Product{Key: "MD", title: "Monsoon depth", tag: "MD_SNGL",
		HasAnalysis: true, build: buildMD})
	register(Product{Key: "dewpoint_HL", title: "2 m dewpoint and heat low", tag: "DPandHL_2M_SNGL",
		Resize: true, steps: domain.HeatLowSteps, build: buildDewpointHL})
	register(Product{Key: "divergence", title: "Divergence", tag: "divergence_%dhPa",
		NeedsLevel: true, HasAnalysis: true, Resize: true, build: buildDivergence})
	register(Product{Key: "pv", title: "Potential vorticity", tag: "PV_%dhPa",
		NeedsLevel: true, HasAnalysis: true, build: buildPV})
	register(Product{Key: "rel_vort_smooth", title: "Smoothed relative vorticity", tag: "rel_vort_smoothed_%dhPa",
		NeedsLevel: true, HasAnalysis: true, build: buildRelVort})
	register(Product{Key: "theta", title: "Potential temperature", tag: "theta_%dhPa",
		NeedsLevel: true, HasAnalysis: true, Resize: true, build: buildTheta})
	register(Product{Key: "mslp", title: "Mean sea level pressure", tag: "mslp_SNGL",
		HasAnalysis: true, build: buildMSLP})
	register(Product{Key: "rainfall", title: "Rainfall rate", tag: "PRATE_SNGL",
		build: buildRainfall})
	register(Product{Key: "rainfall_maxshear", title: "Rainfall rate and max low-level shear", tag: "PRATE_max_lowlevel_shear_SNGL",
		Resize: true, build: buildRainfallShear})
	register(Product{Key: "max_lowlevel_shear", title: "Max low-level shear", tag: "max_lowlevel_shear_SNGL",
		HasAnalysis: true, Resize: true, build: buildMaxShear})
	register(Product{Key: "shear_925_700", title: "925-700 hPa shear", tag: "shear_925hPa_700hPa",
		HasAnalysis: true, Resize: true, build: buildShear925700})
	register(Product{Key: "mean_vwinds_950_600", title: "950-600 hPa mean meridional wind", tag: "meanVwinds_950hPa_600hPa_SNGL",
		HasAnalysis: true, build: buildMeanVWinds})
	register(Product{Key: "streamlines_10m", title: "10 m winds", tag: "stream10m_SNGL",
		HasAnalysis: true, Resize: true, build: buildWinds10m})
}

func buildCAPECIN(src Source, _ int) (Chart, error) {
	cape, err := src.Surface(varCAPE)
	if err != nil {
		return Chart{}, err
	}
	cin, err := src.Surface(varCIN)
	if err != nil {
		return Chart{}, err
	}
	if cin, err = grid.Smooth9(cin, grid.DefaultP, grid.DefaultQ); err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill: &FillLayer{Field: cape, Levels: capeLevels, Palette: wbgyr, TransparentBelow: true, Label: "CAPE (J/kg)"},
		Lines: []LineLayer{{Field: cin, Levels: []float64{-250, -100, -50}, Color: red, Width: 2.5}},
	}, nil
}

func buildKIPWAT(src Source, _ int) (Chart, error) {
	t := map[int]*grid.Field{}
	td := map[int]*grid.Field{}
	for _, lev := range []int{850, 700, 500} {
		tk, err := src.Level(varTMP, lev)
		if err != nil {
			return Chart{}, err
		}
		t[lev] = tk.Map(func(v float64) float64 { return v - Kelvin })
		if lev == 500 {
			continue
		}
		rh, err := src.Level(varRH, lev)
		if err != nil {
			return Chart{}, err
		}
		if td[lev], err = Dewpoint(tk, rh); err != nil {
			return Chart{}, err
		}
	}
	ki, err := KIndex(t[850], t[700], t[500], td[850], td[700])
	if err != nil {
		return Chart{}, err
	}
	pwat, err := src.Surface(varPWAT)
	if err != nil {
		return Chart{}, err
	}
	shear, err := MaxShear(src)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill:    &FillLayer{Field: ki, Levels: Steps(15, 45, 1.5), Palette: wbgyr, Label: "K-index"},
		Lines:   []LineLayer{{Field: pwat, Levels: Steps(15, 60, 15), Color: red, Width: 2.5}},
		Vectors: []VectorLayer{{U: shear.U, V: shear.V, Color: black, RefMagnitude: 30}},
	}, nil
}

func buildMD(src Source, _ int) (Chart, error) {
	zsfc, err := src.Surface(varZsfc)
	if err != nil {
		return Chart{}, err
	}
	pwat, err := src.Surface(varPWAT)
	if err != nil {
		return Chart{}, err
	}
	t850, err := src.Level(varTMP, 850)
	if err != nil {
		return Chart{}, err
	}
	md, err := MonsoonDepth(zsfc, pwat, t850)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill: &FillLayer{Field: md, Levels: Steps(1000, 6000, 250), Palette: Palette{Ramp: RampSpectral}, Label: "Monsoon depth (m)"},
	}, nil
}

// heatLowSpread is the separation of the heat-low contours around the
// threshold.
const heatLowSpread = 200

func buildDewpointHL(src Source, _ int) (Chart, error) {
	dpt, err := src.Surface(varDPT2m)
	if err != nil {
		return Chart{}, err
	}
	dpt = dpt.Map(func(v float64) float64 { return v - Kelvin })

	z700, err := src.Level(varHGT, 700)
	if err != nil {
		return Chart{}, err
	}
	z925, err := src.Level(varHGT, 925)
	if err != nil {
		return Chart{}, err
	}
	thick, err := grid.Sub(grid.Scale(0.1, z700), grid.Scale(0.1, z925))
	if err != nil {
		return Chart{}, err
	}
	thr := grid.Percentile(thick, 90)
	return Chart{
		Fill: &FillLayer{
			Field:   dpt,
			Levels:  Steps(-38.5, 21, 2.5),
			Palette: Palette{Ramp: RampWBGYR, From: 31, Reverse: true},
			Label:   "2 m dewpoint",
		},
		Lines: []LineLayer{{Field: thick, Levels: []float64{thr - heatLowSpread, thr, thr + heatLowSpread}, Color: black, Width: 2.5}},
	}, nil
}

func levelWinds(src Source, lev int) (u, v *grid.Field, err error) {
	if u, err = src.Level(varU, lev); err != nil {
		return nil, nil, err
	}
	if v, err = src.Level(varV, lev); err != nil {
		return nil, nil, err
	}
	return u, v, nil
}

func buildDivergence(src Source, lev int) (Chart, error) {
	u, v, err := levelWinds(src, lev)
	if err != nil {
		return Chart{}, err
	}
	div, err := Divergence(u, v)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill: &FillLayer{Field: div, Levels: Intervals(-5e-5, 5e-5, 20), Palette: Palette{Ramp: RampRdBu}, Label: "Divergence (1/s)"},
	}, nil
}

// pvRange is the symmetric fill range in PVU for a level.
func pvRange(hPa int) float64 {
	switch {
	case hPa < 300:
		return 10
	case hPa < 700:
		return 2.5
	default:
		return 1
	}
}

func buildPV(src Source, lev int) (Chart, error) {
	pv, err := PotentialVorticity(src, lev)
	if err != nil {
		return Chart{}, err
	}
	r := pvRange(lev)
	return Chart{
		Fill: &FillLayer{Field: pv, Levels: Intervals(-r, r, 20), Palette: Palette{Ramp: RampRdBu, Reverse: true}, Label: "PV (PVU)"},
	}, nil
}

func buildRelVort(src Source, lev int) (Chart, error) {
	absv, err := src.Level(varABSV, lev)
	if err != nil {
		return Chart{}, err
	}
	vort, err := grid.Smooth9(RelativeVorticity(absv), grid.DefaultP, grid.DefaultQ)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill: &FillLayer{Field: vort, Levels: Steps(-2.5e-4, 2.5e-4, 2.5e-5), Palette: Palette{Ramp: RampBlueRed}, Label: "Relative vorticity (1/s)"},
	}, nil
}

func buildTheta(src Source, lev int) (Chart, error) {
	t, err := src.Level(varTMP, lev)
	if err != nil {
		return Chart{}, err
	}
	theta, err := grid.Smooth9(Theta(t, lev), grid.DefaultP, grid.DefaultQ)
	if err != nil {
		return Chart{}, err
	}
	levels := Steps(290, 355, 2.5)
	return Chart{
		Fill:  &FillLayer{Field: theta, Levels: levels, Palette: wbgyr, Label: "Potential temperature (K)"},
		Lines: []LineLayer{{Field: theta, Levels: levels, Color: black, Width: 1}},
	}, nil
}

func buildMSLP(src Source, _ int) (Chart, error) {
	p, err := src.Surface(varPRMSL)
	if err != nil {
		return Chart{}, err
	}
	p, err = grid.Smooth9(grid.Scale(0.01, p), grid.DefaultP, grid.DefaultQ)
	if err != nil {
		return Chart{}, err
	}
	lo, hi := grid.Range(p)
	return Chart{
		Lines: []LineLayer{{Field: p, Levels: Steps(roundEven(lo)-10, roundEven(hi)+10, 2), Color: black, Width: 2}},
	}, nil
}

func rainfall(src Source) (*grid.Field, error) {
	name, ok := src.Find(prefixPR)
	if !ok {
		return nil, fmt.Errorf("no %s variable", prefixPR)
	}
	pr, err := src.Surface(name)
	if err != nil {
		return nil, err
	}
	return grid.Scale(3600, pr), nil
}

func rainFill(rain *grid.Field) *FillLayer {
	return &FillLayer{Field: rain, Levels: rainLevels, Palette: wbgyr, TransparentBelow: true, Label: "Rainfall (mm/h)"}
}

func buildRainfall(src Source, _ int) (Chart, error) {
	rain, err := rainfall(src)
	if err != nil {
		return Chart{}, err
	}
	return Chart{Fill: rainFill(rain)}, nil
}

func buildRainfallShear(src Source, _ int) (Chart, error) {
	rain, err := rainfall(src)
	if err != nil {
		return Chart{}, err
	}
	shear, err := MaxShear(src)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill:    rainFill(rain),
		Vectors: []VectorLayer{{U: shear.U, V: shear.V, Color: black, RefMagnitude: 30}},
	}, nil
}

func buildMaxShear(src Source, _ int) (Chart, error) {
	shear, err := MaxShear(src)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill:    &FillLayer{Field: shear.Magnitude, Levels: Steps(10, 40, 2), Palette: wbgyr, TransparentBelow: true, Label: "Max shear (m/s)"},
		Vectors: []VectorLayer{{U: shear.U, V: shear.V, Color: black, RefMagnitude: 30}},
	}, nil
}

func buildShear925700(src Source, _ int) (Chart, error) {
	u925, v925, err := levelWinds(src, 925)
	if err != nil {
		return Chart{}, err
	}
	u700, v700, err := levelWinds(src, 700)
	if err != nil {
		return Chart{}, err
	}
	du, err := grid.Sub(u700, u925)
	if err != nil {
		return Chart{}, err
	}
	dv, err := grid.Sub(v700, v925)
	if err != nil {
		return Chart{}, err
	}
	mag, err := grid.Hypot(du, dv)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill: &FillLayer{Field: mag, Levels: Steps(10, 40, 2), Palette: wbgyr, TransparentBelow: true, Label: "925-700 hPa shear (m/s)"},
		Vectors: []VectorLayer{
			{U: u925, V: v925, Color: black, RefMagnitude: 20},
			{U: u700, V: v700, Color: red, RefMagnitude: 20},
		},
	}, nil
}

func buildMeanVWinds(src Source, _ int) (Chart, error) {
	u, err := LayerMean(src, varU, 600, 950)
	if err != nil {
		return Chart{}, err
	}
	v, err := LayerMean(src, varV, 600, 950)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill:    &FillLayer{Field: v, Levels: Steps(-10, 10, 1), Palette: Palette{Ramp: RampRdBu, Reverse: true}, Label: "Mean v (m/s)"},
		Vectors: []VectorLayer{{U: u, V: v, Color: black, RefMagnitude: 15}},
	}, nil
}

func buildWinds10m(src Source, _ int) (Chart, error) {
	u, err := src.Surface(varU10m)
	if err != nil {
		return Chart{}, err
	}
	v, err := src.Surface(varV10m)
	if err != nil {
		return Chart{}, err
	}
	speed, err := grid.Hypot(u, v)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Fill:    &FillLayer{Field: speed, Levels: Steps(0, 20, 0.5), Palette: wbgyr, Label: "10 m wind speed (m/s)"},
		Vectors: []VectorLayer{{U: u, V: v, Color: black, RefMagnitude: 10}},
	}, nil
}
