package render

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/couchcryptid/gfs-plot/internal/diagnostic"
)

// tableSize is the length every ramp is expanded to, so palette index ranges
// mean the same thing whichever ramp they select from.
const tableSize = 254

// wbgyrStops are the control points of the white-blue-green-yellow-red
// table, as fractions along the table.
var wbgyrStops = []struct {
	at  float64
	rgb color.RGBA
}{
	{0.00, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	{0.08, color.RGBA{R: 200, G: 225, B: 250, A: 255}},
	{0.20, color.RGBA{R: 95, G: 155, B: 235, A: 255}},
	{0.32, color.RGBA{R: 30, G: 80, B: 200, A: 255}},
	{0.44, color.RGBA{R: 40, G: 165, B: 120, A: 255}},
	{0.56, color.RGBA{R: 120, G: 200, B: 60, A: 255}},
	{0.68, color.RGBA{R: 245, G: 235, B: 60, A: 255}},
	{0.80, color.RGBA{R: 250, G: 160, B: 30, A: 255}},
	{0.90, color.RGBA{R: 225, G: 50, B: 25, A: 255}},
	{1.00, color.RGBA{R: 140, G: 10, B: 20, A: 255}},
}

var (
	tablesOnce sync.Once
	tables     map[diagnostic.Ramp][]color.Color
	tablesErr  error
)

func loadTables() {
	tables = make(map[diagnostic.Ramp][]color.Color, 4)

	stops := make([]color.Color, len(wbgyrStops))
	at := make([]float64, len(wbgyrStops))
	for i, s := range wbgyrStops {
		stops[i], at[i] = s.rgb, s.at
	}
	tables[diagnostic.RampWBGYR] = interpolate(stops, at, tableSize)

	for ramp, name := range map[diagnostic.Ramp]string{
		diagnostic.RampSpectral: "Spectral",
		diagnostic.RampRdBu:     "RdBu",
	} {
		p, err := brewer.GetPalette(brewer.TypeDiverging, name, 11)
		if err != nil {
			tablesErr = fmt.Errorf("load %s: %w", name, err)
			return
		}
		tables[ramp] = interpolate(p.Colors(), nil, tableSize)
	}

	tables[diagnostic.RampBlueRed] = moreland.SmoothBlueRed().Palette(tableSize).Colors()
}

// Table returns the full colour table of a ramp.
func Table(r diagnostic.Ramp) ([]color.Color, error) {
	tablesOnce.Do(loadTables)
	if tablesErr != nil {
		return nil, tablesErr
	}
	t, ok := tables[r]
	if !ok {
		return nil, fmt.Errorf("unknown colour ramp %q", r)
	}
	return t, nil
}

// Colors samples n colours evenly from the index range the palette selects.
func Colors(p diagnostic.Palette, n int) (palette.Palette, error) {
	t, err := Table(p.Ramp)
	if err != nil {
		return nil, err
	}
	from, to := p.From, p.To
	if to <= 0 || to > len(t) {
		to = len(t)
	}
	if from < 0 || from >= to {
		return nil, fmt.Errorf("palette range %d..%d outside %s table", p.From, p.To, p.Ramp)
	}
	t = t[from:to]

	out := make([]color.Color, n)
	for i := range out {
		j := 0
		if n > 1 {
			j = int(math.Round(float64(i) * float64(len(t)-1) / float64(n-1)))
		}
		out[i] = t[j]
	}
	if p.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return colors(out), nil
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// interpolate expands control colours into n linearly blended entries. at
// holds each control's position in [0, 1]; nil spaces them evenly.
func interpolate(ctrl []color.Color, at []float64, n int) []color.Color {
	if at == nil {
		at = make([]float64, len(ctrl))
		for i := range at {
			at[i] = float64(i) / float64(len(ctrl)-1)
		}
	}
	out := make([]color.Color, n)
	k := 0
	for i := range out {
		x := float64(i) / float64(n-1)
		for k < len(ctrl)-2 && x > at[k+1] {
			k++
		}
		f := (x - at[k]) / (at[k+1] - at[k])
		out[i] = blend(ctrl[k], ctrl[k+1], math.Max(0, math.Min(1, f)))
	}
	return out
}

func blend(a, b color.Color, f float64) color.Color {
	ca := color.NRGBAModel.Convert(a).(color.NRGBA)
	cb := color.NRGBAModel.Convert(b).(color.NRGBA)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.NRGBA{R: mix(ca.R, cb.R), G: mix(ca.G, cb.G), B: mix(ca.B, cb.B), A: mix(ca.A, cb.A)}
}
