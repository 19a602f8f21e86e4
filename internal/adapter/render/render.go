// Package render draws diagnostic charts onto transparent raster images with
// gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/gfs-plot/internal/diagnostic"
	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/grid"
)

const (
	arrowsAcross  = 25
	graticuleStep = 5.0
	maxBarLabels  = 12
)

// Options controls the canvas and the overlays drawn on every chart.
type Options struct {
	Width, Height vg.Length
	DPI           int

	// Outlines are boundary polylines in lon/lat.
	Outlines     []plotter.XYs
	OutlineColor color.Color

	// Graticule draws meridians and parallels every 5 degrees.
	Graticule      bool
	GraticuleColor color.Color
}

// Renderer turns charts into images.
type Renderer struct {
	opts Options
}

// New returns a Renderer, filling unset options with defaults.
func New(opts Options) *Renderer {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 10*vg.Inch, 7.5*vg.Inch
	}
	if opts.DPI <= 0 {
		opts.DPI = vgimg.DefaultDPI
	}
	if opts.OutlineColor == nil {
		opts.OutlineColor = color.Black
	}
	if opts.GraticuleColor == nil {
		opts.GraticuleColor = color.Gray{Y: 0x60}
	}
	return &Renderer{opts: opts}
}

// Render draws c. The map area covers the grid cells whose centres fall in
// c.Extent; a colour bar is added underneath when c has a fill layer.
func (r *Renderer) Render(c diagnostic.Chart) (image.Image, error) {
	bounds, err := chartBounds(c)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.BackgroundColor = nil
	p.Title.Text = c.Title
	p.HideAxes()
	p.X.Padding, p.Y.Padding = 0, 0

	var bar *plot.Plot
	if c.Fill != nil {
		heat, err := r.fillPlotter(c.Fill, c.Extent)
		if err != nil {
			return nil, err
		}
		p.Add(heat)
		bar = colorBar(c.Fill, heat.Palette)
	}
	if r.opts.Graticule {
		p.Add(graticule{style: draw.LineStyle{Color: r.opts.GraticuleColor, Width: vg.Points(0.5), Dashes: []vg.Length{vg.Points(2), vg.Points(2)}}})
	}
	if len(r.opts.Outlines) > 0 {
		p.Add(outlines{lines: r.opts.Outlines, style: draw.LineStyle{Color: r.opts.OutlineColor, Width: vg.Points(0.75)}})
	}
	for _, l := range c.Lines {
		if ct := linePlotter(l, c.Extent); ct != nil {
			p.Add(ct)
		}
	}
	for _, v := range c.Vectors {
		f, err := vectorPlotter(v, c.Extent)
		if err != nil {
			return nil, err
		}
		if f != nil {
			p.Add(f)
		}
	}

	p.X.Min, p.X.Max = bounds.West, bounds.East
	p.Y.Min, p.Y.Max = bounds.South, bounds.North

	img := vgimg.NewWith(
		vgimg.UseWH(r.opts.Width, r.opts.Height),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	dc := draw.New(img)
	if bar == nil {
		p.Draw(dc)
		return img.Image(), nil
	}

	barHeight := r.opts.Height / 8
	inset := r.opts.Width / 10
	p.Draw(draw.Crop(dc, 0, 0, barHeight, 0))
	bar.Draw(draw.Crop(dc, inset, -inset, 0, barHeight-r.opts.Height))
	return img.Image(), nil
}

// chartBounds is the data range of the map area: the cell edges of the
// first layer's grid clipped to the extent, or the extent itself for a
// chart without layers.
func chartBounds(c diagnostic.Chart) (domain.BBox, error) {
	var f *grid.Field
	switch {
	case c.Fill != nil:
		f = c.Fill.Field
	case len(c.Lines) > 0:
		f = c.Lines[0].Field
	case len(c.Vectors) > 0:
		f = c.Vectors[0].U
	}
	if f == nil {
		if c.Extent.North <= c.Extent.South || c.Extent.East <= c.Extent.West {
			return domain.BBox{}, errors.New("render: chart has no layers and no extent")
		}
		return c.Extent, nil
	}
	v, err := newGridView(f, c.Extent)
	if err != nil {
		return domain.BBox{}, err
	}
	xmin, xmax, ymin, ymax := plotter.NewHeatMap(v, colors{color.Black}).DataRange()
	return domain.BBox{North: ymax, South: ymin, West: xmin, East: xmax}, nil
}

// fillPlotter bins the field by level: bin 0 is below the first level and
// bin n is at or above the last. The heat map's palette has one colour per
// bin.
func (r *Renderer) fillPlotter(fl *diagnostic.FillLayer, extent domain.BBox) (*plotter.HeatMap, error) {
	if len(fl.Levels) == 0 {
		return nil, errors.New("render: fill layer has no levels")
	}
	v, err := newGridView(fl.Field, extent)
	if err != nil {
		return nil, err
	}
	levels := fl.Levels
	v.z = func(x float64) float64 {
		if math.IsNaN(x) {
			return x
		}
		return float64(bin(levels, x))
	}

	n := len(levels)
	pal, err := Colors(fl.Palette, n+1)
	if err != nil {
		return nil, err
	}
	if fl.TransparentBelow {
		c := append(colors(nil), pal.Colors()...)
		c[0] = color.Transparent
		pal = c
	}
	heat := plotter.NewHeatMap(v, pal)
	heat.Min, heat.Max = 0, float64(n)
	heat.NaN = nil
	heat.Rasterized = true
	return heat, nil
}

// bin counts the levels at or below x.
func bin(levels []float64, x float64) int {
	n := 0
	for _, l := range levels {
		if x >= l {
			n++
		}
	}
	return n
}

func linePlotter(l diagnostic.LineLayer, extent domain.BBox) *plotter.Contour {
	lo, hi := grid.Range(l.Field)
	if math.IsNaN(lo) || lo == hi || len(l.Levels) == 0 {
		return nil
	}
	v, err := newGridView(l.Field, extent)
	if err != nil {
		return nil
	}
	width := l.Width
	if width <= 0 {
		width = 1
	}
	ct := plotter.NewContour(v, l.Levels, nil)
	ct.LineStyles = []draw.LineStyle{{Color: l.Color, Width: vg.Points(width)}}
	return ct
}

// vectorPlotter thins the wind field to about arrowsAcross arrows per row.
// A calm field draws nothing.
func vectorPlotter(vl diagnostic.VectorLayer, extent domain.BBox) (*plotter.Field, error) {
	u, err := newGridView(vl.U, extent)
	if err != nil {
		return nil, err
	}
	cols, rows := u.Dims()
	stride := int(math.Ceil(float64(cols) / arrowsAcross))
	u.thin(stride)

	fv := fieldView{u: u, v: u.over(vl.V), cap: vl.RefMagnitude}
	calm := true
	for c := range len(u.cols) {
		for r := range len(u.rows) {
			if xy := fv.Vector(c, r); xy.X != 0 || xy.Y != 0 {
				calm = false
			}
		}
	}
	if calm || rows == 0 {
		return nil, nil
	}
	f := plotter.NewField(fv)
	f.LineStyle = draw.LineStyle{Color: vl.Color, Width: vg.Points(0.75)}
	f.DrawGlyph = drawArrow
	return f, nil
}

// drawArrow draws a unit arrow centred on the origin. The field plotter has
// already set the line style and applied rotation and scaling.
func drawArrow(c vg.Canvas, _ draw.LineStyle, v plotter.XY) {
	if math.Hypot(v.X, v.Y) == 0 {
		return
	}
	var pa vg.Path
	pa.Move(vg.Point{X: -1})
	pa.Line(vg.Point{X: 1})
	pa.Move(vg.Point{X: 0.6, Y: 0.25})
	pa.Line(vg.Point{X: 1})
	pa.Line(vg.Point{X: 0.6, Y: -0.25})
	c.Stroke(pa)
}

// colorBar is a one-row heat map of the bins, labelled at the level
// boundaries.
func colorBar(fl *diagnostic.FillLayer, pal palette.Palette) *plot.Plot {
	n := len(fl.Levels)
	cells := make([]float64, n+1)
	for i := range cells {
		cells[i] = float64(i)
	}
	heat := plotter.NewHeatMap(barGrid(cells), pal)
	heat.Min, heat.Max = 0, float64(n)
	heat.Rasterized = true

	p := plot.New()
	p.BackgroundColor = nil
	p.Add(heat)
	p.HideY()
	p.X.Padding, p.Y.Padding = 0, 0
	p.X.Label.Text = fl.Label

	every := (n + maxBarLabels - 1) / maxBarLabels
	var ticks []plot.Tick
	for i, l := range fl.Levels {
		t := plot.Tick{Value: float64(i) + 0.5}
		if i%every == 0 {
			t.Label = strconv.FormatFloat(l, 'g', 4, 64)
		}
		ticks = append(ticks, t)
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	return p
}

// barGrid is a single row of colour bar cells centred on 0..n.
type barGrid []float64

func (b barGrid) Dims() (c, r int)   { return len(b), 1 }
func (b barGrid) Z(c, _ int) float64 { return b[c] }
func (b barGrid) X(c int) float64    { return float64(c) }
func (b barGrid) Y(int) float64      { return 0 }

// graticule draws dashed lines at every multiple of graticuleStep inside
// the plot range.
type graticule struct {
	style draw.LineStyle
}

func (g graticule) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for lon := math.Ceil(plt.X.Min/graticuleStep) * graticuleStep; lon <= plt.X.Max; lon += graticuleStep {
		x := trX(lon)
		c.StrokeLine2(g.style, x, c.Min.Y, x, c.Max.Y)
	}
	for lat := math.Ceil(plt.Y.Min/graticuleStep) * graticuleStep; lat <= plt.Y.Max; lat += graticuleStep {
		y := trY(lat)
		c.StrokeLine2(g.style, c.Min.X, y, c.Max.X, y)
	}
}

// outlines draws boundary polylines clipped to the data area. Each line is
// also drawn shifted by a full turn either way so maps in 0..360 longitudes
// pick up boundaries given in -180..180.
type outlines struct {
	lines []plotter.XYs
	style draw.LineStyle
}

func (o outlines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, shift := range []float64{-360, 0, 360} {
		for _, l := range o.lines {
			pts := make([]vg.Point, len(l))
			for i, xy := range l {
				pts[i] = vg.Point{X: trX(xy.X + shift), Y: trY(xy.Y)}
			}
			c.StrokeLines(o.style, c.ClipLinesXY(pts)...)
		}
	}
}

// gridView presents a field to the plotters with rows in ascending latitude,
// restricted to the points inside an extent.
type gridView struct {
	f    *grid.Field
	rows []int
	cols []int
	z    func(float64) float64
}

func newGridView(f *grid.Field, extent domain.BBox) (*gridView, error) {
	if f == nil {
		return nil, errors.New("render: layer has no field")
	}
	const eps = 1e-6
	inside := func(x, lo, hi float64) bool {
		return hi <= lo || (x >= lo-eps && x <= hi+eps)
	}

	v := &gridView{f: f}
	for i, lat := range f.Lat {
		if inside(lat, extent.South, extent.North) {
			v.rows = append(v.rows, i)
		}
	}
	if len(v.rows) > 1 && f.Lat[v.rows[0]] > f.Lat[v.rows[1]] {
		for i, j := 0, len(v.rows)-1; i < j; i, j = i+1, j-1 {
			v.rows[i], v.rows[j] = v.rows[j], v.rows[i]
		}
	}
	for j, lon := range f.Lon {
		if inside(lon, extent.West, extent.East) {
			v.cols = append(v.cols, j)
		}
	}
	if len(v.rows) < 2 || len(v.cols) < 2 {
		return nil, fmt.Errorf("render: extent %s covers %dx%d grid points: %w", extent, len(v.rows), len(v.cols), grid.ErrGridTooSmall)
	}
	return v, nil
}

func (v *gridView) Dims() (c, r int) { return len(v.cols), len(v.rows) }
func (v *gridView) X(c int) float64  { return v.f.Lon[v.cols[c]] }
func (v *gridView) Y(r int) float64  { return v.f.Lat[v.rows[r]] }

func (v *gridView) Z(c, r int) float64 {
	x := v.f.Data.At(v.rows[r], v.cols[c])
	if v.z != nil {
		return v.z(x)
	}
	return x
}

// thin keeps every stride-th row and column.
func (v *gridView) thin(stride int) {
	if stride <= 1 {
		return
	}
	every := func(idx []int) []int {
		out := make([]int, 0, len(idx)/stride+1)
		for i := 0; i < len(idx); i += stride {
			out = append(out, idx[i])
		}
		return out
	}
	v.rows, v.cols = every(v.rows), every(v.cols)
}

// over returns a view of f with v's selection.
func (v *gridView) over(f *grid.Field) *gridView {
	return &gridView{f: f, rows: v.rows, cols: v.cols}
}

// fieldView pairs u and v components. Missing values read as calm and
// speeds above cap are shortened to cap.
type fieldView struct {
	u, v *gridView
	cap  float64
}

func (f fieldView) Dims() (c, r int) { return f.u.Dims() }
func (f fieldView) X(c int) float64  { return f.u.X(c) }
func (f fieldView) Y(r int) float64  { return f.u.Y(r) }

func (f fieldView) Vector(c, r int) plotter.XY {
	xy := plotter.XY{X: f.u.Z(c, r), Y: f.v.Z(c, r)}
	if math.IsNaN(xy.X) || math.IsNaN(xy.Y) {
		return plotter.XY{}
	}
	if s := math.Hypot(xy.X, xy.Y); f.cap > 0 && s > f.cap {
		xy.X *= f.cap / s
		xy.Y *= f.cap / s
	}
	return xy
}
