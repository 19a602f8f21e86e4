package grid

import (
	"errors"
	"math"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

// pad is the number of extra grid points kept on each side of a box so that
// contours and smoothing reach the plot edges.
const pad = 2

var (
	errLatTooClose = errors.New("lat values are not different enough, they must have relatively different values")
	errLonTooClose = errors.New("lon values are not different enough, they must have relatively different values")
)

// Window selects the grid points covering a bounding box. Rows and Cols are
// indices into the source grid; Lat and Lon are the matching coordinates,
// with Lon unwrapped so it increases monotonically across a seam.
type Window struct {
	Rows []int
	Cols []int
	Lat  []float64
	Lon  []float64
}

// Run is a contiguous span of source columns. Offset is the position of the
// first column within the window.
type Run struct {
	Start, Count, Offset int
}

// NearestIndex returns the index of the coordinate closest to target.
func NearestIndex(coords []float64, target float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range coords {
		if d := math.Abs(c - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Locate finds the window of a grid covering box, padded by two points on
// every side. Global grids wrap in longitude, so a box crossing the grid's
// seam yields columns from the end of the grid followed by the start.
func Locate(lat, lon []float64, box domain.BBox) (Window, error) {
	var w Window
	if len(lat) < 2 || len(lon) < 2 {
		return w, ErrGridTooSmall
	}

	iN, iS := NearestIndex(lat, box.North), NearestIndex(lat, box.South)
	if iN == iS {
		return w, errLatTooClose
	}
	lo, hi := min(iN, iS), max(iN, iS)
	lo, hi = max(lo-pad, 0), min(hi+pad, len(lat)-1)
	for i := lo; i <= hi; i++ {
		w.Rows = append(w.Rows, i)
		w.Lat = append(w.Lat, lat[i])
	}

	if step, period, ok := globalStep(lon); ok {
		return locateGlobal(w, lon, step, period, box)
	}

	iW, iE := NearestIndex(lon, box.West), NearestIndex(lon, box.East)
	if iW == iE {
		return w, errLonTooClose
	}
	lo, hi = min(iW, iE), max(iW, iE)
	lo, hi = max(lo-pad, 0), min(hi+pad, len(lon)-1)
	for j := lo; j <= hi; j++ {
		w.Cols = append(w.Cols, j)
		w.Lon = append(w.Lon, lon[j])
	}
	return w, nil
}

func locateGlobal(w Window, lon []float64, step float64, n int, box domain.BBox) (Window, error) {
	index := func(x float64) int {
		k := int(math.Round((x - lon[0]) / step))
		return ((k % n) + n) % n
	}
	iW, iE := index(box.West), index(box.East)
	if iW == iE {
		return w, errLonTooClose
	}

	count := ((iE-iW)%n+n)%n + 1 + 2*pad
	count = min(count, n)
	start := iW - pad

	// Unwrap so the first column lands next to the requested west edge.
	first := lon[0] + float64(start)*step
	first += 360 * math.Round((box.West-float64(pad)*step-first)/360)

	for k := range count {
		w.Cols = append(w.Cols, ((start+k)%n+n)%n)
		w.Lon = append(w.Lon, first+float64(k)*step)
	}
	return w, nil
}

// globalStep reports whether lon is a uniformly spaced grid that covers the
// whole circle. It returns the spacing and the number of distinct columns,
// which is one less than len(lon) when the last column repeats the first.
func globalStep(lon []float64) (step float64, period int, ok bool) {
	n := len(lon)
	step = (lon[n-1] - lon[0]) / float64(n-1)
	if step <= 0 {
		return 0, 0, false
	}
	for i := 1; i < n; i++ {
		if math.Abs(lon[i]-lon[i-1]-step) > 1e-3*step {
			return 0, 0, false
		}
	}
	period = int(math.Round(360 / step))
	if period != n && period != n-1 {
		return 0, 0, false
	}
	return step, period, true
}

// Runs splits the window's columns into contiguous source spans, so a
// wrapped window can be read as two hyperslabs.
func (w Window) Runs() []Run {
	var runs []Run
	for k, c := range w.Cols {
		if n := len(runs); n > 0 && runs[n-1].Start+runs[n-1].Count == c {
			runs[n-1].Count++
			continue
		}
		runs = append(runs, Run{Start: c, Count: 1, Offset: k})
	}
	return runs
}

// RowSpan returns the first row and the number of rows.
func (w Window) RowSpan() (start, count int) {
	if len(w.Rows) == 0 {
		return 0, 0
	}
	return w.Rows[0], len(w.Rows)
}

// Extent is the box actually covered by the window.
func (w Window) Extent() domain.BBox {
	if len(w.Lat) == 0 || len(w.Lon) == 0 {
		return domain.BBox{}
	}
	b := domain.BBox{North: w.Lat[0], South: w.Lat[0], West: w.Lon[0], East: w.Lon[len(w.Lon)-1]}
	for _, v := range w.Lat {
		b.North = math.Max(b.North, v)
		b.South = math.Min(b.South, v)
	}
	return b
}
