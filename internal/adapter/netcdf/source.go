package netcdf

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/grid"
)

// Coordinate variable names, in lookup order. GFS files converted by NCL
// use lat_0 and lon_0.
var (
	latNames = []string{"lat_0", "lat", "latitude"}
	lonNames = []string{"lon_0", "lon", "longitude"}
)

// levelPrefix marks NCL level dimensions (lv_ISBL0, lv_HTGL1, ...).
const levelPrefix = "lv_"

// AnalysisStep is the step of files without a forecast time dimension.
const AnalysisStep = -1

// Options configures a Source.
type Options struct {
	// Step is the index along the time dimension. Variables without a time
	// dimension ignore it; AnalysisStep reads index 0 of any time dimension.
	Step int
	// CacheSize bounds the number of decoded slices kept per source.
	CacheSize int
	// CacheResults counts cache lookups by result (hit, miss). Optional.
	CacheResults *prometheus.CounterVec
}

// Source reads fields from a dataset, cut to a window around a bounding box.
type Source struct {
	ds      Dataset
	win     grid.Window
	step    int
	cache   *fieldCache
	results *prometheus.CounterVec
}

// NewSource locates box on the dataset's grid.
func NewSource(ds Dataset, box domain.BBox, opts Options) (*Source, error) {
	lat, err := readCoord(ds, latNames)
	if err != nil {
		return nil, err
	}
	lon, err := readCoord(ds, lonNames)
	if err != nil {
		return nil, err
	}
	win, err := grid.Locate(lat, lon, box)
	if err != nil {
		return nil, err
	}
	return &Source{
		ds:      ds,
		win:     win,
		step:    opts.Step,
		cache:   newFieldCache(opts.CacheSize),
		results: opts.CacheResults,
	}, nil
}

func readCoord(ds Dataset, names []string) ([]float64, error) {
	vars := ds.Variables()
	for _, n := range names {
		if slices.Contains(vars, n) {
			return ds.Read(n, nil, nil)
		}
	}
	return nil, fmt.Errorf("coordinate %s: %w", names[0], ErrVariableNotFound)
}

// WithStep returns a source reading another forecast step. The window and
// cache are shared.
func (s *Source) WithStep(step int) *Source {
	c := *s
	c.step = step
	return &c
}

// Window returns the located window.
func (s *Source) Window() grid.Window { return s.win }

// Coordinates returns the window's latitudes and longitudes.
func (s *Source) Coordinates() (lat, lon []float64) { return s.win.Lat, s.win.Lon }

// Find returns the first variable whose name contains substr.
func (s *Source) Find(substr string) (string, bool) {
	for _, v := range s.ds.Variables() {
		if strings.Contains(v, substr) {
			return v, true
		}
	}
	return "", false
}

// Surface reads a field without a pressure level. Leading dimensions other
// than time take index 0.
func (s *Source) Surface(name string) (*grid.Field, error) {
	lead, err := s.leading(name, -1, 0)
	if err != nil {
		return nil, err
	}
	return s.plane(name, lead)
}

// Level reads a field on a pressure level given in hPa.
func (s *Source) Level(name string, hPa int) (*grid.Field, error) {
	dim, levels, err := s.levels(name)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(levels, hPa)
	if idx < 0 {
		return nil, fmt.Errorf("%s at %d hPa: %w", name, hPa, ErrLevelNotFound)
	}
	lead, err := s.leading(name, dim, idx)
	if err != nil {
		return nil, err
	}
	return s.plane(name, lead)
}

// LevelsOf lists a variable's pressure levels in hPa, in file order.
func (s *Source) LevelsOf(name string) ([]int, error) {
	_, levels, err := s.levels(name)
	return levels, err
}

// levels finds the level dimension of a variable and converts its
// coordinate to hPa. Values are taken as Pa unless all are below 2000.
func (s *Source) levels(name string) (int, []int, error) {
	dims := s.ds.Dimensions(name)
	if dims == nil {
		return 0, nil, fmt.Errorf("%s: %w", name, ErrVariableNotFound)
	}
	for d, dim := range dims {
		if !strings.HasPrefix(dim, levelPrefix) {
			continue
		}
		coord, err := s.cached(dim, nil, func() ([]float64, error) { return s.ds.Read(dim, nil, nil) })
		if err != nil {
			return 0, nil, err
		}
		if len(coord) == 0 {
			return 0, nil, fmt.Errorf("%s: empty level coordinate %s: %w", name, dim, ErrLevelNotFound)
		}
		scale := 0.01
		if slices.Max(coord) < 2000 {
			scale = 1
		}
		levels := make([]int, len(coord))
		for i, v := range coord {
			levels[i] = int(math.Round(v * scale))
		}
		return d, levels, nil
	}
	return 0, nil, fmt.Errorf("%s has no level dimension: %w", name, ErrLevelNotFound)
}

// leading builds the indices of every dimension before lat/lon: the step on
// the time dimension, idx on levelDim and 0 elsewhere.
func (s *Source) leading(name string, levelDim, idx int) ([]int, error) {
	dims := s.ds.Dimensions(name)
	if dims == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrVariableNotFound)
	}
	if len(dims) < 2 {
		return nil, fmt.Errorf("%s: not a horizontal field", name)
	}
	lead := make([]int, len(dims)-2)
	for d := range lead {
		switch {
		case d == levelDim:
			lead[d] = idx
		case strings.Contains(dims[d], "time") && s.step > 0:
			lead[d] = s.step
		}
	}
	return lead, nil
}

// plane reads the window of one horizontal slice, reading wrapped windows
// as one hyperslab per contiguous column run.
func (s *Source) plane(name string, lead []int) (*grid.Field, error) {
	data, err := s.cached(name, lead, func() ([]float64, error) {
		row0, nrows := s.win.RowSpan()
		ncols := len(s.win.Cols)
		out := make([]float64, nrows*ncols)
		for _, run := range s.win.Runs() {
			begin := append(slices.Clone(lead), row0, run.Start)
			end := make([]int, len(begin))
			for d := range lead {
				end[d] = lead[d] + 1
			}
			end[len(lead)] = row0 + nrows
			end[len(lead)+1] = run.Start + run.Count

			vals, err := s.ds.Read(name, begin, end)
			if err != nil {
				return nil, err
			}
			for i := range nrows {
				copy(out[i*ncols+run.Offset:], vals[i*run.Count:(i+1)*run.Count])
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return grid.NewField(slices.Clone(data), s.win.Lat, s.win.Lon)
}

func (s *Source) cached(name string, lead []int, load func() ([]float64, error)) ([]float64, error) {
	key := fmt.Sprintf("%s%v", name, lead)
	if data, ok := s.cache.get(key); ok {
		s.observe("hit")
		return data, nil
	}
	s.observe("miss")
	data, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.put(key, data)
	return data, nil
}

func (s *Source) observe(result string) {
	if s.results != nil {
		s.results.WithLabelValues(result).Inc()
	}
}
