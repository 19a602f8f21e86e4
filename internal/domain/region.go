package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// UnnamedRegion is the region name used for boxes that have no entry in the
// domain table.
const UnnamedRegion = "unnamedregion"

// BBox is a latitude/longitude box with North > South and West < East.
type BBox struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// NormalizeBBox orders two corner points into a BBox. The corners may be
// given in any order, but they must differ in both latitude and longitude.
func NormalizeBBox(lat1, lon1, lat2, lon2 float64) (BBox, error) {
	if lat1 == lat2 || lon1 == lon2 {
		return BBox{}, errors.New("lat and lon values must be different")
	}
	return BBox{
		North: math.Max(lat1, lat2),
		South: math.Min(lat1, lat2),
		West:  math.Min(lon1, lon2),
		East:  math.Max(lon1, lon2),
	}, nil
}

// ParseBBox parses "lat1,lon1,lat2,lon2" into a normalized BBox.
func ParseBBox(s string) (BBox, error) {
	vals, err := parseFloats(strings.Split(s, ","))
	if err != nil {
		return BBox{}, fmt.Errorf("parse bbox %q: %w", s, err)
	}
	if len(vals) != 4 {
		return BBox{}, fmt.Errorf("parse bbox %q: want 4 values, got %d", s, len(vals))
	}
	return NormalizeBBox(vals[0], vals[1], vals[2], vals[3])
}

// Args returns the box as the four corner strings used on the command line
// (north, west, south, east).
func (b BBox) Args() []string {
	return []string{
		strconv.FormatFloat(b.North, 'f', -1, 64),
		strconv.FormatFloat(b.West, 'f', -1, 64),
		strconv.FormatFloat(b.South, 'f', -1, 64),
		strconv.FormatFloat(b.East, 'f', -1, 64),
	}
}

func (b BBox) String() string {
	return strings.Join(b.Args(), ",")
}

// Region is a named entry of the domain table.
type Region struct {
	Name string
	Box  BBox
}

// Domains is the parsed domain table, in file order.
type Domains struct {
	regions []Region
	byName  map[string]int
}

// ParseDomains reads a domain table with one "NAME: lat1, lon1, lat2, lon2"
// entry per line. Blank lines and lines starting with '#' are skipped.
func ParseDomains(r io.Reader) (*Domains, error) {
	d := &Domains{byName: make(map[string]int)}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, coords, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("domains line %d: expected NAME: lat1, lon1, lat2, lon2", lineNo)
		}
		box, err := ParseBBox(coords)
		if err != nil {
			return nil, fmt.Errorf("domains line %d (%s): %w", lineNo, name, err)
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("domains line %d: duplicate region %q", lineNo, name)
		}
		d.byName[name] = len(d.regions)
		d.regions = append(d.regions, Region{Name: name, Box: box})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read domains: %w", err)
	}
	return d, nil
}

// Lookup returns the region with the given name.
func (d *Domains) Lookup(name string) (Region, bool) {
	i, ok := d.byName[strings.TrimSpace(name)]
	if !ok {
		return Region{}, false
	}
	return d.regions[i], true
}

// Regions returns the table entries in file order.
func (d *Domains) Regions() []Region {
	out := make([]Region, len(d.regions))
	copy(out, d.regions)
	return out
}

// NameFor returns the name of the first table entry covering exactly the
// same box, or UnnamedRegion. Both boxes are normalized, so corner order in
// the table does not matter.
func (d *Domains) NameFor(b BBox) string {
	if d == nil {
		return UnnamedRegion
	}
	for _, r := range d.regions {
		if sameBox(r.Box, b) {
			return r.Name
		}
	}
	return UnnamedRegion
}

func sameBox(a, b BBox) bool {
	const eps = 1e-6
	return math.Abs(a.North-b.North) < eps &&
		math.Abs(a.South-b.South) < eps &&
		math.Abs(a.West-b.West) < eps &&
		math.Abs(a.East-b.East) < eps
}

func parseFloats(parts []string) ([]float64, error) {
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
