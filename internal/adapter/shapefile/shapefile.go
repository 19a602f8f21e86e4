// Package shapefile loads boundary outlines from ESRI shapefiles.
package shapefile

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"gonum.org/v1/plot/plotter"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

// Load reads every polyline and polygon ring in the shapefile at path as a
// lon/lat line. Other shape types are skipped.
func Load(path string) ([]plotter.XYs, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	var lines []plotter.XYs
	for r.Next() {
		_, s := r.Shape()
		switch s := s.(type) {
		case *shp.PolyLine:
			lines = appendParts(lines, s.Parts, s.Points)
		case *shp.Polygon:
			lines = appendParts(lines, s.Parts, s.Points)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}
	return lines, nil
}

func appendParts(lines []plotter.XYs, parts []int32, points []shp.Point) []plotter.XYs {
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 2 {
			continue
		}
		line := make(plotter.XYs, 0, end-start)
		for _, p := range points[start:end] {
			line = append(line, plotter.XY{X: p.X, Y: p.Y})
		}
		lines = append(lines, line)
	}
	return lines
}

// Within keeps the lines whose bounding box overlaps box, allowing for box
// longitudes given in 0..360.
func Within(lines []plotter.XYs, box domain.BBox) []plotter.XYs {
	var out []plotter.XYs
	for _, l := range lines {
		xmin, xmax, ymin, ymax := plotter.XYRange(l)
		if ymax < box.South || ymin > box.North {
			continue
		}
		for _, shift := range []float64{-360, 0, 360} {
			if xmax+shift >= box.West && xmin+shift <= box.East {
				out = append(out, l)
				break
			}
		}
	}
	return out
}
