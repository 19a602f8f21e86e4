package diagnostic

import (
	"image/color"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/grid"
)

// Ramp names a colour table for filled contours.
type Ramp string

const (
	// RampWBGYR is the 254-colour white-blue-green-yellow-red table.
	RampWBGYR    Ramp = "WhiteBlueGreenYellowRed"
	RampSpectral Ramp = "Spectral"
	RampRdBu     Ramp = "RdBu"
	RampBlueRed  Ramp = "BlueRed"
)

// Palette selects colours from a ramp. From and To bound an index range of
// the table (To == 0 means the whole table); Reverse flips it.
type Palette struct {
	Ramp    Ramp
	From    int
	To      int
	Reverse bool
}

// FillLayer is a filled contour plot. Values below Levels[0] fall in the
// first colour band unless TransparentBelow is set.
type FillLayer struct {
	Field            *grid.Field
	Levels           []float64
	Palette          Palette
	TransparentBelow bool
	Label            string
}

// LineLayer is a set of single-colour contour lines.
type LineLayer struct {
	Field  *grid.Field
	Levels []float64
	Color  color.Color
	Width  float64 // points
}

// VectorLayer draws wind arrows. Arrow length grows with speed up to
// RefMagnitude; faster winds draw at that length.
type VectorLayer struct {
	U, V         *grid.Field
	Color        color.Color
	RefMagnitude float64
}

// Chart is everything a product draws for one time.
type Chart struct {
	Title   string
	Extent  domain.BBox
	Fill    *FillLayer
	Lines   []LineLayer
	Vectors []VectorLayer
}

var (
	black = color.Black
	red   = color.RGBA{R: 0xff, A: 0xff}
)
