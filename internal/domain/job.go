package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// Job is one plot invocation: a product for a region and cycle, optionally
// on a pressure level.
type Job struct {
	Product string
	Level   int // hPa; 0 for single-level products
	Init    InitTime
	Region  string
	Box     BBox

	// Forecast is the list of forecast hours held by the forecast file, in
	// file order.
	Forecast []int
}

// Dir is the product directory name: the product key, suffixed with the
// level for multi-level products.
func (j Job) Dir() string {
	if j.Level > 0 {
		return fmt.Sprintf("%s_%d", j.Product, j.Level)
	}
	return j.Product
}

// OutputDir is where the job's images are written under the image root:
// <root>/GFS/<region>/<init>/<product dir>.
func (j Job) OutputDir(root string) string {
	return filepath.Join(root, "GFS", j.Region, j.Init.String(), j.Dir())
}

func (j Job) String() string {
	if j.Level > 0 {
		return fmt.Sprintf("%s %d hPa %s %s", j.Product, j.Level, j.Region, j.Init)
	}
	return fmt.Sprintf("%s %s %s", j.Product, j.Region, j.Init)
}

// ImageKind distinguishes analysis images from forecast images.
type ImageKind string

const (
	KindAnalysis ImageKind = "analysis"
	KindForecast ImageKind = "forecast"
)

// ImageEvent describes a rendered image. It is the payload announced to
// downstream consumers once the file is in place.
type ImageEvent struct {
	Product      string    `json:"product"`
	Region       string    `json:"region"`
	InitTime     string    `json:"init_time"`
	ValidTime    string    `json:"valid_time"`
	ForecastHour int       `json:"forecast_hour"`
	Level        int       `json:"level,omitempty"`
	Kind         ImageKind `json:"kind"`
	Path         string    `json:"path"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalysisImageName is the file stem of an analysis image.
func AnalysisImageName(region string, init InitTime, tag string) string {
	return fmt.Sprintf("GFSanalysis_%s_%s_%s", region, init, tag)
}

// ForecastImageName is the file stem of a forecast image.
func ForecastImageName(region string, init InitTime, fh int, tag string) string {
	return fmt.Sprintf("GFSforecast_%s_%s_%s_%s_%03d", region, init.Valid(fh), tag, init, fh)
}

// NewImageEvent stamps an event with the package clock.
func NewImageEvent(job Job, kind ImageKind, fh int, path string) ImageEvent {
	valid := job.Init.String()
	if kind == KindForecast && !job.Init.IsZero() {
		valid = job.Init.Valid(fh)
	}
	return ImageEvent{
		Product:      job.Product,
		Region:       job.Region,
		InitTime:     job.Init.String(),
		ValidTime:    valid,
		ForecastHour: fh,
		Level:        job.Level,
		Kind:         kind,
		Path:         path,
		CreatedAt:    clock.Now().UTC(),
	}
}
