package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/gfs-plot/internal/adapter/imageproc"
	"github.com/couchcryptid/gfs-plot/internal/adapter/netcdf"
	"github.com/couchcryptid/gfs-plot/internal/diagnostic"
	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/observability"
)

// Renderer draws a chart.
type Renderer interface {
	Render(c diagnostic.Chart) (image.Image, error)
}

// Notifier announces written images.
type Notifier interface {
	Publish(ctx context.Context, events []domain.ImageEvent) error
}

// NopNotifier discards events. It is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, []domain.ImageEvent) error { return nil }

// RunnerConfig holds the paths and sizes a Runner works with.
type RunnerConfig struct {
	DataDir        string
	ImageDir       string
	ImageSizes     map[string]domain.ImageSize
	FieldCacheSize int
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Runner executes one plot job: it reads the cycle's analysis and forecast
// files, builds the product's charts, renders and writes them.
type Runner struct {
	cfg      RunnerConfig
	renderer Renderer
	notifier Notifier
	open     func(path string) (netcdf.Dataset, error)
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// NewRunner creates a Runner. Pass NopNotifier{} to disable notifications.
func NewRunner(cfg RunnerConfig, renderer Renderer, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		cfg:      cfg,
		renderer: renderer,
		notifier: notifier,
		open:     netcdf.Open,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// Run plots job and returns the paths of the images written. A failure
// leaves the images written so far in place and returns them with the
// error.
func (r *Runner) Run(ctx context.Context, job domain.Job) ([]string, error) {
	start := r.clock.Now()
	log := r.logger.With("product", job.Product, "region", job.Region, "init_time", job.Init.String(), "level", job.Level)
	log.Info("job started")

	paths, events, err := r.run(ctx, job)
	if len(events) > 0 {
		if perr := r.notifier.Publish(ctx, events); perr != nil {
			log.Error("image notification failed", "error", perr, "images", len(events))
		}
	}

	duration := r.clock.Since(start)
	r.metrics.JobDuration.WithLabelValues(job.Product).Observe(duration.Seconds())
	if err != nil {
		r.metrics.JobsTotal.WithLabelValues(job.Product, "error").Inc()
		log.Error("job failed", "error", err, "images", len(paths), "duration", duration)
		return paths, fmt.Errorf("%s: %w", job, err)
	}
	r.metrics.JobsTotal.WithLabelValues(job.Product, "success").Inc()
	log.Info("job finished", "images", len(paths), "duration", duration)
	return paths, nil
}

func (r *Runner) run(ctx context.Context, job domain.Job) ([]string, []domain.ImageEvent, error) {
	if err := Validate(job); err != nil {
		return nil, nil, err
	}
	product, err := diagnostic.Lookup(job.Product)
	if err != nil {
		return nil, nil, err
	}
	box, err := domain.NormalizeBBox(job.Box.North, job.Box.West, job.Box.South, job.Box.East)
	if err != nil {
		return nil, nil, err
	}
	job.Box = box
	dir := job.OutputDir(r.cfg.ImageDir)
	tag := product.Tag(job.Level)

	var (
		paths  []string
		events []domain.ImageEvent
	)
	emit := func(kind domain.ImageKind, fh int, path string) {
		paths = append(paths, path)
		events = append(events, domain.NewImageEvent(job, kind, fh, path))
		r.metrics.ImagesWritten.WithLabelValues(job.Product, string(kind)).Inc()
	}

	if product.HasAnalysis {
		err := r.withSource(domain.AnalysisFile(job.Init), box, netcdf.AnalysisStep, func(src *netcdf.Source) error {
			path := filepath.Join(dir, domain.AnalysisImageName(job.Region, job.Init, tag)+".png")
			if err := r.draw(product, job, src, path); err != nil {
				return fmt.Errorf("analysis: %w", err)
			}
			emit(domain.KindAnalysis, 0, path)
			return nil
		})
		if err != nil {
			return paths, events, err
		}
	}

	steps := product.Steps(job.Init, job.Forecast)
	if len(steps) == 0 {
		return paths, events, nil
	}
	err = r.withSource(domain.ForecastFile(job.Init), box, 0, func(src *netcdf.Source) error {
		for _, st := range steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, domain.ForecastImageName(job.Region, job.Init, st.Hour, tag)+".png")
			if err := r.draw(product, job, src.WithStep(st.Index), path); err != nil {
				return fmt.Errorf("forecast hour %d: %w", st.Hour, err)
			}
			emit(domain.KindForecast, st.Hour, path)
		}
		return nil
	})
	return paths, events, err
}

// withSource opens a data file and locates box on it for the duration of fn.
func (r *Runner) withSource(name string, box domain.BBox, step int, fn func(*netcdf.Source) error) error {
	path := filepath.Join(r.cfg.DataDir, name)
	ds, err := r.open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer ds.Close()

	src, err := netcdf.NewSource(ds, box, netcdf.Options{
		Step:         step,
		CacheSize:    r.cfg.FieldCacheSize,
		CacheResults: r.metrics.FieldCache,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fn(src)
}

// draw builds, renders, post-processes and saves one image.
func (r *Runner) draw(product diagnostic.Product, job domain.Job, src *netcdf.Source, path string) error {
	chart, err := product.Build(src, job.Level)
	if err != nil {
		return err
	}
	chart.Extent = job.Box

	start := r.clock.Now()
	img, err := r.renderer.Render(chart)
	if err != nil {
		return err
	}
	var size *domain.ImageSize
	if product.Resize {
		if s, ok := r.cfg.ImageSizes[job.Region]; ok {
			size = &s
		}
	}
	img = imageproc.Finish(img, size)
	if err := imageproc.Save(img, path); err != nil {
		return err
	}
	r.metrics.RenderDuration.Observe(r.clock.Since(start).Seconds())
	return nil
}

// errMissingLevel is returned for level products run without a level.
var errMissingLevel = errors.New("pressure level required")

// Validate checks that job names a known product and carries a level when
// the product needs one.
func Validate(job domain.Job) error {
	p, err := diagnostic.Lookup(job.Product)
	if err != nil {
		return err
	}
	if p.NeedsLevel && job.Level <= 0 {
		return fmt.Errorf("%s: %w", job.Product, errMissingLevel)
	}
	if !p.NeedsLevel && job.Level > 0 {
		return fmt.Errorf("%s is a single-level product, got level %d", job.Product, job.Level)
	}
	return nil
}
