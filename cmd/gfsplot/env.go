package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"gonum.org/v1/plot/plotter"

	kafkaadapter "github.com/couchcryptid/gfs-plot/internal/adapter/kafka"
	"github.com/couchcryptid/gfs-plot/internal/adapter/render"
	"github.com/couchcryptid/gfs-plot/internal/adapter/shapefile"
	"github.com/couchcryptid/gfs-plot/internal/config"
	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/observability"
	"github.com/couchcryptid/gfs-plot/internal/pipeline"
)

// env is the configuration and logger every subcommand starts from.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &env{cfg: cfg, logger: observability.NewLogger(cfg.LogLevel, cfg.LogFormat)}, nil
}

func (e *env) domains() (*domain.Domains, error) {
	f, err := os.Open(e.cfg.DomainsPath)
	if err != nil {
		return nil, fmt.Errorf("open domain table: %w", err)
	}
	defer f.Close()
	return domain.ParseDomains(f)
}

func (e *env) namelist() (*domain.Namelist, error) {
	f, err := os.Open(e.cfg.NamelistPath)
	if err != nil {
		return nil, fmt.Errorf("open namelist: %w", err)
	}
	defer f.Close()
	return domain.ParseNamelist(f)
}

// forecastHours returns the namelist's fore: hours, which give the order of
// the steps in the forecast files. Without a namelist the default 3..72
// step 3 applies.
func (e *env) forecastHours() ([]int, error) {
	nl, err := e.namelist()
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultForecastHours(), nil
	}
	if err != nil {
		return nil, err
	}
	return nl.Forecast, nil
}

// outlines loads the boundary shapefile, if one is configured.
func (e *env) outlines() ([]plotter.XYs, error) {
	if e.cfg.BoundariesShapefile == "" {
		return nil, nil
	}
	lines, err := shapefile.Load(e.cfg.BoundariesShapefile)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("boundaries loaded", "path", e.cfg.BoundariesShapefile, "lines", len(lines))
	return lines, nil
}

// notifier returns the Kafka publisher when brokers are configured. The
// returned close func is always safe to call.
func (e *env) notifier() (pipeline.Notifier, func()) {
	if !e.cfg.NotificationsEnabled() {
		e.logger.Info("image notifications disabled")
		return pipeline.NopNotifier{}, func() {}
	}
	pub := kafkaadapter.NewPublisher(e.cfg, e.logger)
	e.logger.Info("image notifications enabled", "brokers", e.cfg.KafkaBrokers, "topic", e.cfg.KafkaTopic)
	return pub, func() {
		if err := pub.Close(); err != nil {
			e.logger.Error("kafka publisher close error", "error", err)
		}
	}
}

// runner wires a Runner with boundary outlines and notifications.
func (e *env) runner(metrics *observability.Metrics) (*pipeline.Runner, func(), error) {
	lines, err := e.outlines()
	if err != nil {
		return nil, nil, err
	}
	notifier, closeFn := e.notifier()
	r := pipeline.NewRunner(pipeline.RunnerConfig{
		DataDir:        e.cfg.DataDir,
		ImageDir:       e.cfg.ImageDir,
		ImageSizes:     e.cfg.ImageSizes,
		FieldCacheSize: e.cfg.FieldCacheSize,
	}, render.New(render.Options{Outlines: lines}), notifier, e.logger, metrics)
	return r, closeFn, nil
}

// regionOpts are the --region and --bbox flags shared by plot and basemap.
type regionOpts struct {
	region string
	bbox   string
}

func (o *regionOpts) flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("region", pflag.ContinueOnError)
	fs.StringVar(&o.region, "region", "", "region name from the domain table")
	fs.StringVar(&o.bbox, "bbox", "", "bounding box as LAT1,LON1,LAT2,LON2")
	return fs
}

// resolve returns the selected region. A --bbox that matches a domain table
// entry takes that entry's name; otherwise it is unnamed.
func (o *regionOpts) resolve(e *env) (domain.Region, error) {
	switch {
	case o.region != "":
		d, err := e.domains()
		if err != nil {
			return domain.Region{}, err
		}
		r, ok := d.Lookup(o.region)
		if !ok {
			return domain.Region{}, fmt.Errorf("region %q not found in %s", o.region, e.cfg.DomainsPath)
		}
		return r, nil
	case o.bbox != "":
		box, err := domain.ParseBBox(o.bbox)
		if err != nil {
			return domain.Region{}, fmt.Errorf("--bbox: %w", err)
		}
		d, err := e.domains()
		if err != nil {
			e.logger.Warn("domain table unavailable, region left unnamed", "error", err)
			d = nil
		}
		return domain.Region{Name: d.NameFor(box), Box: box}, nil
	default:
		return domain.Region{}, errors.New("one of --region or --bbox is required")
	}
}
