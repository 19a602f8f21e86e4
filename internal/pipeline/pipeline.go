// Package pipeline runs plot jobs: a Runner turns one job into images and a
// Dispatcher fans a namelist's jobs out over a fixed pool of workers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/observability"
)

// JobRunner executes a single job.
type JobRunner interface {
	Run(ctx context.Context, job domain.Job) ([]string, error)
}

// Report summarizes a dispatch. Err joins the failures of every failed job.
type Report struct {
	Total  int
	Failed int
	Images []string
	Err    error
}

// Progress is a point-in-time view of a running dispatch.
type Progress struct {
	Total  int64 `json:"total"`
	Done   int64 `json:"done"`
	Failed int64 `json:"failed"`
	Images int64 `json:"images"`
}

// Dispatcher runs jobs on a fixed number of workers. Jobs are independent:
// one failing does not stop the others and nothing is retried.
type Dispatcher struct {
	runner   JobRunner
	imageDir string
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics

	started atomic.Bool
	total   atomic.Int64
	done    atomic.Int64
	failed  atomic.Int64
	images  atomic.Int64
}

// NewDispatcher creates a Dispatcher writing under imageDir.
func NewDispatcher(runner JobRunner, imageDir string, workers int, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		runner:   runner,
		imageDir: imageDir,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a dispatch has begun, or an error
// describing why it is not yet ready.
func (d *Dispatcher) CheckReadiness(_ context.Context) error {
	if !d.started.Load() {
		return errors.New("dispatch has not started")
	}
	return nil
}

// Progress reports the counts of the current or last dispatch.
func (d *Dispatcher) Progress() Progress {
	return Progress{
		Total:  d.total.Load(),
		Done:   d.done.Load(),
		Failed: d.failed.Load(),
		Images: d.images.Load(),
	}
}

type result struct {
	paths []string
	err   error
}

// Dispatch runs every job and waits for them to finish. Cancelling ctx stops
// handing out jobs; jobs never started are counted as failed with the
// context's error.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []domain.Job) Report {
	d.total.Store(int64(len(jobs)))
	d.done.Store(0)
	d.failed.Store(0)
	d.images.Store(0)
	d.started.Store(true)

	d.logger.Info("dispatch started", "jobs", len(jobs), "workers", d.workers)
	d.metrics.DispatcherRunning.Set(1)
	defer d.metrics.DispatcherRunning.Set(0)

	results := make([]result, len(jobs))
	for i, job := range jobs {
		if err := os.MkdirAll(job.OutputDir(d.imageDir), 0o755); err != nil {
			results[i].err = fmt.Errorf("%s: create output dir: %w", job, err)
		}
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(ctx, jobs, queue, results)
		}()
	}

	d.metrics.QueueDepth.Set(float64(len(jobs)))
	handed := 0
feed:
	for i := range jobs {
		if results[i].err != nil {
			d.finish(results[i])
			d.metrics.QueueDepth.Dec()
			handed++
			continue
		}
		select {
		case <-ctx.Done():
			break feed
		case queue <- i:
			d.metrics.QueueDepth.Dec()
			handed++
		}
	}
	close(queue)
	wg.Wait()

	for i := handed; i < len(jobs); i++ {
		results[i].err = fmt.Errorf("%s: not started: %w", jobs[i], ctx.Err())
		d.finish(results[i])
	}
	d.metrics.QueueDepth.Set(0)

	report := Report{Total: len(jobs)}
	var errs []error
	for _, r := range results {
		report.Images = append(report.Images, r.paths...)
		if r.err != nil {
			report.Failed++
			errs = append(errs, r.err)
		}
	}
	report.Err = errors.Join(errs...)

	d.logger.Info("dispatch finished",
		"jobs", report.Total, "failed", report.Failed, "images", len(report.Images))
	return report
}

func (d *Dispatcher) worker(ctx context.Context, jobs []domain.Job, queue <-chan int, results []result) {
	for i := range queue {
		paths, err := d.runner.Run(ctx, jobs[i])
		results[i] = result{paths: paths, err: err}
		d.finish(results[i])
	}
}

func (d *Dispatcher) finish(r result) {
	d.done.Add(1)
	d.images.Add(int64(len(r.paths)))
	if r.err != nil {
		d.failed.Add(1)
	}
}
