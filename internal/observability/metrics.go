package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gfsplot"

// Metrics holds the Prometheus counters, histograms, and gauges for plot runs.
type Metrics struct {
	JobsTotal      *prometheus.CounterVec   // labels: product, outcome={success,error}
	ImagesWritten  *prometheus.CounterVec   // labels: product, kind={analysis,forecast}
	JobDuration    *prometheus.HistogramVec // labels: product
	RenderDuration prometheus.Histogram

	// FieldCache counts decoded-slice cache lookups. labels: result={hit,miss}
	FieldCache *prometheus.CounterVec

	DispatcherRunning prometheus.Gauge
	QueueDepth        prometheus.Gauge
}

func newMetrics(help bool) *Metrics {
	h := func(s string) string {
		if help {
			return s
		}
		return ""
	}
	return &Metrics{
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      h("Plot jobs finished, by product and outcome."),
		}, []string{"product", "outcome"}),
		ImagesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_written_total",
			Help:      h("PNG images written, by product and kind."),
		}, []string{"product", "kind"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      h("Wall time of a complete plot job."),
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"product"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      h("Time to render and post-process one image."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FieldCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_cache_total",
			Help:      h("Field cache lookups by result."),
		}, []string{"result"}),
		DispatcherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatcher_running",
			Help:      h("1 while a dispatch is in progress, 0 otherwise."),
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatcher_queue_depth",
			Help:      h("Jobs not yet handed to a worker."),
		}),
	}
}

// NewMetrics creates all metrics and registers them with reg, alongside the
// Go runtime and process collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	if err := m.Register(reg); err != nil {
		panic(err)
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

// Register adds the metrics to reg. It fails if any of them is already
// registered there.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.JobsTotal,
		m.ImagesWritten,
		m.JobDuration,
		m.RenderDuration,
		m.FieldCache,
		m.DispatcherRunning,
		m.QueueDepth,
	}
}
