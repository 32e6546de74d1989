package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_grid_etl"

// Upload outcomes used as the "outcome" label on Uploads.
const (
	OutcomeUploaded = "uploaded"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// Metrics holds the Prometheus counters, histograms, and gauges for an ETL run.
type Metrics struct {
	GridsDiscovered     prometheus.Counter
	FilesProcessed      prometheus.Counter
	ProductsCreated     prometheus.Counter
	ArchiveMemberErrors prometheus.Counter
	RunRunning          prometheus.Gauge
	RunDuration         prometheus.Histogram

	// Uploads by outcome={uploaded,failed,skipped}.
	Uploads *prometheus.CounterVec

	NotificationFailures prometheus.Counter

	// Region feature service metrics.
	RegionFetches       *prometheus.CounterVec // labels: outcome={success,error}
	RegionFetchDuration prometheus.Histogram

	registry *prometheus.Registry
}

func newMetrics() *Metrics {
	return &Metrics{
		GridsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_groups_discovered_total",
			Help:      "Distinct grid stems found in the input folder.",
		}),
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_files_processed_total",
			Help:      "Grid files converted and clipped.",
		}),
		ProductsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Region products packaged with metadata.",
		}),
		ArchiveMemberErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_member_errors_total",
			Help:      "Files that could not be added to a product archive.",
		}),
		RunRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a complete run.",
			Buckets:   []float64{1, 10, 30, 60, 300, 600, 1800, 3600, 7200},
		}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Object uploads by outcome.",
		}, []string{"outcome"}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Product events that could not be published.",
		}),
		RegionFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_fetches_total",
			Help:      "Region feature layer queries by outcome.",
		}, []string{"outcome"}),
		RegionFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "region_fetch_duration_seconds",
			Help:      "Region feature layer query duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.GridsDiscovered,
		m.FilesProcessed,
		m.ProductsCreated,
		m.ArchiveMemberErrors,
		m.RunRunning,
		m.RunDuration,
		m.Uploads,
		m.NotificationFailures,
		m.RegionFetches,
		m.RegionFetchDuration,
	}
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// Gatherer returns the registry the metrics were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}
