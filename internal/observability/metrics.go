package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dc_atlas"

// Metrics holds the Prometheus counters, histograms, and gauges for the atlas.
type Metrics struct {
	// Dataset metrics.
	CSVRows         *prometheus.CounterVec // labels: file={energy,water}, outcome={accepted,rejected}
	DatasetEntities prometheus.Gauge
	DatasetLoaded   prometheus.Gauge

	// Query metrics.
	MemoLookups       *prometheus.CounterVec // labels: cache={aggregate,snapshot}, result={hit,miss}
	AggregateDuration prometheus.Histogram
	SnapshotDuration  prometheus.Histogram
	PathRequests      *prometheus.CounterVec // labels: kind, outcome={ok,invalid}

	// Export metrics.
	SnapshotsExported *prometheus.CounterVec // labels: sink
	ExportErrors      *prometheus.CounterVec // labels: sink

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		CSVRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_rows_total",
			Help:      "Consumption CSV rows by file and parse outcome.",
		}, []string{"file", "outcome"}),
		DatasetEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_entities",
			Help:      "Number of data centers in the loaded dataset.",
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_loaded",
			Help:      "1 once the dataset is loaded and queries are served.",
		}),
		MemoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_lookups_total",
			Help:      "Memoised query lookups by cache and result.",
		}, []string{"cache", "result"}),
		AggregateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Duration of one yearly aggregation.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_build_duration_seconds",
			Help:      "Duration of building one year's snapshot.",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		PathRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_requests_total",
			Help:      "Path projection requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SnapshotsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_exported_total",
			Help:      "Snapshots written by sink.",
		}, []string{"sink"}),
		ExportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_errors_total",
			Help:      "Failed snapshot export attempts by sink.",
		}, []string{"sink"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CSVRows,
		m.DatasetEntities,
		m.DatasetLoaded,
		m.MemoLookups,
		m.AggregateDuration,
		m.SnapshotDuration,
		m.PathRequests,
		m.SnapshotsExported,
		m.ExportErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting registers the metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
