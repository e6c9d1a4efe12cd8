package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pm25_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram
	LastSuccess     prometheus.Gauge // unix seconds of the last fully successful run
	ExtractErrors   prometheus.Counter

	// Per-table analysis metrics.
	TablesProcessed  *prometheus.CounterVec // labels: scheme={embedded_tuple,suffixed_column}
	TableFailures    prometheus.Counter
	RowsRead         prometheus.Counter
	RowsDropped      prometheus.Counter
	MissingReadings  prometheus.Counter
	TimestampLayouts *prometheus.CounterVec // labels: layout={full_precision,second_precision}

	// Sink metrics.
	ReportsLoaded *prometheus.CounterVec // labels: sink
	LoadErrors    *prometheus.CounterVec // labels: sink
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-analyze-load run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without errors.",
		}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_errors_total",
			Help:      "Total failures reading source tables.",
		}),
		TablesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_processed_total",
			Help:      "Source tables analyzed, by station encoding scheme.",
		}, []string{"scheme"}),
		TableFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_failures_total",
			Help:      "Source tables rejected with a structural error.",
		}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from source tables.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Data rows dropped because their timestamp did not parse.",
		}),
		MissingReadings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_readings_total",
			Help:      "Station cells that were empty or non-numeric.",
		}),
		TimestampLayouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamp_layout_total",
			Help:      "Timestamps parsed, by the layout that accepted them.",
		}, []string{"layout"}),
		ReportsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_loaded_total",
			Help:      "Reports written, by sink.",
		}, []string{"sink"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed report writes after all retries, by sink.",
		}, []string{"sink"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRunning,
		m.RunDuration,
		m.LastSuccess,
		m.ExtractErrors,
		m.TablesProcessed,
		m.TableFailures,
		m.RowsRead,
		m.RowsDropped,
		m.MissingReadings,
		m.TimestampLayouts,
		m.ReportsLoaded,
		m.LoadErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
