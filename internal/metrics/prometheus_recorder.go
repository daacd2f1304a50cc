package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tidewell/aisclean/internal/support/logger"
)

// PrometheusRecorder is a Prometheus implementation of the Recorder
// interface. It keeps its own registry so a host process can expose it
// without interfering with the default one.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	rowsRead           prometheus.Counter
	rowsDisqualified   prometheus.Counter
	rowsWritten        prometheus.Counter
	cellsNulled        *prometheus.CounterVec
	partitionsWritten  prometheus.Counter
	runDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Register Go runtime and process metrics alongside the pipeline's own.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleaning_rows_read_total",
			Help: "Total rows parsed from raw input files.",
		}),
		rowsDisqualified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleaning_rows_disqualified_total",
			Help: "Total rows removed for an unrecoverable timestamp.",
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleaning_rows_written_total",
			Help: "Total rows written to columnar output.",
		}),
		cellsNulled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleaning_cells_nulled_total",
			Help: "Total cells resolved to the missing marker, by column.",
		}, []string{"column"}),
		partitionsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleaning_partitions_written_total",
			Help: "Total partition files produced.",
		}),
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cleaning_run_duration_seconds",
			Help:    "Duration of cleaning invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}

	registry.MustRegister(r.rowsRead)
	registry.MustRegister(r.rowsDisqualified)
	registry.MustRegister(r.rowsWritten)
	registry.MustRegister(r.cellsNulled)
	registry.MustRegister(r.partitionsWritten)
	registry.MustRegister(r.runDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordRowsRead records the number of rows parsed from the raw input.
func (r *PrometheusRecorder) RecordRowsRead(ctx context.Context, n int) {
	r.rowsRead.Add(float64(n))
}

// RecordRowsDisqualified records rows removed for an unrecoverable timestamp.
func (r *PrometheusRecorder) RecordRowsDisqualified(ctx context.Context, n int) {
	r.rowsDisqualified.Add(float64(n))
}

// RecordCellsNulled records cells of one column resolved to the missing marker.
func (r *PrometheusRecorder) RecordCellsNulled(ctx context.Context, column string, n int) {
	r.cellsNulled.WithLabelValues(column).Add(float64(n))
}

// RecordRowsWritten records rows that reached the columnar output.
func (r *PrometheusRecorder) RecordRowsWritten(ctx context.Context, n int) {
	r.rowsWritten.Add(float64(n))
}

// RecordPartitionsWritten records the number of partition files produced.
func (r *PrometheusRecorder) RecordPartitionsWritten(ctx context.Context, n int) {
	r.partitionsWritten.Add(float64(n))
}

// RecordRunDuration records the wall time of one invocation.
func (r *PrometheusRecorder) RecordRunDuration(ctx context.Context, status string, d time.Duration) {
	r.runDurationSeconds.WithLabelValues(status).Observe(d.Seconds())
	logger.Debugf("Metrics: run finished with status '%s' in %.3fs", status, d.Seconds())
}

var _ Recorder = (*PrometheusRecorder)(nil)
