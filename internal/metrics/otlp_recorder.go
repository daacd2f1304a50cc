package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// OTLPRecorder is an OpenTelemetry implementation of the Recorder interface.
// Measurements are pushed to an OTLP collector over gRPC or HTTP.
type OTLPRecorder struct {
	provider *sdkmetric.MeterProvider

	rowsRead          metric.Int64Counter
	rowsDisqualified  metric.Int64Counter
	rowsWritten       metric.Int64Counter
	cellsNulled       metric.Int64Counter
	partitionsWritten metric.Int64Counter
	runDuration       metric.Float64Histogram
}

// NewOTLPRecorder creates a Recorder pushing to the configured OTLP
// collector. The caller owns the returned recorder and must call Shutdown
// to flush pending measurements.
func NewOTLPRecorder(ctx context.Context, cfg config.MetricsConfig) (*OTLPRecorder, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch strings.ToLower(cfg.Protocol) {
	case "http":
		opts := []otlpmetrichttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	case "grpc", "":
		opts := []otlpmetricgrpc.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, exception.NewPipelineError("metrics", "unsupported OTLP protocol: "+cfg.Protocol, nil, nil)
	}
	if err != nil {
		return nil, exception.NewPipelineError("metrics", "failed to create OTLP metric exporter", nil, err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	meter := provider.Meter("github.com/tidewell/aisclean")

	r := &OTLPRecorder{provider: provider}
	if r.rowsRead, err = meter.Int64Counter("cleaning.rows.read",
		metric.WithDescription("Rows parsed from raw input files.")); err != nil {
		return nil, err
	}
	if r.rowsDisqualified, err = meter.Int64Counter("cleaning.rows.disqualified",
		metric.WithDescription("Rows removed for an unrecoverable timestamp.")); err != nil {
		return nil, err
	}
	if r.rowsWritten, err = meter.Int64Counter("cleaning.rows.written",
		metric.WithDescription("Rows written to columnar output.")); err != nil {
		return nil, err
	}
	if r.cellsNulled, err = meter.Int64Counter("cleaning.cells.nulled",
		metric.WithDescription("Cells resolved to the missing marker, by column.")); err != nil {
		return nil, err
	}
	if r.partitionsWritten, err = meter.Int64Counter("cleaning.partitions.written",
		metric.WithDescription("Partition files produced.")); err != nil {
		return nil, err
	}
	if r.runDuration, err = meter.Float64Histogram("cleaning.run.duration",
		metric.WithDescription("Duration of cleaning invocations in seconds."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	logger.Infof("OTLP metric recorder initialized (protocol=%s, endpoint=%s).", cfg.Protocol, cfg.Endpoint)
	return r, nil
}

// Shutdown flushes pending measurements and releases the exporter.
func (r *OTLPRecorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

// RecordRowsRead records the number of rows parsed from the raw input.
func (r *OTLPRecorder) RecordRowsRead(ctx context.Context, n int) {
	r.rowsRead.Add(ctx, int64(n))
}

// RecordRowsDisqualified records rows removed for an unrecoverable timestamp.
func (r *OTLPRecorder) RecordRowsDisqualified(ctx context.Context, n int) {
	r.rowsDisqualified.Add(ctx, int64(n))
}

// RecordCellsNulled records cells of one column resolved to the missing marker.
func (r *OTLPRecorder) RecordCellsNulled(ctx context.Context, column string, n int) {
	r.cellsNulled.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordRowsWritten records rows that reached the columnar output.
func (r *OTLPRecorder) RecordRowsWritten(ctx context.Context, n int) {
	r.rowsWritten.Add(ctx, int64(n))
}

// RecordPartitionsWritten records the number of partition files produced.
func (r *OTLPRecorder) RecordPartitionsWritten(ctx context.Context, n int) {
	r.partitionsWritten.Add(ctx, int64(n))
}

// RecordRunDuration records the wall time of one invocation.
func (r *OTLPRecorder) RecordRunDuration(ctx context.Context, status string, d time.Duration) {
	r.runDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

var _ Recorder = (*OTLPRecorder)(nil)
