// Package telemetry wires the OpenTelemetry trace pipeline. Spans are
// emitted around the cleaning stages so one invocation can be followed from
// download to publication.
package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// TracerName is the instrumentation scope used for pipeline spans.
const TracerName = "github.com/tidewell/aisclean"

// NewTracerProvider builds the global tracer provider from configuration.
// When tracing is disabled it leaves the default (noop) provider in place.
// The SDK provider is registered with the Fx lifecycle for flushing on
// shutdown.
func NewTracerProvider(lc fx.Lifecycle, cfg *config.Config) (trace.TracerProvider, error) {
	tc := cfg.Aisclean.Telemetry.Tracing
	if !tc.Enabled {
		logger.Debugf("Tracing disabled; using noop tracer provider.")
		return otel.GetTracerProvider(), nil
	}

	ctx := context.Background()
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch strings.ToLower(tc.Protocol) {
	case "http":
		opts := []otlptracehttp.Option{}
		if tc.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(tc.Endpoint))
		}
		if tc.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	case "grpc", "":
		opts := []otlptracegrpc.Option{}
		if tc.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(tc.Endpoint))
		}
		if tc.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	default:
		return nil, exception.NewPipelineError("telemetry", "unsupported OTLP protocol: "+tc.Protocol, nil, nil)
	}
	if err != nil {
		return nil, exception.NewPipelineError("telemetry", "failed to create OTLP trace exporter", nil, err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "aisclean"),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	logger.Infof("OTLP trace exporter initialized (protocol=%s, endpoint=%s).", tc.Protocol, tc.Endpoint)
	return tp, nil
}

// Module is the Fx module providing the tracer provider. The Invoke
// forces construction so the provider is registered globally even though
// consumers reach it through the otel package.
var Module = fx.Options(
	fx.Provide(NewTracerProvider),
	fx.Invoke(func(tp trace.TracerProvider) {}),
)
