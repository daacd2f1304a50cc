package metrics

import (
	"context"
	"strings"

	"go.uber.org/fx"

	"github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// NewRecorder selects the Recorder implementation from configuration.
// The OTLP recorder is registered with the Fx lifecycle so pending
// measurements are flushed on shutdown.
func NewRecorder(lc fx.Lifecycle, cfg *config.Config) (Recorder, error) {
	mc := cfg.Aisclean.Telemetry.Metrics
	switch strings.ToLower(mc.Exporter) {
	case "prometheus", "":
		return NewPrometheusRecorder(), nil
	case "otlp":
		r, err := NewOTLPRecorder(context.Background(), mc)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return r.Shutdown(ctx)
			},
		})
		return r, nil
	case "none":
		return NewNoopRecorder(), nil
	default:
		logger.Warnf("Unknown metrics exporter '%s'. Metrics disabled.", mc.Exporter)
		return NewNoopRecorder(), nil
	}
}

// Module is the Fx module providing the metric recorder.
var Module = fx.Options(
	fx.Provide(NewRecorder),
)
