package pipeline

import (
	"go.uber.org/fx"

	appconfig "github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/writer"
)

// newEncoder builds the Parquet encoder from the pipeline configuration.
func newEncoder(cfg *appconfig.Config) (*writer.ParquetEncoder, error) {
	return writer.NewParquetEncoder(cfg.Aisclean.Pipeline.OutputBaseDir, cfg.Aisclean.Pipeline.Compression)
}

// Module is the Fx module providing the cleaning engine.
var Module = fx.Options(
	fx.Provide(NewOrchestrator),
	fx.Provide(newEncoder),
	fx.Provide(NewService),
)
