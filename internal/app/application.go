// Package app assembles the application from its Fx modules and drives a
// single cleaning run per invocation.
package app

import (
	"context"

	"go.uber.org/fx"

	appconfig "github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/ledger"
	"github.com/tidewell/aisclean/internal/metrics"
	"github.com/tidewell/aisclean/internal/pipeline"
	"github.com/tidewell/aisclean/internal/storage"
	"github.com/tidewell/aisclean/internal/storage/gcs"
	"github.com/tidewell/aisclean/internal/storage/local"
	"github.com/tidewell/aisclean/internal/support/logger"
	"github.com/tidewell/aisclean/internal/telemetry"
)

// Module provides the application-level components.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Provide(NewRunner),
)

// RunApplication sets up and runs the application using uber-fx. It blocks
// until the cleaning run has finished and the container has shut down, and
// returns the run error, if any.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig []byte) error {
	var runErr error

	fxApp := fx.New(
		fx.Supply(
			appconfig.EmbeddedConfig(embeddedConfig),
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),

		logger.Module,
		appconfig.Module,
		metrics.Module,
		telemetry.Module,

		local.Module,
		gcs.Module,
		storage.Module,

		ledger.Module,
		pipeline.Module,
		Module,

		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, runner *Runner) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						defer func() {
							if r := recover(); r != nil {
								logger.Errorf("Panic recovered in cleaning run: %v", r)
							}
							if err := shutdowner.Shutdown(); err != nil {
								logger.Errorf("Failed to shutdown application: %v", err)
							}
						}()
						runErr = runner.Run(appCtx)
					}()
					return nil
				},
			})
		}),
	)

	fxApp.Run()

	if err := fxApp.Err(); err != nil {
		logger.Errorf("Application run failed: %v", err)
		return err
	}
	return runErr
}
