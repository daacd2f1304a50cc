package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"

	appconfig "github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/ledger"
	"github.com/tidewell/aisclean/internal/metrics"
	"github.com/tidewell/aisclean/internal/pipeline"
	"github.com/tidewell/aisclean/internal/storage"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
	"github.com/tidewell/aisclean/internal/telemetry"
	"github.com/tidewell/aisclean/internal/writer"
)

// Runner executes one cleaning run end to end: download the raw object,
// run the cleaning pass, publish the partition set and record the run in
// the ledger.
type Runner struct {
	resolver  storage.ConnectionResolver
	service   *pipeline.Service
	publisher *writer.Publisher
	runs      ledger.Repository
	recorder  metrics.Recorder
	cfg       *appconfig.Config
}

// RunnerParams defines the dependencies for NewRunner.
type RunnerParams struct {
	fx.In
	Resolver  storage.ConnectionResolver
	Service   *pipeline.Service
	Publisher *writer.Publisher
	Runs      ledger.Repository
	Recorder  metrics.Recorder
	Cfg       *appconfig.Config
}

// NewRunner creates a Runner.
func NewRunner(p RunnerParams) *Runner {
	return &Runner{
		resolver:  p.Resolver,
		service:   p.Service,
		publisher: p.Publisher,
		runs:      p.Runs,
		recorder:  p.Recorder,
		cfg:       p.Cfg,
	}
}

// newPublisher builds the Publisher for the configured output target.
func newPublisher(resolver storage.ConnectionResolver, cfg *appconfig.Config) *writer.Publisher {
	pc := cfg.Aisclean.Pipeline
	return writer.NewPublisher(resolver, pc.OutputStorageRef, pc.OutputBucket)
}

// Run executes a single cleaning run. The returned error is the first
// fatal error encountered; the ledger record and run metrics are written
// on both the success and the failure path.
func (r *Runner) Run(ctx context.Context) error {
	pc := r.cfg.Aisclean.Pipeline

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "run")
	defer span.End()
	span.SetAttributes(
		attribute.String("source.bucket", pc.SourceBucket),
		attribute.String("source.object", pc.SourceObject),
	)

	run := ledger.NewCleaningRun(
		fmt.Sprintf("%s/%s", pc.SourceBucket, pc.SourceObject),
		pc.OutputBaseDir,
	)

	report, runErr := r.execute(ctx)
	run.FinishedAt = time.Now().UTC()
	if report != nil {
		run.RowsRead = report.RowsIn
		run.RowsDisqualified = report.RowsDisqualified
		run.RowsWritten = report.RowsOut
		for _, n := range report.CellsNulled {
			run.CellsNulled += n
		}
		run.PartitionsWritten = report.PartitionsWritten
	}

	status := ledger.StatusCompleted
	if runErr != nil {
		status = ledger.StatusFailed
		run.ErrorKind = exception.KindName(runErr)
		run.ErrorMessage = exception.ExtractErrorMessage(runErr)
		span.SetStatus(codes.Error, run.ErrorMessage)
	}
	run.Status = status

	r.recorder.RecordRunDuration(ctx, status, run.Duration())
	if err := r.runs.Save(ctx, run); err != nil {
		// A ledger failure must not mask the pipeline outcome.
		logger.Errorf("Failed to record cleaning run '%s': %v", run.ID, err)
	}

	if runErr != nil {
		logger.Errorf("Cleaning run '%s' failed: %v", run.ID, runErr)
		return runErr
	}
	logger.Infof("Cleaning run '%s' completed: %d rows in, %d removed, %d written.",
		run.ID, run.RowsRead, run.RowsRead-run.RowsWritten, run.RowsWritten)
	return nil
}

// execute performs the download, clean and publish stages and reports
// partition counts into the run record via the returned report.
func (r *Runner) execute(ctx context.Context) (*pipeline.Report, error) {
	pc := r.cfg.Aisclean.Pipeline

	raw, err := r.download(ctx)
	if err != nil {
		return nil, err
	}

	files, report, err := r.service.Process(ctx, raw)
	if err != nil {
		return report, err
	}

	if err := r.publisher.Publish(ctx, files); err != nil {
		return report, err
	}

	logger.Infof("Published %d partition files to %s/%s.", len(files), pc.OutputBucket, pc.OutputBaseDir)
	return report, nil
}

// download fetches the raw source object into memory.
func (r *Runner) download(ctx context.Context) ([]byte, error) {
	pc := r.cfg.Aisclean.Pipeline

	conn, err := r.resolver.Resolve(ctx, pc.SourceStorageRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage connection '%s': %w", pc.SourceStorageRef, err)
	}

	rc, err := conn.Download(ctx, pc.SourceBucket, pc.SourceObject)
	if err != nil {
		return nil, exception.NewPipelineError("download",
			fmt.Sprintf("failed to download source object '%s/%s'", pc.SourceBucket, pc.SourceObject),
			nil, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, exception.NewPipelineError("download",
			fmt.Sprintf("failed to read source object '%s/%s'", pc.SourceBucket, pc.SourceObject),
			nil, err)
	}
	logger.Debugf("Downloaded source object '%s/%s' (%d bytes).", pc.SourceBucket, pc.SourceObject, len(raw))
	return raw, nil
}
