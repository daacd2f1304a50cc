package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/tidewell/aisclean/internal/metrics"
	"github.com/tidewell/aisclean/internal/reader"
	"github.com/tidewell/aisclean/internal/telemetry"
	"github.com/tidewell/aisclean/internal/writer"
)

// Service is the entry contract of the engine: raw bytes in, a complete
// partition set out. It performs no I/O itself; downloading the raw object
// and uploading the partitions bracket this call in the host glue.
type Service struct {
	orchestrator *Orchestrator
	encoder      *writer.ParquetEncoder
	recorder     metrics.Recorder
}

// NewService creates a new Service.
func NewService(orchestrator *Orchestrator, encoder *writer.ParquetEncoder, recorder metrics.Recorder) *Service {
	return &Service{
		orchestrator: orchestrator,
		encoder:      encoder,
		recorder:     recorder,
	}
}

// Process parses, cleans and serializes one raw telemetry file. On any
// fatal error no partition files are returned; the cleaning report is
// returned whenever the cleaning pass itself completed.
func (s *Service) Process(ctx context.Context, raw []byte) ([]writer.PartitionFile, *Report, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "pipeline.process")
	defer span.End()

	table, err := reader.ParseCSV(raw)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	report, err := s.orchestrator.Clean(ctx, table)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	files, err := s.encoder.Encode(table)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, report, err
	}

	report.PartitionsWritten = len(files)
	s.recorder.RecordRowsWritten(ctx, report.RowsOut)
	s.recorder.RecordPartitionsWritten(ctx, report.PartitionsWritten)
	return files, report, nil
}
