// Package pipeline implements the validation-and-repair engine: a
// deterministic, column-wise cleaning pass that turns an unordered,
// error-laden record set into a time-ordered, range-constrained table.
package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/metrics"
	"github.com/tidewell/aisclean/internal/schema"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
	"github.com/tidewell/aisclean/internal/telemetry"
)

const stageName = "cleaner"

// Report aggregates the observability counts of one cleaning pass. None of
// these counts affect the invocation outcome.
type Report struct {
	// RowsIn is the number of rows in the parsed input table.
	RowsIn int
	// RowsDisqualified is the number of rows removed for an unrecoverable
	// timestamp.
	RowsDisqualified int
	// RowsOut is the number of rows surviving the full pass.
	RowsOut int
	// CellsNulled counts cells resolved to the missing marker, per column.
	CellsNulled map[string]int
	// PartitionsWritten is the number of partition files serialized from the
	// surviving rows. Filled in after encoding, not by the cleaning pass.
	PartitionsWritten int
}

// Orchestrator sequences the cleaning pass over a record table.
type Orchestrator struct {
	recorder metrics.Recorder
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(recorder metrics.Recorder) *Orchestrator {
	return &Orchestrator{recorder: recorder}
}

// Clean runs the full pass in place: timestamp normalization, row-level
// filtering, per-column sanitization, the global sort by timestamp and the
// derivation of the calendar partition fields.
//
// An empty table surfaces a malformed-input error; a ruled column absent
// from the table surfaces a schema-mismatch error naming it. Neither leaves
// partial output behind since nothing has been written yet.
func (o *Orchestrator) Clean(ctx context.Context, t *model.Table) (*Report, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "pipeline.clean")
	defer span.End()

	if t == nil || t.Len() == 0 {
		return nil, exception.NewMalformedInputError(stageName, "input table contains no rows", nil)
	}
	if !t.HasColumn(model.ColumnTimestamp) {
		return nil, exception.NewSchemaMismatchError(stageName, model.ColumnTimestamp)
	}

	report := &Report{
		RowsIn:      t.Len(),
		CellsNulled: make(map[string]int),
	}
	o.recorder.RecordRowsRead(ctx, report.RowsIn)

	report.RowsDisqualified = NormalizeTimestamps(t)
	o.recorder.RecordRowsDisqualified(ctx, report.RowsDisqualified)
	t.Filter(func(r *model.Row) bool { return !r.Disqualified })

	// Sanitizers are column-independent; rule-table order is followed for
	// determinism only.
	for _, rule := range schema.NumericRangeRules() {
		if !t.HasColumn(rule.Column) {
			return nil, exception.NewSchemaMismatchError(stageName, rule.Column)
		}
		nulled := SanitizeColumn(t, rule)
		report.CellsNulled[rule.Column] = nulled
		o.recorder.RecordCellsNulled(ctx, rule.Column, nulled)
	}

	t.SortByTimestamp()

	for _, row := range t.Rows() {
		row.Year = int32(row.Timestamp.Year())
		row.Month = int32(row.Timestamp.Month())
		row.Day = int32(row.Timestamp.Day())
	}
	report.RowsOut = t.Len()

	span.SetAttributes(
		attribute.Int("cleaning.rows_in", report.RowsIn),
		attribute.Int("cleaning.rows_out", report.RowsOut),
		attribute.Int("cleaning.rows_disqualified", report.RowsDisqualified),
	)
	logger.Infof("Cleaning pass finished: %d rows in, %d disqualified, %d out.",
		report.RowsIn, report.RowsDisqualified, report.RowsOut)
	return report, nil
}
