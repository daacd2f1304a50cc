// Package metrics provides the observability recorders of the cleaning
// pipeline. Per-cell repairs and per-row disqualifications are counted here
// and never surface as invocation failures.
package metrics

import (
	"context"
	"time"
)

// Recorder receives the observability counts of one cleaning invocation.
type Recorder interface {
	// RecordRowsRead records the number of rows parsed from the raw input.
	RecordRowsRead(ctx context.Context, n int)
	// RecordRowsDisqualified records rows removed for an unrecoverable
	// timestamp.
	RecordRowsDisqualified(ctx context.Context, n int)
	// RecordCellsNulled records cells of one column resolved to the missing
	// marker.
	RecordCellsNulled(ctx context.Context, column string, n int)
	// RecordRowsWritten records rows that reached the columnar output.
	RecordRowsWritten(ctx context.Context, n int)
	// RecordPartitionsWritten records the number of partition files produced.
	RecordPartitionsWritten(ctx context.Context, n int)
	// RecordRunDuration records the wall time of one invocation with its
	// terminal status ("completed" or "failed").
	RecordRunDuration(ctx context.Context, status string, d time.Duration)
}

// NoopRecorder discards all measurements.
type NoopRecorder struct{}

// NewNoopRecorder creates a Recorder that discards all measurements.
func NewNoopRecorder() Recorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) RecordRowsRead(context.Context, int)                       {}
func (*NoopRecorder) RecordRowsDisqualified(context.Context, int)               {}
func (*NoopRecorder) RecordCellsNulled(context.Context, string, int)            {}
func (*NoopRecorder) RecordRowsWritten(context.Context, int)                    {}
func (*NoopRecorder) RecordPartitionsWritten(context.Context, int)              {}
func (*NoopRecorder) RecordRunDuration(context.Context, string, time.Duration)  {}

var _ Recorder = (*NoopRecorder)(nil)
