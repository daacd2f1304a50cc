package metrics_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tidewell/aisclean/internal/metrics"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	recorder := metrics.NewPrometheusRecorder()
	ctx := context.Background()

	recorder.RecordRowsRead(ctx, 10)
	recorder.RecordRowsRead(ctx, 5)
	recorder.RecordRowsDisqualified(ctx, 2)
	recorder.RecordRowsWritten(ctx, 13)
	recorder.RecordCellsNulled(ctx, "latitude", 3)
	recorder.RecordCellsNulled(ctx, "speed_over_ground", 1)
	recorder.RecordPartitionsWritten(ctx, 2)

	expected := `
# HELP cleaning_rows_read_total Total rows parsed from raw input files.
# TYPE cleaning_rows_read_total counter
cleaning_rows_read_total 15
`
	assert.NoError(t, testutil.GatherAndCompare(recorder.GetRegistry(),
		strings.NewReader(expected), "cleaning_rows_read_total"))

	expected = `
# HELP cleaning_cells_nulled_total Total cells resolved to the missing marker, by column.
# TYPE cleaning_cells_nulled_total counter
cleaning_cells_nulled_total{column="latitude"} 3
cleaning_cells_nulled_total{column="speed_over_ground"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(recorder.GetRegistry(),
		strings.NewReader(expected), "cleaning_cells_nulled_total"))
}

func TestPrometheusRecorder_RunDuration(t *testing.T) {
	recorder := metrics.NewPrometheusRecorder()

	recorder.RecordRunDuration(context.Background(), "COMPLETED", 250*time.Millisecond)

	count, err := testutil.GatherAndCount(recorder.GetRegistry(), "cleaning_run_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNoopRecorder_DiscardsEverything(t *testing.T) {
	recorder := metrics.NewNoopRecorder()
	ctx := context.Background()

	// Must not panic and must accept any input.
	recorder.RecordRowsRead(ctx, 1)
	recorder.RecordRowsDisqualified(ctx, 1)
	recorder.RecordCellsNulled(ctx, "latitude", 1)
	recorder.RecordRowsWritten(ctx, 1)
	recorder.RecordPartitionsWritten(ctx, 1)
	recorder.RecordRunDuration(ctx, "FAILED", time.Second)
}
