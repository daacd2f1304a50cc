package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/metrics"
	"github.com/tidewell/aisclean/internal/pipeline"
	"github.com/tidewell/aisclean/internal/support/exception"
)

var telemetryColumns = []string{
	model.ColumnTimestamp,
	model.ColumnSpeedOverGround,
	model.ColumnLongitude,
	model.ColumnLatitude,
	model.ColumnEngineFuelRate,
}

// appendTelemetryRow adds a row from raw texts in column order. The empty
// string stands in for a missing value.
func appendTelemetryRow(t *model.Table, values ...string) {
	cells := map[string]model.Cell{}
	for i, column := range telemetryColumns {
		if values[i] == "" {
			cells[column] = model.NullCell()
		} else {
			cells[column] = model.RawCell(values[i])
		}
	}
	t.AppendRow(cells)
}

func newOrchestrator() *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(metrics.NewNoopRecorder())
}

func TestClean_FullPass(t *testing.T) {
	table := model.NewTable(telemetryColumns)
	appendTelemetryRow(table, "1700000300", "3.5", "139.7", "35.6", "42.0")
	appendTelemetryRow(table, "1700000100", "11.0", "139.8", "95.0", "abc")
	appendTelemetryRow(table, "garbage", "2.0", "139.9", "35.7", "40.0")
	appendTelemetryRow(table, "1700000200", "0", "-180", "90", "100")

	report, err := newOrchestrator().Clean(context.Background(), table)

	assert.NoError(t, err)
	assert.Equal(t, 4, report.RowsIn)
	assert.Equal(t, 1, report.RowsDisqualified)
	assert.Equal(t, 3, report.RowsOut)
	assert.Equal(t, 1, report.CellsNulled[model.ColumnSpeedOverGround])
	assert.Equal(t, 1, report.CellsNulled[model.ColumnLatitude])
	assert.Equal(t, 1, report.CellsNulled[model.ColumnEngineFuelRate])
	assert.Equal(t, 0, report.CellsNulled[model.ColumnLongitude])

	// Surviving rows come out in ascending timestamp order.
	rows := table.Rows()
	assert.Equal(t, 3, len(rows))
	assert.Equal(t, time.Unix(1700000100, 0).UTC(), rows[0].Timestamp)
	assert.Equal(t, time.Unix(1700000200, 0).UTC(), rows[1].Timestamp)
	assert.Equal(t, time.Unix(1700000300, 0).UTC(), rows[2].Timestamp)

	// Calendar partition fields are derived from the structured timestamp.
	ts := time.Unix(1700000100, 0).UTC()
	assert.Equal(t, int32(ts.Year()), rows[0].Year)
	assert.Equal(t, int32(ts.Month()), rows[0].Month)
	assert.Equal(t, int32(ts.Day()), rows[0].Day)
}

func TestClean_SortIsStableOnEqualTimestamps(t *testing.T) {
	table := model.NewTable(telemetryColumns)
	appendTelemetryRow(table, "1700000000", "1.0", "10", "10", "10")
	appendTelemetryRow(table, "1700000000", "2.0", "20", "20", "20")
	appendTelemetryRow(table, "1600000000", "3.0", "30", "30", "30")
	appendTelemetryRow(table, "1700000000", "4.0", "40", "40", "40")

	_, err := newOrchestrator().Clean(context.Background(), table)
	assert.NoError(t, err)

	// Equal timestamps keep their relative input order.
	seqs := make([]int, 0, table.Len())
	for _, row := range table.Rows() {
		seqs = append(seqs, row.Seq())
	}
	assert.Equal(t, []int{2, 0, 1, 3}, seqs)
}

func TestClean_EmptyTableIsMalformedInput(t *testing.T) {
	table := model.NewTable(telemetryColumns)

	report, err := newOrchestrator().Clean(context.Background(), table)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, exception.ErrMalformedInput)
}

func TestClean_MissingRuledColumnIsSchemaMismatch(t *testing.T) {
	columns := []string{model.ColumnTimestamp, model.ColumnSpeedOverGround}
	table := model.NewTable(columns)
	table.AppendRow(map[string]model.Cell{
		model.ColumnTimestamp:       model.RawCell("1700000000"),
		model.ColumnSpeedOverGround: model.RawCell("3.0"),
	})

	report, err := newOrchestrator().Clean(context.Background(), table)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, exception.ErrSchemaMismatch)

	var pe *exception.PipelineError
	assert.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, model.ColumnLongitude)
}

func TestClean_MissingTimestampColumnIsSchemaMismatch(t *testing.T) {
	table := model.NewTable([]string{model.ColumnSpeedOverGround})
	table.AppendRow(map[string]model.Cell{
		model.ColumnSpeedOverGround: model.RawCell("3.0"),
	})

	_, err := newOrchestrator().Clean(context.Background(), table)

	assert.ErrorIs(t, err, exception.ErrSchemaMismatch)
}

func TestClean_ExtraColumnsPassThroughUntouched(t *testing.T) {
	columns := append([]string{}, telemetryColumns...)
	columns = append(columns, "vessel_name")
	table := model.NewTable(columns)
	table.AppendRow(map[string]model.Cell{
		model.ColumnTimestamp:       model.RawCell("1700000000"),
		model.ColumnSpeedOverGround: model.RawCell("3.0"),
		model.ColumnLongitude:       model.RawCell("139.7"),
		model.ColumnLatitude:        model.RawCell("35.6"),
		model.ColumnEngineFuelRate:  model.RawCell("42.0"),
		"vessel_name":               model.RawCell("MV Example"),
	})

	_, err := newOrchestrator().Clean(context.Background(), table)
	assert.NoError(t, err)

	cell, ok := table.Rows()[0].Cell("vessel_name")
	assert.True(t, ok)
	text, ok := cell.RawText()
	assert.True(t, ok)
	assert.Equal(t, "MV Example", text)
}

func TestClean_IdempotentOnCleanTable(t *testing.T) {
	table := model.NewTable(telemetryColumns)
	appendTelemetryRow(table, "1700000200", "3.5", "139.7", "35.6", "42.0")
	appendTelemetryRow(table, "1700000100", "99", "139.8", "35.7", "")

	o := newOrchestrator()
	first, err := o.Clean(context.Background(), table)
	assert.NoError(t, err)

	second, err := o.Clean(context.Background(), table)
	assert.NoError(t, err)

	assert.Equal(t, first.RowsOut, second.RowsIn)
	assert.Equal(t, first.RowsOut, second.RowsOut)
	assert.Equal(t, 0, second.RowsDisqualified)
	for _, column := range telemetryColumns[1:] {
		assert.Equal(t, 0, second.CellsNulled[column])
	}
}
