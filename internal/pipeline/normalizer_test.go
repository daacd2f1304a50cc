package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/pipeline"
)

// newTimestampTable builds a single-column table from raw timestamp texts.
func newTimestampTable(values ...string) *model.Table {
	t := model.NewTable([]string{model.ColumnTimestamp})
	for _, v := range values {
		cells := map[string]model.Cell{}
		if v == "" {
			cells[model.ColumnTimestamp] = model.NullCell()
		} else {
			cells[model.ColumnTimestamp] = model.RawCell(v)
		}
		t.AppendRow(cells)
	}
	return t
}

func TestNormalizeTimestamps_ValidEpoch(t *testing.T) {
	table := newTimestampTable("1700000000")

	disqualified := pipeline.NormalizeTimestamps(table)

	assert.Equal(t, 0, disqualified)
	row := table.Rows()[0]
	assert.False(t, row.Disqualified)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), row.Timestamp)
	assert.Equal(t, time.UTC, row.Timestamp.Location())

	// The cell is rewritten to its coerced numeric form so a second pass
	// over already-clean data behaves identically.
	cell, ok := row.Cell(model.ColumnTimestamp)
	assert.True(t, ok)
	n, ok := cell.Number()
	assert.True(t, ok)
	assert.Equal(t, float64(1700000000), n)
}

func TestNormalizeTimestamps_DisqualifiesInvalidRows(t *testing.T) {
	table := newTimestampTable(
		"1700000000",  // valid
		"999999999",   // 9 digits
		"10000000000", // 11 digits
		"not-a-time",  // non-numeric
		"1700000000.5", // fractional
		"",            // missing
		"NaN",
	)

	disqualified := pipeline.NormalizeTimestamps(table)

	assert.Equal(t, 6, disqualified)
	assert.False(t, table.Rows()[0].Disqualified)
	for _, row := range table.Rows()[1:] {
		assert.True(t, row.Disqualified)
	}
}

func TestNormalizeTimestamps_AcceptsStructuralBounds(t *testing.T) {
	table := newTimestampTable("1000000000", "9999999999")

	disqualified := pipeline.NormalizeTimestamps(table)

	assert.Equal(t, 0, disqualified)
	assert.Equal(t, time.Unix(1000000000, 0).UTC(), table.Rows()[0].Timestamp)
	assert.Equal(t, time.Unix(9999999999, 0).UTC(), table.Rows()[1].Timestamp)
}

func TestNormalizeTimestamps_KeepsAllRowsInPlace(t *testing.T) {
	table := newTimestampTable("bogus", "1700000000")

	pipeline.NormalizeTimestamps(table)

	// Disqualification flags rows; removal is the filter's job.
	assert.Equal(t, 2, table.Len())
}

func TestNormalizeTimestamps_IdempotentOnCleanData(t *testing.T) {
	table := newTimestampTable("1700000000", "1600000000")

	first := pipeline.NormalizeTimestamps(table)
	second := pipeline.NormalizeTimestamps(table)

	assert.Equal(t, 0, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), table.Rows()[0].Timestamp)
}
