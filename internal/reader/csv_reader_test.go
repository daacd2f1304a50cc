package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/reader"
	"github.com/tidewell/aisclean/internal/support/exception"
)

func TestParseCSV_Basic(t *testing.T) {
	raw := []byte("timestamp,speed_over_ground,latitude\n" +
		"1700000000,3.5,35.6\n" +
		"1700000100,,35.7\n")

	table, err := reader.ParseCSV(raw)

	assert.NoError(t, err)
	assert.Equal(t, []string{"timestamp", "speed_over_ground", "latitude"}, table.Columns())
	assert.Equal(t, 2, table.Len())

	cell, ok := table.Rows()[0].Cell(model.ColumnTimestamp)
	assert.True(t, ok)
	text, ok := cell.RawText()
	assert.True(t, ok)
	assert.Equal(t, "1700000000", text)

	// An empty field parses to the missing marker, not to raw text.
	cell, _ = table.Rows()[1].Cell(model.ColumnSpeedOverGround)
	assert.True(t, cell.IsNull())
}

func TestParseCSV_EmptyFile(t *testing.T) {
	table, err := reader.ParseCSV(nil)

	assert.Nil(t, table)
	assert.ErrorIs(t, err, exception.ErrMalformedInput)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	table, err := reader.ParseCSV([]byte("timestamp,latitude\n"))

	assert.Nil(t, table)
	assert.ErrorIs(t, err, exception.ErrMalformedInput)
}

func TestParseCSV_UnnamedColumn(t *testing.T) {
	table, err := reader.ParseCSV([]byte("timestamp,,latitude\n1700000000,1,2\n"))

	assert.Nil(t, table)
	assert.ErrorIs(t, err, exception.ErrMalformedInput)
}

func TestParseCSV_RaggedRecord(t *testing.T) {
	raw := []byte("timestamp,latitude\n" +
		"1700000000,35.6\n" +
		"1700000100\n")

	table, err := reader.ParseCSV(raw)

	assert.Nil(t, table)
	assert.ErrorIs(t, err, exception.ErrMalformedInput)
}

func TestParseCSV_WhitespaceOnlyFieldIsMissing(t *testing.T) {
	raw := []byte("timestamp,latitude\n1700000000,   \n")

	table, err := reader.ParseCSV(raw)

	assert.NoError(t, err)
	cell, _ := table.Rows()[0].Cell(model.ColumnLatitude)
	assert.True(t, cell.IsNull())
}
