package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tidewell/aisclean/internal/domain/model"
)

func TestCell_States(t *testing.T) {
	raw := model.RawCell("3.5")
	text, ok := raw.RawText()
	assert.True(t, ok)
	assert.Equal(t, "3.5", text)
	_, ok = raw.Number()
	assert.False(t, ok)
	assert.False(t, raw.IsNull())

	num := model.NumberCell(0)
	v, ok := num.Number()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.False(t, num.IsNull())

	null := model.NullCell()
	assert.True(t, null.IsNull())
	_, ok = null.Number()
	assert.False(t, ok)
	_, ok = null.RawText()
	assert.False(t, ok)
}

func TestTable_FilterPreservesOrder(t *testing.T) {
	table := model.NewTable([]string{"timestamp"})
	for i := 0; i < 5; i++ {
		table.AppendRow(map[string]model.Cell{"timestamp": model.NumberCell(float64(i))})
	}
	table.Rows()[1].Disqualified = true
	table.Rows()[3].Disqualified = true

	removed := table.Filter(func(r *model.Row) bool { return !r.Disqualified })

	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, table.Len())
	seqs := []int{}
	for _, row := range table.Rows() {
		seqs = append(seqs, row.Seq())
	}
	assert.Equal(t, []int{0, 2, 4}, seqs)
}

func TestTable_SortByTimestampIsStable(t *testing.T) {
	table := model.NewTable([]string{"timestamp"})
	base := time.Unix(1700000000, 0).UTC()
	for _, offset := range []time.Duration{time.Hour, 0, time.Hour, -time.Hour} {
		row := table.AppendRow(map[string]model.Cell{})
		row.Timestamp = base.Add(offset)
	}

	table.SortByTimestamp()

	seqs := []int{}
	for _, row := range table.Rows() {
		seqs = append(seqs, row.Seq())
	}
	assert.Equal(t, []int{3, 1, 0, 2}, seqs)
}

func TestTable_HasColumn(t *testing.T) {
	table := model.NewTable([]string{"timestamp", "latitude"})
	assert.True(t, table.HasColumn("latitude"))
	assert.False(t, table.HasColumn("vessel_name"))
}
