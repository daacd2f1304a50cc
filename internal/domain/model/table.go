// Package model holds the in-memory record table the cleaning pipeline
// operates on. The table is created by the reader, mutated column by column
// through the pipeline, and consumed exactly once by the columnar writer.
package model

import (
	"sort"
	"time"
)

// Canonical column names of the vessel telemetry schema.
const (
	ColumnTimestamp       = "timestamp"
	ColumnSpeedOverGround = "speed_over_ground"
	ColumnLongitude       = "longitude"
	ColumnLatitude        = "latitude"
	ColumnEngineFuelRate  = "engine_fuel_rate"
)

// cellState distinguishes the three shapes a cell can be in. The missing
// marker is an explicit state rather than a sentinel value, so 0 remains a
// legitimate reading.
type cellState int

const (
	// cellRaw holds the original text from the input, not yet coerced.
	cellRaw cellState = iota
	// cellNumber holds a coerced, in-domain numeric value.
	cellNumber
	// cellNull is the missing marker.
	cellNull
)

// Cell is one value of a column. A cell starts raw, and after sanitization
// is either a concrete number or the missing marker.
type Cell struct {
	state cellState
	raw   string
	num   float64
}

// RawCell creates a cell holding the original, uncoerced input text.
func RawCell(text string) Cell {
	return Cell{state: cellRaw, raw: text}
}

// NumberCell creates a cell holding a coerced numeric value.
func NumberCell(v float64) Cell {
	return Cell{state: cellNumber, num: v}
}

// NullCell creates the missing marker.
func NullCell() Cell {
	return Cell{state: cellNull}
}

// IsNull reports whether the cell is the missing marker.
func (c Cell) IsNull() bool {
	return c.state == cellNull
}

// Number returns the coerced numeric value. ok is false for raw and null
// cells.
func (c Cell) Number() (v float64, ok bool) {
	if c.state != cellNumber {
		return 0, false
	}
	return c.num, true
}

// RawText returns the original input text. ok is false unless the cell is
// still in its raw state.
func (c Cell) RawText() (text string, ok bool) {
	if c.state != cellRaw {
		return "", false
	}
	return c.raw, true
}

// Row is one record of the table. Timestamp and the derived calendar fields
// exist only after normalization; Disqualified marks rows the row-level
// filter removes.
type Row struct {
	cells map[string]Cell

	// Timestamp is the structured calendar timestamp (UTC, second
	// precision), set by the timestamp normalizer.
	Timestamp time.Time
	// Disqualified marks a row for removal by the row-level filter.
	Disqualified bool
	// Year, Month, Day are the partition keys derived from Timestamp.
	Year  int32
	Month int32
	Day   int32

	// seq is the original input position, used as the sort tie-breaker.
	seq int
}

// Cell returns the cell of the named column.
func (r *Row) Cell(column string) (Cell, bool) {
	c, ok := r.cells[column]
	return c, ok
}

// SetCell replaces the cell of the named column.
func (r *Row) SetCell(column string, c Cell) {
	r.cells[column] = c
}

// Seq returns the row's original input position.
func (r *Row) Seq() int {
	return r.seq
}

// Table is an ordered collection of rows sharing one column schema.
type Table struct {
	columns []string
	rows    []*Row
}

// NewTable creates an empty table with the given column schema.
func NewTable(columns []string) *Table {
	return &Table{columns: columns}
}

// Columns returns the column names in input order.
func (t *Table) Columns() []string {
	return t.columns
}

// HasColumn reports whether the named column is part of the schema.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// AppendRow adds a row with the given cells, assigning the next input
// sequence number.
func (t *Table) AppendRow(cells map[string]Cell) *Row {
	row := &Row{cells: cells, seq: len(t.rows)}
	t.rows = append(t.rows, row)
	return row
}

// Rows returns the rows in their current order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Filter removes all rows for which keep returns false, preserving the
// relative order of the surviving rows.
func (t *Table) Filter(keep func(*Row) bool) int {
	kept := t.rows[:0]
	removed := 0
	for _, row := range t.rows {
		if keep(row) {
			kept = append(kept, row)
		} else {
			removed++
		}
	}
	t.rows = kept
	return removed
}

// SortByTimestamp orders rows by ascending structured timestamp. Ties keep
// their original input order.
func (t *Table) SortByTimestamp() {
	sort.SliceStable(t.rows, func(i, j int) bool {
		return t.rows[i].Timestamp.Before(t.rows[j].Timestamp)
	})
}
