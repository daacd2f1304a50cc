package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidewell/aisclean/internal/domain/model"
)

// A structurally valid epoch value has exactly 10 decimal digits.
const (
	minEpochSeconds int64 = 1_000_000_000
	maxEpochSeconds int64 = 9_999_999_999
)

// epochFloor is the earliest calendar date accepted for a telemetry row.
// The comparison is against the real calendar date in UTC, not a numeric
// cutoff on the epoch value.
var epochFloor = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// NormalizeTimestamps validates and converts the timestamp column. Each row
// either receives a structured UTC timestamp or is flagged as disqualified;
// no row is deleted here. The return value is the number of disqualified
// rows, for observability only.
func NormalizeTimestamps(t *model.Table) int {
	disqualified := 0
	for _, row := range t.Rows() {
		cell, ok := row.Cell(model.ColumnTimestamp)
		if !ok {
			row.Disqualified = true
			disqualified++
			continue
		}

		sec, ok := parseEpochSeconds(cell)
		if !ok {
			row.Disqualified = true
			disqualified++
			continue
		}

		ts := time.Unix(sec, 0).UTC()
		if ts.Before(epochFloor) {
			row.Disqualified = true
			disqualified++
			continue
		}

		row.Timestamp = ts
		row.Disqualified = false
		row.SetCell(model.ColumnTimestamp, model.NumberCell(float64(sec)))
	}
	return disqualified
}

// parseEpochSeconds coerces a cell to an integral epoch value with exactly
// 10 decimal digits. Non-numeric text, fractional values, NaN/Inf and
// missing markers all fail structural validation.
func parseEpochSeconds(cell model.Cell) (int64, bool) {
	var v float64
	if n, ok := cell.Number(); ok {
		v = n
	} else if raw, ok := cell.RawText(); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	} else {
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || math.Trunc(v) != v {
		return 0, false
	}

	sec := int64(v)
	if sec < minEpochSeconds || sec > maxEpochSeconds {
		return 0, false
	}
	return sec, true
}
