package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/schema"
)

// coercionOutcome is the explicit three-way result of coercing one cell
// against a numeric-range rule.
type coercionOutcome int

const (
	// coercionValid means the value coerced to a number inside the domain.
	coercionValid coercionOutcome = iota
	// coercionOutOfRange means the value coerced but falls outside [min, max].
	coercionOutOfRange
	// coercionFailed means the value is non-numeric (including NaN and ±Inf).
	coercionFailed
)

// SanitizeColumn enforces one numeric-range rule on one column, in place.
// Cells that fail coercion or fall outside the inclusive domain are replaced
// with the missing marker; in-domain values are kept exactly as coerced,
// never clamped. Rows are never removed. The return value is the number of
// cells resolved to the missing marker, for observability only.
func SanitizeColumn(t *model.Table, rule schema.Rule) int {
	repaired := 0
	for _, row := range t.Rows() {
		cell, ok := row.Cell(rule.Column)
		if !ok || cell.IsNull() {
			// Missing stays missing; sanitization is idempotent.
			continue
		}

		v, outcome := coerceNumeric(cell, rule.Min, rule.Max)
		switch outcome {
		case coercionValid:
			row.SetCell(rule.Column, model.NumberCell(v))
		default:
			row.SetCell(rule.Column, model.NullCell())
			repaired++
		}
	}
	return repaired
}

// coerceNumeric resolves a cell to a float64 and classifies it against the
// inclusive [min, max] domain. Boundary values are valid.
func coerceNumeric(cell model.Cell, min, max float64) (float64, coercionOutcome) {
	var v float64
	if n, ok := cell.Number(); ok {
		v = n
	} else if raw, ok := cell.RawText(); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, coercionFailed
		}
		v = parsed
	} else {
		return 0, coercionFailed
	}

	// Textual NaN/Inf representations parse successfully but are not
	// usable domain values.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, coercionFailed
	}
	if v < min || v > max {
		return v, coercionOutOfRange
	}
	return v, coercionValid
}
