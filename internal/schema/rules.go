// Package schema declares the static per-column validity rules of the vessel
// telemetry dataset and their repair policy.
package schema

import "github.com/tidewell/aisclean/internal/domain/model"

// RuleKind distinguishes the two repair policies a column can carry.
type RuleKind int

const (
	// KindNumericRange marks a column whose out-of-domain or non-numeric
	// values are replaced with the missing marker.
	KindNumericRange RuleKind = iota
	// KindTimestamp marks the time column; rows failing its validation are
	// rejected at the row level.
	KindTimestamp
)

// Rule associates a column with its validity constraint.
type Rule struct {
	// Column is the column name the rule applies to.
	Column string
	// Kind selects the repair policy.
	Kind RuleKind
	// Min and Max are the inclusive domain bounds for numeric-range rules.
	Min float64
	Max float64
}

// ruleTable is the static rule set, in application order. Columns not listed
// here pass through the pipeline unmodified.
var ruleTable = []Rule{
	{Column: model.ColumnTimestamp, Kind: KindTimestamp},
	{Column: model.ColumnSpeedOverGround, Kind: KindNumericRange, Min: 0, Max: 10},
	{Column: model.ColumnLongitude, Kind: KindNumericRange, Min: -180, Max: 180},
	{Column: model.ColumnLatitude, Kind: KindNumericRange, Min: -90, Max: 90},
	{Column: model.ColumnEngineFuelRate, Kind: KindNumericRange, Min: 0, Max: 100},
}

// Rules returns all rules in application order.
func Rules() []Rule {
	out := make([]Rule, len(ruleTable))
	copy(out, ruleTable)
	return out
}

// NumericRangeRules returns only the numeric-range rules, in application
// order.
func NumericRangeRules() []Rule {
	var out []Rule
	for _, r := range ruleTable {
		if r.Kind == KindNumericRange {
			out = append(out, r)
		}
	}
	return out
}

// RuleFor looks up the rule of the named column. ok is false for columns
// without a declared rule; such columns are passed through unmodified.
func RuleFor(column string) (Rule, bool) {
	for _, r := range ruleTable {
		if r.Column == column {
			return r, true
		}
	}
	return Rule{}, false
}
