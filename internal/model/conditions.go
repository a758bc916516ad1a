package model

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidConditionError describes why a condition failed validation.
type InvalidConditionError struct {
	Reason string
}

func (e *InvalidConditionError) Error() string {
	return "invalid condition: " + e.Reason
}

// Validate checks a condition against the canonical rule set: the period
// must be positive, the operator recognized, and the indicator family's
// required operand (reference for moving averages, value for oscillators)
// present.
func (c Condition) Validate() error {
	if c.Period <= 0 {
		return &InvalidConditionError{Reason: fmt.Sprintf("period must be positive, got %d", c.Period)}
	}
	if !c.Comparison.Valid() {
		return &InvalidConditionError{Reason: fmt.Sprintf("unrecognized comparison %q", c.Comparison)}
	}
	if c.Indicator.RequiresReference() {
		if strings.TrimSpace(c.Reference) == "" {
			return &InvalidConditionError{Reason: fmt.Sprintf("%s condition requires a reference series", c.Indicator)}
		}
		return nil
	}
	if c.Value == nil {
		return &InvalidConditionError{Reason: fmt.Sprintf("%s condition requires a threshold value", c.Indicator)}
	}
	return nil
}

// Canonical returns a copy with only the interpreted operand populated, so
// transient edit state never reaches the service.
func (c Condition) Canonical() Condition {
	if c.Indicator.RequiresReference() {
		c.Value = nil
	} else {
		c.Reference = ""
	}
	return c
}

// AddCondition appends a condition, returning a fresh slice.
func AddCondition(conds []Condition, c Condition) []Condition {
	out := make([]Condition, 0, len(conds)+1)
	out = append(out, conds...)
	return append(out, c)
}

// RemoveCondition removes the condition at index i, preserving the order of
// the remaining entries. An out-of-range index leaves the sequence
// unchanged.
func RemoveCondition(conds []Condition, i int) []Condition {
	if i < 0 || i >= len(conds) {
		return conds
	}
	out := make([]Condition, 0, len(conds)-1)
	out = append(out, conds[:i]...)
	return append(out, conds[i+1:]...)
}

// UpdateCondition replaces the condition at index i, returning a fresh
// slice. An out-of-range index leaves the sequence unchanged.
func UpdateCondition(conds []Condition, i int, c Condition) []Condition {
	if i < 0 || i >= len(conds) {
		return conds
	}
	out := append([]Condition(nil), conds...)
	out[i] = c
	return out
}

// IndicatorPeriod identifies one fetchable indicator series.
type IndicatorPeriod struct {
	Indicator Indicator
	Period    int
}

// SeriesID is the stable identifier for the pair, e.g. "SMA_50".
func (ip IndicatorPeriod) SeriesID() string {
	return fmt.Sprintf("%s_%d", ip.Indicator, ip.Period)
}

// ParseSeriesID parses identifiers of the form "SMA_50" (the shape used by
// condition references). The indicator part may itself contain underscores
// only in the period-less case, which is rejected.
func ParseSeriesID(id string) (IndicatorPeriod, error) {
	idx := strings.LastIndex(id, "_")
	if idx <= 0 || idx == len(id)-1 {
		return IndicatorPeriod{}, fmt.Errorf("invalid series id %q", id)
	}
	period, err := strconv.Atoi(id[idx+1:])
	if err != nil || period <= 0 {
		return IndicatorPeriod{}, fmt.Errorf("invalid series id %q", id)
	}
	return IndicatorPeriod{Indicator: Indicator(id[:idx]), Period: period}, nil
}

// DedupPairs computes the deduplicated set of indicator series needed to
// chart the given entry conditions, in first-appearance order so overlay
// colors stay stable across runs. References to other indicator series
// (e.g. "SMA_50") are charted too; references that do not parse as a series
// id (e.g. "Close") are skipped.
func DedupPairs(conds []Condition) []IndicatorPeriod {
	seen := make(map[IndicatorPeriod]bool)
	out := make([]IndicatorPeriod, 0, len(conds))
	add := func(ip IndicatorPeriod) {
		if !seen[ip] {
			seen[ip] = true
			out = append(out, ip)
		}
	}
	for _, c := range conds {
		add(IndicatorPeriod{Indicator: c.Indicator, Period: c.Period})
		if c.Indicator.RequiresReference() && c.Reference != "" {
			if ref, err := ParseSeriesID(c.Reference); err == nil {
				add(ref)
			}
		}
	}
	return out
}
