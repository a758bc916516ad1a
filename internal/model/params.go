package model

import "strings"

// ValidationError is a local input failure detected before any network
// call. Missing required fields and empty condition sets are the two
// classes the dashboard distinguishes from fetch failures.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func missingField(name string) *ValidationError {
	return &ValidationError{Field: name, Msg: "missing required field: " + name}
}

// ValidateChart checks the inputs the chart itself needs: ticker and both
// dates, with a well-ordered range. The sync engine must not issue any
// network call when this fails.
func (p StrategyParameters) ValidateChart() error {
	if strings.TrimSpace(p.Ticker) == "" {
		return missingField("ticker")
	}
	if strings.TrimSpace(p.StartDate) == "" {
		return missingField("start_date")
	}
	if strings.TrimSpace(p.EndDate) == "" {
		return missingField("end_date")
	}
	start, err := ParseDate(p.StartDate)
	if err != nil {
		return &ValidationError{Field: "start_date", Msg: "start_date is not a valid date: " + p.StartDate}
	}
	end, err := ParseDate(p.EndDate)
	if err != nil {
		return &ValidationError{Field: "end_date", Msg: "end_date is not a valid date: " + p.EndDate}
	}
	if start.After(end.Time) {
		return &ValidationError{Field: "start_date", Msg: "start_date must not be after end_date"}
	}
	return nil
}

// Validate checks everything a backtest run needs: the chart inputs plus
// cash settings and at least one valid condition on each side.
func (p StrategyParameters) Validate() error {
	if err := p.ValidateChart(); err != nil {
		return err
	}
	if p.InitialCash <= 0 {
		return &ValidationError{Field: "initial_cash", Msg: "initial_cash must be positive"}
	}
	if p.Commission < 0 || p.Commission >= 1 {
		return &ValidationError{Field: "commission", Msg: "commission must be in [0, 1)"}
	}
	if p.FixedCashPerTrade < 0 {
		return &ValidationError{Field: "fixed_cash_per_trade", Msg: "fixed_cash_per_trade must not be negative"}
	}
	if len(p.Conditions) == 0 {
		return &ValidationError{Field: "conditions", Msg: "at least one entry condition is required"}
	}
	if len(p.Exits) == 0 {
		return &ValidationError{Field: "exits", Msg: "at least one exit condition is required"}
	}
	for _, c := range p.Conditions {
		if err := c.Validate(); err != nil {
			return &ValidationError{Field: "conditions", Msg: err.Error()}
		}
	}
	for _, c := range p.Exits {
		if err := c.Validate(); err != nil {
			return &ValidationError{Field: "exits", Msg: err.Error()}
		}
	}
	return nil
}

// ForService returns a copy whose conditions are canonicalized, ready to be
// serialized into a backtest request.
func (p StrategyParameters) ForService() StrategyParameters {
	out := p.Clone()
	for i, c := range out.Conditions {
		out.Conditions[i] = c.Canonical()
	}
	for i, c := range out.Exits {
		out.Exits[i] = c.Canonical()
	}
	return out
}
