// Package model defines shared data types used across all chartsync modules.
package model

import "time"

// Indicator identifies a technical indicator by its service name.
type Indicator string

const (
	IndicatorSMA       Indicator = "SMA"
	IndicatorEMA       Indicator = "EMA"
	IndicatorRSI       Indicator = "RSI"
	IndicatorATR       Indicator = "ATR"
	IndicatorCCI       Indicator = "CCI"
	IndicatorCMF       Indicator = "CMF"
	IndicatorWilliamsR Indicator = "Williams %R"
)

// RequiresReference reports whether the indicator belongs to the
// moving-average family, whose conditions compare against another series
// (e.g. "SMA_50") rather than a numeric threshold.
func (i Indicator) RequiresReference() bool {
	switch i {
	case IndicatorSMA, IndicatorEMA:
		return true
	}
	return false
}

// Comparison is a condition's comparison operator.
type Comparison string

const (
	CompareGreater Comparison = ">"
	CompareLess    Comparison = "<"
	CompareEqual   Comparison = "="
)

// Valid reports whether the operator is one of the three recognized ones.
func (c Comparison) Valid() bool {
	switch c {
	case CompareGreater, CompareLess, CompareEqual:
		return true
	}
	return false
}

// Theme is the dashboard color theme. A theme change is a chart input
// change: the surface is torn down and rebuilt.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Condition is one comparison rule over an indicator series. Exactly one of
// Reference or Value is interpreted, depending on the indicator family;
// both may be populated while the rule is being edited.
type Condition struct {
	Indicator  Indicator  `json:"indicator"`
	Period     int        `json:"period"`
	Comparison Comparison `json:"comparison"`
	Reference  string     `json:"reference,omitempty"`
	Value      *float64   `json:"value,omitempty"`
}

// StrategyParameters aggregates everything the backtesting service needs to
// run one strategy. Owned by the state store; read, never mutated, by the
// sync engine.
type StrategyParameters struct {
	Ticker            string      `json:"ticker"`
	StartDate         string      `json:"start_date"`
	EndDate           string      `json:"end_date"`
	InitialCash       float64     `json:"initial_cash"`
	Commission        float64     `json:"commission"`
	Conditions        []Condition `json:"conditions"`
	Exits             []Condition `json:"exits"`
	FixedCashPerTrade float64     `json:"fixed_cash_per_trade"`
}

// DefaultParameters mirrors the defaults the dashboard starts with.
func DefaultParameters() StrategyParameters {
	return StrategyParameters{
		Ticker:      "AAPL",
		StartDate:   "2019-01-01",
		EndDate:     "2023-12-31",
		InitialCash: 10000,
		Commission:  0.002,
		Conditions: []Condition{
			{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50"},
		},
		Exits: []Condition{
			{Indicator: IndicatorSMA, Period: 20, Comparison: CompareLess, Reference: "SMA_50"},
		},
	}
}

// Clone returns a deep copy, so callers can hand out parameters without
// sharing condition slices.
func (p StrategyParameters) Clone() StrategyParameters {
	out := p
	out.Conditions = append([]Condition(nil), p.Conditions...)
	out.Exits = append([]Condition(nil), p.Exits...)
	return out
}

// PriceBar is one daily OHLC candle on the chart's time axis.
type PriceBar struct {
	Time  Date    `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// IndicatorSample is one point of an indicator series. Series may be sparse
// relative to the price series because of indicator warm-up.
type IndicatorSample struct {
	Time  Date    `json:"time"`
	Value float64 `json:"value"`
}

// TradeRecord is one completed (or still open) trade reported by the
// backtesting service. Field casing follows the service payload. ExitTime
// is empty for a position still open at the end of the test window.
type TradeRecord struct {
	EntryTime  string  `json:"EntryTime"`
	ExitTime   string  `json:"ExitTime,omitempty"`
	EntryPrice float64 `json:"EntryPrice"`
	ExitPrice  float64 `json:"ExitPrice"`
	Size       int     `json:"Size"`
	PnL        float64 `json:"PnL"`
	ReturnPct  float64 `json:"ReturnPct"`
}

// BacktestResult is the service's response to a backtest run. It is replaced
// wholesale on each successful run, never partially mutated.
type BacktestResult struct {
	TotalReturn  Stat          `json:"total_return"`
	SharpeRatio  Stat          `json:"sharpe_ratio"`
	ProfitFactor Stat          `json:"profit_factor"`
	MaxDrawdown  Stat          `json:"max_drawdown"`
	WinRate      Stat          `json:"win_rate"`
	TradeHistory []TradeRecord `json:"trade_history"`
}

// APIResponse is the standard REST API response envelope.
type APIResponse struct {
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WSMessage represents a WebSocket message sent to dashboard clients.
type WSMessage struct {
	Type      string    `json:"type"` // chart, status, heartbeat
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
