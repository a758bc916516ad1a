package chart

import "chartsync/internal/model"

// Stats is the statistics panel data, pre-rendered as display strings. The
// service owns the numbers; anything it could not compute shows as "N/A".
type Stats struct {
	TotalTrades  int    `json:"totalTrades"`
	TotalReturn  string `json:"totalReturn"`
	WinRate      string `json:"winRate"`
	ProfitFactor string `json:"profitFactor"`
	SharpeRatio  string `json:"sharpeRatio"`
	MaxDrawdown  string `json:"maxDrawdown"`
}

// StatsFrom renders a backtest result into panel strings. Returns nil when
// no result is available yet.
func StatsFrom(result *model.BacktestResult) *Stats {
	if result == nil {
		return nil
	}
	return &Stats{
		TotalTrades:  len(result.TradeHistory),
		TotalReturn:  result.TotalReturn.Display(),
		WinRate:      result.WinRate.Display(),
		ProfitFactor: result.ProfitFactor.Display(),
		SharpeRatio:  result.SharpeRatio.Display(),
		MaxDrawdown:  result.MaxDrawdown.Display(),
	}
}
