package chart

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chartsync/internal/model"
)

// Marker positions and shapes follow the lightweight-charts vocabulary the
// dashboard renders with.
const (
	PositionAboveBar = "aboveBar"
	PositionBelowBar = "belowBar"
	ShapeArrowUp     = "arrowUp"
	ShapeArrowDown   = "arrowDown"

	colorBuy  = "#26a69a"
	colorSell = "#ef5350"
)

// Marker is one trade annotation on the chart.
type Marker struct {
	Time     model.Date `json:"time"`
	Position string     `json:"position"`
	Color    string     `json:"color"`
	Shape    string     `json:"shape"`
	Text     string     `json:"text"`
}

func priceLabel(prefix string, price float64) string {
	return prefix + " @ " + decimal.NewFromFloat(price).StringFixed(2)
}

// ToMarkers derives the marker overlay from a trade history. Each closed
// trade yields an entry marker below the bar and an exit marker above it,
// in trade order; an open trade yields only the entry marker. Trades whose
// entry timestamp does not parse are dropped, as is the exit marker of a
// trade with an unparseable exit timestamp; the render continues with the
// remaining trades.
func ToMarkers(trades []model.TradeRecord, logger *zap.Logger) []Marker {
	if logger == nil {
		logger = zap.NewNop()
	}
	markers := make([]Marker, 0, 2*len(trades))
	for i, trade := range trades {
		entry, err := model.ParseDate(trade.EntryTime)
		if err != nil {
			logger.Warn("trade_entry_unparseable",
				zap.Int("trade", i),
				zap.String("entry_time", trade.EntryTime),
			)
			continue
		}
		markers = append(markers, Marker{
			Time:     entry,
			Position: PositionBelowBar,
			Color:    colorBuy,
			Shape:    ShapeArrowUp,
			Text:     priceLabel("Buy", trade.EntryPrice),
		})

		if trade.ExitTime == "" {
			continue // still open at the end of the test window
		}
		exit, err := model.ParseDate(trade.ExitTime)
		if err != nil {
			logger.Warn("trade_exit_unparseable",
				zap.Int("trade", i),
				zap.String("exit_time", trade.ExitTime),
			)
			continue
		}
		markers = append(markers, Marker{
			Time:     exit,
			Position: PositionAboveBar,
			Color:    colorSell,
			Shape:    ShapeArrowDown,
			Text:     priceLabel("Sell", trade.ExitPrice),
		})
	}
	return markers
}
