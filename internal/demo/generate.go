package demo

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"chartsync/internal/model"
)

// bar is a synthetic daily OHLCV candle.
type bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// generateBars produces a deterministic daily random walk for the ticker
// over [start, end], weekdays only. The same ticker always yields the
// same series so repeated fetches chart identically.
func generateBars(ticker string, start, end time.Time) []bar {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	base := 20.0 + rng.Float64()*180.0
	bars := make([]bar, 0, 256)
	step := 0

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		step++

		drift := base * 0.0003
		wave := math.Sin(float64(step)/40.0) * base * 0.002
		noise := (rng.Float64() - 0.5) * base * 0.02
		close := base + drift + wave + noise
		if close < 1 {
			close = 1
		}

		open := base
		hi := math.Max(open, close) + rng.Float64()*base*0.008
		lo := math.Min(open, close) - rng.Float64()*base*0.008
		if lo < 0.5 {
			lo = 0.5
		}

		bars = append(bars, bar{
			Date:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Open:   round2(open),
			High:   round2(hi),
			Low:    round2(lo),
			Close:  round2(close),
			Volume: math.Round(1e6 + rng.Float64()*4e6),
		})
		base = close
	}
	return bars
}

// indicatorSeries computes the named indicator over the bars. Unknown
// indicators return (nil, false).
func indicatorSeries(ind model.Indicator, period int, bars []bar) ([]float64, bool) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	switch ind {
	case model.IndicatorSMA:
		return sma(closes, period), true
	case model.IndicatorEMA:
		return ema(closes, period), true
	case model.IndicatorRSI:
		return rsi(closes, period), true
	case model.IndicatorATR:
		return atr(bars, period), true
	case model.IndicatorCCI:
		return cci(bars, period), true
	case model.IndicatorCMF:
		return cmf(bars, period), true
	case model.IndicatorWilliamsR:
		return williamsR(bars, period), true
	}
	return nil, false
}

// simulateBacktest runs an SMA 20/50 crossover over the synthetic series
// and builds a result in the service's wire shape. The strategy in the
// request parameters only affects determinism through the ticker and range.
func simulateBacktest(params model.StrategyParameters, bars []bar) *model.BacktestResult {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := sma(closes, 20)
	slow := sma(closes, 50)

	cash := params.InitialCash
	if cash <= 0 {
		cash = 10000
	}
	initialCash := cash
	perTrade := params.FixedCashPerTrade
	if perTrade <= 0 {
		perTrade = cash
	}

	var trades []model.TradeRecord
	equity := []float64{cash}
	entryIdx := -1

	for i := 1; i < len(bars); i++ {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) || math.IsNaN(fast[i-1]) || math.IsNaN(slow[i-1]) {
			continue
		}
		crossUp := fast[i-1] <= slow[i-1] && fast[i] > slow[i]
		crossDown := fast[i-1] >= slow[i-1] && fast[i] < slow[i]

		if entryIdx < 0 && crossUp {
			entryIdx = i
			continue
		}
		if entryIdx >= 0 && crossDown {
			trades = append(trades, closeTrade(bars, entryIdx, i, perTrade, params.Commission))
			cash += trades[len(trades)-1].PnL
			equity = append(equity, cash)
			entryIdx = -1
		}
	}
	if entryIdx >= 0 {
		// open position at end of range
		entry := bars[entryIdx]
		trades = append(trades, model.TradeRecord{
			EntryTime:  entry.Date.Format("2006-01-02"),
			EntryPrice: entry.Close,
			Size:       tradeSize(perTrade, entry.Close),
		})
	}

	return &model.BacktestResult{
		TotalReturn:  model.StatOf(round2((cash - initialCash) / initialCash * 100)),
		SharpeRatio:  sharpe(equity),
		ProfitFactor: profitFactor(trades),
		MaxDrawdown:  maxDrawdown(equity),
		WinRate:      winRate(trades),
		TradeHistory: trades,
	}
}

func tradeSize(perTrade, price float64) int {
	size := int(perTrade / price)
	if size < 1 {
		size = 1
	}
	return size
}

func closeTrade(bars []bar, entryIdx, exitIdx int, perTrade, commission float64) model.TradeRecord {
	entry, exit := bars[entryIdx], bars[exitIdx]
	size := float64(tradeSize(perTrade, entry.Close))
	gross := (exit.Close - entry.Close) * size
	fees := (entry.Close + exit.Close) * size * commission
	pnl := round2(gross - fees)
	return model.TradeRecord{
		EntryTime:  entry.Date.Format("2006-01-02"),
		ExitTime:   exit.Date.Format("2006-01-02"),
		EntryPrice: entry.Close,
		ExitPrice:  exit.Close,
		Size:       int(size),
		PnL:        pnl,
		ReturnPct:  round2(pnl / (entry.Close * size) * 100),
	}
}

func winRate(trades []model.TradeRecord) model.Stat {
	closed, wins := 0, 0
	for _, t := range trades {
		if t.ExitTime == "" {
			continue
		}
		closed++
		if t.PnL > 0 {
			wins++
		}
	}
	if closed == 0 {
		return model.Stat{}
	}
	return model.StatOf(round2(float64(wins) / float64(closed) * 100))
}

func profitFactor(trades []model.TradeRecord) model.Stat {
	var profit, loss float64
	for _, t := range trades {
		if t.ExitTime == "" {
			continue
		}
		if t.PnL > 0 {
			profit += t.PnL
		} else {
			loss -= t.PnL
		}
	}
	if loss == 0 {
		return model.Stat{}
	}
	return model.StatOf(round2(profit / loss))
}

func maxDrawdown(equity []float64) model.Stat {
	if len(equity) < 2 {
		return model.Stat{}
	}
	peak := equity[0]
	var worst float64
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (e - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return model.StatOf(round2(worst))
}

func sharpe(equity []float64) model.Stat {
	if len(equity) < 3 {
		return model.Stat{}
	}
	rets := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		rets = append(rets, equity[i]/equity[i-1]-1)
	}
	if len(rets) < 2 {
		return model.Stat{}
	}
	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var variance float64
	for _, r := range rets {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(rets) - 1)
	if variance == 0 {
		return model.Stat{}
	}
	return model.StatOf(round2(mean / math.Sqrt(variance) * math.Sqrt(252)))
}
