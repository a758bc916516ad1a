package backtest

import (
	"math"
	"sort"

	"chartsync/internal/model"
)

// Raw service payloads are inconsistent about date casing ("Date" vs
// "date") and shape (plain date vs full ISO date-time). encoding/json
// matches keys case-insensitively, and model.ParseDate truncates
// date-times, so both inconsistencies are absorbed here and nowhere else.

type rawBar struct {
	Date  string   `json:"date"`
	Open  *float64 `json:"open"`
	High  *float64 `json:"high"`
	Low   *float64 `json:"low"`
	Close *float64 `json:"close"`
}

type rawSample struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// normalizeBars coerces raw price rows onto the daily UTC time axis,
// dropping malformed rows and duplicate dates. Returns the bars in strictly
// increasing time order plus the number of rows dropped.
func normalizeBars(raw []rawBar) ([]model.PriceBar, int) {
	dropped := 0
	out := make([]model.PriceBar, 0, len(raw))
	for _, r := range raw {
		date, err := model.ParseDate(r.Date)
		if err != nil || !finite(r.Open) || !finite(r.High) || !finite(r.Low) || !finite(r.Close) {
			dropped++
			continue
		}
		out = append(out, model.PriceBar{
			Time:  date,
			Open:  *r.Open,
			High:  *r.High,
			Low:   *r.Low,
			Close: *r.Close,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time.Time)
	})
	// One bar per trading day: keep the first occurrence.
	deduped := out[:0]
	for _, bar := range out {
		if len(deduped) > 0 && deduped[len(deduped)-1].Time.Equal(bar.Time.Time) {
			dropped++
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped, dropped
}

// normalizeSamples coerces raw indicator rows, dropping those whose date
// fails to parse or whose value is absent or non-finite (warm-up rows).
func normalizeSamples(raw []rawSample) ([]model.IndicatorSample, int) {
	dropped := 0
	out := make([]model.IndicatorSample, 0, len(raw))
	for _, r := range raw {
		date, err := model.ParseDate(r.Date)
		if err != nil || !finite(r.Value) {
			dropped++
			continue
		}
		out = append(out, model.IndicatorSample{Time: date, Value: *r.Value})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time.Time)
	})
	return out, dropped
}
