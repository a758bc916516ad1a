package backtest

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestNormalizeBarsDropsAndSorts(t *testing.T) {
	raw := []rawBar{
		{Date: "2019-01-03", Open: f(2), High: f(2), Low: f(2), Close: f(2)},
		{Date: "2019-01-02", Open: f(1), High: f(1), Low: f(1), Close: f(1)},
		{Date: "2019-01-02", Open: f(9), High: f(9), Low: f(9), Close: f(9)}, // duplicate day
		{Date: "nope", Open: f(1), High: f(1), Low: f(1), Close: f(1)},
		{Date: "2019-01-04", Open: nil, High: f(1), Low: f(1), Close: f(1)},
		{Date: "2019-01-05", Open: f(1), High: f(1), Low: f(1), Close: f(math.NaN())},
	}
	bars, dropped := normalizeBars(raw)
	if len(bars) != 2 {
		t.Fatalf("bars = %d", len(bars))
	}
	if dropped != 4 {
		t.Fatalf("dropped = %d", dropped)
	}
	if !bars[0].Time.Before(bars[1].Time.Time) {
		t.Fatalf("not strictly increasing: %s, %s", bars[0].Time, bars[1].Time)
	}
	if bars[0].Open != 1 {
		t.Fatalf("duplicate resolution should keep first occurrence, open = %v", bars[0].Open)
	}
}

func TestNormalizeSamplesTruncatesDatetimes(t *testing.T) {
	raw := []rawSample{
		{Date: "2019-06-03T15:30:00Z", Value: f(10)},
		{Date: "2019-06-04", Value: nil},
		{Date: "2019-06-05", Value: f(11)},
	}
	samples, dropped := normalizeSamples(raw)
	if len(samples) != 2 || dropped != 1 {
		t.Fatalf("samples = %d, dropped = %d", len(samples), dropped)
	}
	if samples[0].Time.String() != "2019-06-03" {
		t.Fatalf("datetime not truncated: %s", samples[0].Time)
	}
}
