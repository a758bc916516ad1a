package model

import (
	"reflect"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestConditionValidate(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
		ok   bool
	}{
		{"ma with reference", Condition{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50"}, true},
		{"oscillator with value", Condition{Indicator: IndicatorRSI, Period: 14, Comparison: CompareLess, Value: floatPtr(30)}, true},
		{"zero period", Condition{Indicator: IndicatorSMA, Period: 0, Comparison: CompareGreater, Reference: "SMA_50"}, false},
		{"negative period", Condition{Indicator: IndicatorRSI, Period: -5, Comparison: CompareLess, Value: floatPtr(30)}, false},
		{"bad comparison", Condition{Indicator: IndicatorRSI, Period: 14, Comparison: ">=", Value: floatPtr(30)}, false},
		{"ma missing reference", Condition{Indicator: IndicatorEMA, Period: 9, Comparison: CompareGreater}, false},
		{"oscillator missing value", Condition{Indicator: IndicatorCCI, Period: 20, Comparison: CompareGreater}, false},
		{"oscillator zero threshold is set", Condition{Indicator: IndicatorCCI, Period: 20, Comparison: CompareGreater, Value: floatPtr(0)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cond.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if _, isInvalid := err.(*InvalidConditionError); !isInvalid {
					t.Fatalf("expected *InvalidConditionError, got %T", err)
				}
			}
		})
	}
}

func TestCanonicalDropsTransientOperand(t *testing.T) {
	ma := Condition{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50", Value: floatPtr(12)}
	if got := ma.Canonical(); got.Value != nil || got.Reference != "SMA_50" {
		t.Fatalf("canonical MA condition = %+v", got)
	}
	osc := Condition{Indicator: IndicatorRSI, Period: 14, Comparison: CompareLess, Reference: "SMA_50", Value: floatPtr(30)}
	if got := osc.Canonical(); got.Reference != "" || got.Value == nil || *got.Value != 30 {
		t.Fatalf("canonical oscillator condition = %+v", got)
	}
}

func TestAddRemoveInverse(t *testing.T) {
	orig := []Condition{
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50"},
		{Indicator: IndicatorRSI, Period: 14, Comparison: CompareLess, Value: floatPtr(30)},
	}
	added := AddCondition(orig, Condition{Indicator: IndicatorEMA, Period: 9, Comparison: CompareGreater, Reference: "EMA_21"})
	restored := RemoveCondition(added, len(added)-1)
	if !reflect.DeepEqual(restored, orig) {
		t.Fatalf("add then remove did not restore sequence: %+v", restored)
	}
}

func TestRemoveOutOfRangeIsNoop(t *testing.T) {
	orig := []Condition{{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50"}}
	for _, i := range []int{-1, 1, 99} {
		if got := RemoveCondition(orig, i); !reflect.DeepEqual(got, orig) {
			t.Fatalf("remove at %d changed sequence: %+v", i, got)
		}
	}
	if got := RemoveCondition(nil, 0); len(got) != 0 {
		t.Fatalf("remove on empty sequence = %+v", got)
	}
}

func TestUpdatePreservesOtherEntries(t *testing.T) {
	orig := []Condition{
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50"},
		{Indicator: IndicatorRSI, Period: 14, Comparison: CompareLess, Value: floatPtr(30)},
	}
	got := UpdateCondition(orig, 1, Condition{Indicator: IndicatorCCI, Period: 20, Comparison: CompareGreater, Value: floatPtr(100)})
	if got[0] != orig[0] {
		t.Fatalf("entry 0 changed: %+v", got[0])
	}
	if got[1].Indicator != IndicatorCCI {
		t.Fatalf("entry 1 not updated: %+v", got[1])
	}
	if orig[1].Indicator != IndicatorRSI {
		t.Fatal("update mutated the original slice")
	}
	if same := UpdateCondition(orig, 5, got[1]); !reflect.DeepEqual(same, orig) {
		t.Fatal("out-of-range update changed sequence")
	}
}

func TestDedupPairs(t *testing.T) {
	conds := []Condition{
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "SMA_50"},
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareLess, Reference: "SMA_50"},
		{Indicator: IndicatorRSI, Period: 14, Comparison: CompareLess, Value: floatPtr(30)},
	}
	got := DedupPairs(conds)
	want := []IndicatorPeriod{
		{IndicatorSMA, 20},
		{IndicatorSMA, 50}, // referenced series is charted too
		{IndicatorRSI, 14},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupPairs = %+v, want %+v", got, want)
	}
}

func TestDedupPairsRepeatedPair(t *testing.T) {
	v := 30.0
	conds := []Condition{
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Value: &v},
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareLess, Value: &v},
		{Indicator: IndicatorRSI, Period: 14, Comparison: CompareLess, Value: &v},
	}
	got := DedupPairs(conds)
	want := []IndicatorPeriod{
		{IndicatorSMA, 20},
		{IndicatorRSI, 14},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupPairs = %+v, want %+v", got, want)
	}
}

func TestDedupPairsIgnoresNonSeriesReference(t *testing.T) {
	conds := []Condition{
		{Indicator: IndicatorSMA, Period: 20, Comparison: CompareGreater, Reference: "Close"},
	}
	got := DedupPairs(conds)
	if len(got) != 1 || got[0] != (IndicatorPeriod{IndicatorSMA, 20}) {
		t.Fatalf("DedupPairs = %+v", got)
	}
}

func TestParseSeriesID(t *testing.T) {
	ip, err := ParseSeriesID("SMA_50")
	if err != nil || ip.Indicator != IndicatorSMA || ip.Period != 50 {
		t.Fatalf("ParseSeriesID(SMA_50) = %+v, %v", ip, err)
	}
	if ip.SeriesID() != "SMA_50" {
		t.Fatalf("SeriesID round trip = %q", ip.SeriesID())
	}
	for _, bad := range []string{"Close", "SMA_", "_50", "SMA_x", "SMA_-3"} {
		if _, err := ParseSeriesID(bad); err == nil {
			t.Fatalf("ParseSeriesID(%q) should fail", bad)
		}
	}
}
