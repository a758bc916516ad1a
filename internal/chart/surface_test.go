package chart

import (
	"errors"
	"testing"

	"chartsync/internal/model"
)

func newReady(t *testing.T) *Surface {
	t.Helper()
	s, err := NewSurface("AAPL", "2019-01-01", "2023-12-31", model.ThemeDark, 1)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewSurfaceRequiresInputs(t *testing.T) {
	cases := [][3]string{
		{"", "2019-01-01", "2023-12-31"},
		{"AAPL", "", "2023-12-31"},
		{"AAPL", "2019-01-01", ""},
		{"  ", "2019-01-01", "2023-12-31"},
	}
	for _, c := range cases {
		if _, err := NewSurface(c[0], c[1], c[2], model.ThemeDark, 1); err == nil {
			t.Fatalf("NewSurface(%q, %q, %q) should fail", c[0], c[1], c[2])
		}
	}
	s := newReady(t)
	if s.State() != StateReady {
		t.Fatalf("state = %s", s.State())
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	s := newReady(t)
	s.Destroy()
	s.Destroy() // must not panic and must stay destroyed
	if s.State() != StateDestroyed {
		t.Fatalf("state = %s", s.State())
	}
}

func TestDestroyedSurfaceRejectsWrites(t *testing.T) {
	s := newReady(t)
	s.Destroy()

	if err := s.SetPrice([]model.PriceBar{{}}); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("SetPrice = %v", err)
	}
	if err := s.AddOverlay(model.IndicatorPeriod{Indicator: model.IndicatorSMA, Period: 20}, nil); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("AddOverlay = %v", err)
	}
	if err := s.SetMarkers(nil); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("SetMarkers = %v", err)
	}
	if err := s.SetStats(&Stats{}); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("SetStats = %v", err)
	}
}

func TestManagerSwapDestroysPrevious(t *testing.T) {
	m := NewManager()
	first := newReady(t)
	m.Install(first)

	second := newReady(t)
	m.Install(second)

	if first.State() != StateDestroyed {
		t.Fatal("previous surface not destroyed on swap")
	}
	if second.State() != StateReady {
		t.Fatal("new surface should be live")
	}
	if m.Current() != second {
		t.Fatal("manager should hold the new surface")
	}

	m.Teardown()
	if second.State() != StateDestroyed {
		t.Fatal("teardown should destroy the live surface")
	}
	if _, ok := m.Snapshot(); ok {
		t.Fatal("snapshot should report no surface after teardown")
	}
}

func TestSnapshotCopiesContents(t *testing.T) {
	s := newReady(t)
	bars := []model.PriceBar{{Time: model.NewDate(2019, 1, 2), Close: 35.4}}
	if err := s.SetPrice(bars); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOverlay(model.IndicatorPeriod{Indicator: model.IndicatorSMA, Period: 20},
		[]model.IndicatorSample{{Time: model.NewDate(2019, 1, 2), Value: 35.1}}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if len(snap.Price) != 1 || len(snap.Overlays) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Overlays[0].ID != "SMA_20" {
		t.Fatalf("overlay id = %s", snap.Overlays[0].ID)
	}
	if snap.Overlays[0].Color != OverlayColor(model.IndicatorSMA) {
		t.Fatalf("overlay color = %s", snap.Overlays[0].Color)
	}

	snap.Price[0].Close = 0
	if got := s.Snapshot().Price[0].Close; got != 35.4 {
		t.Fatalf("snapshot aliases surface data: %v", got)
	}
}

func TestOverlayColorFallback(t *testing.T) {
	if OverlayColor(model.IndicatorSMA) == "" {
		t.Fatal("SMA must have a palette color")
	}
	if got := OverlayColor(model.Indicator("OBV")); got != overlayFallbackColor {
		t.Fatalf("fallback color = %s", got)
	}
	if OverlayColor(model.IndicatorSMA) == OverlayColor(model.IndicatorEMA) {
		t.Fatal("palette colors must be distinguishable")
	}
}
