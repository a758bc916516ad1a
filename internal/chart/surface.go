// Package chart owns the rendering surface: a stateful container holding
// one price series, indicator overlays, and trade markers on a single daily
// time axis. A surface is built for one set of inputs and torn down, never
// reconfigured, when any input changes.
package chart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"chartsync/internal/model"
)

// State is the surface lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateDestroyed:
		return "DESTROYED"
	default:
		return "UNINITIALIZED"
	}
}

// ErrDestroyed is returned when data is written to a torn-down surface.
// The sync engine relies on this to drop results from a superseded cycle.
var ErrDestroyed = errors.New("chart surface destroyed")

// Overlay is one indicator series drawn alongside price.
type Overlay struct {
	ID        string                  `json:"id"`
	Indicator model.Indicator         `json:"indicator"`
	Period    int                     `json:"period"`
	Color     string                  `json:"color"`
	Points    []model.IndicatorSample `json:"points"`
}

// Snapshot is a point-in-time copy of the surface contents, the shape
// pushed to dashboard clients.
type Snapshot struct {
	Ticker     string           `json:"ticker"`
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	Theme      model.Theme      `json:"theme"`
	Price      []model.PriceBar `json:"price"`
	Overlays   []Overlay        `json:"overlays"`
	Markers    []Marker         `json:"markers"`
	Stats      *Stats           `json:"stats,omitempty"`
	Generation uint64           `json:"generation"`
}

// Surface is a single rendering surface instance. It starts Ready with an
// empty price series registered and accepts writes until destroyed.
type Surface struct {
	mu         sync.Mutex
	state      State
	ticker     string
	start, end string
	theme      model.Theme
	generation uint64

	price    []model.PriceBar
	overlays []Overlay
	markers  []Marker
	stats    *Stats
}

// NewSurface constructs a Ready surface. All three chart inputs are
// required; construction with any of them missing fails without allocating
// a surface.
func NewSurface(ticker, start, end string, theme model.Theme, generation uint64) (*Surface, error) {
	if strings.TrimSpace(ticker) == "" || strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, fmt.Errorf("chart surface requires ticker, start date, and end date")
	}
	return &Surface{
		state:      StateReady,
		ticker:     ticker,
		start:      start,
		end:        end,
		theme:      theme,
		generation: generation,
		price:      []model.PriceBar{},
	}, nil
}

// State returns the lifecycle state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the orchestration cycle this surface belongs to.
func (s *Surface) Generation() uint64 {
	return s.generation
}

// SetPrice replaces the price series wholesale.
func (s *Surface) SetPrice(bars []model.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrDestroyed
	}
	s.price = append([]model.PriceBar(nil), bars...)
	return nil
}

// AddOverlay appends one indicator overlay. Overlay order is the engine's
// deterministic dedup order, which keeps color and z-order stable.
func (s *Surface) AddOverlay(ip model.IndicatorPeriod, points []model.IndicatorSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrDestroyed
	}
	s.overlays = append(s.overlays, Overlay{
		ID:        ip.SeriesID(),
		Indicator: ip.Indicator,
		Period:    ip.Period,
		Color:     OverlayColor(ip.Indicator),
		Points:    append([]model.IndicatorSample(nil), points...),
	})
	return nil
}

// SetMarkers replaces the marker overlay wholesale.
func (s *Surface) SetMarkers(markers []Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrDestroyed
	}
	s.markers = append([]Marker(nil), markers...)
	return nil
}

// SetStats attaches the statistics panel data.
func (s *Surface) SetStats(stats *Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrDestroyed
	}
	s.stats = stats
	return nil
}

// Destroy releases the surface. Safe to call any number of times and at any
// point, including after a partially failed construction cycle.
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed {
		return
	}
	s.state = StateDestroyed
	s.price = nil
	s.overlays = nil
	s.markers = nil
	s.stats = nil
}

// Snapshot copies out the surface contents.
func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Ticker:     s.ticker,
		StartDate:  s.start,
		EndDate:    s.end,
		Theme:      s.theme,
		Price:      append([]model.PriceBar(nil), s.price...),
		Overlays:   append([]Overlay(nil), s.overlays...),
		Markers:    append([]Marker(nil), s.markers...),
		Stats:      s.stats,
		Generation: s.generation,
	}
}

// Manager owns at most one live surface. Swapping in a new surface destroys
// the previous one exactly once; a stale instance can never receive data
// afterwards because its writes fail with ErrDestroyed.
type Manager struct {
	mu      sync.Mutex
	current *Surface
}

// NewManager creates a manager with no live surface.
func NewManager() *Manager {
	return &Manager{}
}

// Install makes next the live surface, tearing down the previous one.
func (m *Manager) Install(next *Surface) {
	m.mu.Lock()
	prev := m.current
	m.current = next
	m.mu.Unlock()
	if prev != nil {
		prev.Destroy()
	}
}

// Teardown destroys the live surface, if any, leaving none installed.
func (m *Manager) Teardown() {
	m.Install(nil)
}

// Current returns the live surface, or nil.
func (m *Manager) Current() *Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Snapshot copies the live surface contents; ok is false when no surface is
// installed.
func (m *Manager) Snapshot() (Snapshot, bool) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()
	if cur == nil {
		return Snapshot{}, false
	}
	return cur.Snapshot(), true
}
