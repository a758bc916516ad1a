package engine

import (
	"sync"

	"chartsync/internal/model"
)

// Store is the thread-safe owner of the page-level state: strategy
// parameters, the latest backtest result, and the theme. Every reader gets
// a copy, so a sync cycle always works from one consistent snapshot.
type Store struct {
	mu     sync.RWMutex
	params model.StrategyParameters
	result *model.BacktestResult
	theme  model.Theme
}

// StateSnapshot is a point-in-time copy of the full application state.
type StateSnapshot struct {
	Params model.StrategyParameters `json:"params"`
	Result *model.BacktestResult    `json:"result,omitempty"`
	Theme  model.Theme              `json:"theme"`
}

// NewStore creates a store seeded with the dashboard defaults.
func NewStore() *Store {
	return &Store{
		params: model.DefaultParameters(),
		theme:  model.ThemeDark,
	}
}

func cloneResult(r *model.BacktestResult) *model.BacktestResult {
	if r == nil {
		return nil
	}
	out := *r
	out.TradeHistory = append([]model.TradeRecord(nil), r.TradeHistory...)
	return &out
}

// Params returns a deep copy of the current strategy parameters.
func (s *Store) Params() model.StrategyParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.Clone()
}

// SetParams replaces the strategy parameters wholesale.
func (s *Store) SetParams(p model.StrategyParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p.Clone()
}

// Result returns a copy of the latest backtest result, or nil.
func (s *Store) Result() *model.BacktestResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResult(s.result)
}

// SetResult replaces the backtest result wholesale.
func (s *Store) SetResult(r *model.BacktestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = cloneResult(r)
}

// Theme returns the current theme.
func (s *Store) Theme() model.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme switches the theme.
func (s *Store) SetTheme(t model.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
}

// Snapshot copies out the whole state in one lock acquisition.
func (s *Store) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateSnapshot{
		Params: s.params.Clone(),
		Result: cloneResult(s.result),
		Theme:  s.theme,
	}
}
