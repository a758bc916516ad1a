// Package engine orchestrates chart synchronization: it turns one state
// snapshot into one fully populated rendering surface by fetching the price
// series, the deduplicated indicator series, and the trade markers, in that
// order. Each run is one generation; a newer generation supersedes and
// cancels any cycle still in flight.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chartsync/internal/chart"
	"chartsync/internal/model"

	"go.uber.org/zap"
)

// Fetcher is the read side of the backtesting service.
type Fetcher interface {
	PriceData(ctx context.Context, ticker, start, end string) ([]model.PriceBar, error)
	IndicatorData(ctx context.Context, ticker string, ind model.Indicator, period int, start, end string) ([]model.IndicatorSample, error)
	RunBacktest(ctx context.Context, params model.StrategyParameters) (*model.BacktestResult, error)
}

// Error classes surfaced on the status payload, so the dashboard can tell a
// local input problem from a remote failure.
const (
	ErrClassValidation = "validation"
	ErrClassFetch      = "fetch"
)

// Engine drives sync cycles against the state store and owns the chart
// manager. At most one cycle's results are ever applied per generation.
type Engine struct {
	store   *Store
	fetcher Fetcher
	charts  *chart.Manager
	logger  *zap.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	lastErr   string
	errClass  string
	started   time.Time
	syncCount int64
	lastSync  time.Time
	onUpdate  func()
}

// Status is the engine state reported to API consumers.
type Status struct {
	Time       time.Time   `json:"time"`
	StartedAt  time.Time   `json:"startedAt"`
	Generation uint64      `json:"generation"`
	Error      string      `json:"error,omitempty"`
	ErrorClass string      `json:"errorClass,omitempty"`
	Theme      model.Theme `json:"theme"`
	HasChart   bool        `json:"hasChart"`
	HasResult  bool        `json:"hasResult"`
	SyncCount  int64       `json:"syncCount"`
	LastSyncAt time.Time   `json:"lastSyncAt"`
}

// New creates an engine over the given store and service client.
func New(store *Store, fetcher Fetcher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		fetcher: fetcher,
		charts:  chart.NewManager(),
		logger:  logger,
		started: time.Now(),
	}
}

// SetOnUpdate registers a callback invoked after every cycle settles,
// successfully or not. Used by the API layer to push fresh state to
// dashboard clients.
func (e *Engine) SetOnUpdate(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

// Charts exposes the chart manager for read-only snapshots.
func (e *Engine) Charts() *chart.Manager {
	return e.charts
}

// ChartSnapshot returns the current chart contents, if one is rendered.
func (e *Engine) ChartSnapshot() (chart.Snapshot, bool) {
	return e.charts.Snapshot()
}

// Status reports the engine state.
func (e *Engine) Status() Status {
	_, hasChart := e.charts.Snapshot()
	snap := e.store.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Time:       time.Now(),
		StartedAt:  e.started,
		Generation: e.gen,
		Error:      e.lastErr,
		ErrorClass: e.errClass,
		Theme:      snap.Theme,
		HasChart:   hasChart,
		HasResult:  snap.Result != nil,
		SyncCount:  e.syncCount,
		LastSyncAt: e.lastSync,
	}
}

// begin opens a new generation, cancelling any cycle still in flight.
func (e *Engine) begin(parent context.Context) (context.Context, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel
	e.gen++
	return ctx, e.gen
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.gen
}

// install makes surface live if gen is still current. A stale cycle's
// surface is destroyed instead of installed.
func (e *Engine) install(gen uint64, surface *chart.Surface) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return false
	}
	e.charts.Install(surface)
	return true
}

func (e *Engine) teardownIfCurrent(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.gen {
		e.charts.Teardown()
	}
}

// setError records a failure message unless the cycle was superseded.
func (e *Engine) setError(gen uint64, class, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.lastErr = msg
	e.errClass = class
}

func (e *Engine) clearError(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.lastErr = ""
	e.errClass = ""
}

func (e *Engine) setErrorNow(class, msg string) {
	e.mu.Lock()
	e.lastErr = msg
	e.errClass = class
	e.mu.Unlock()
}

// notify fires the update callback, if registered.
func (e *Engine) notify() {
	e.mu.Lock()
	fn := e.onUpdate
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Kick starts a sync cycle without waiting for it.
func (e *Engine) Kick(ctx context.Context) {
	go func() {
		_ = e.Sync(ctx)
	}()
}

// Sync runs one orchestration cycle: validate, tear down the previous
// surface, fetch the price series, fetch each deduplicated indicator
// series in order, then derive markers and stats from the stored result.
// The returned error is also surfaced on the status payload; a superseded
// cycle returns nil and leaves no trace.
func (e *Engine) Sync(parent context.Context) error {
	ctx, gen := e.begin(parent)
	snap := e.store.Snapshot()
	log := e.logger.With(
		zap.Uint64("generation", gen),
		zap.String("ticker", snap.Params.Ticker),
	)

	if err := snap.Params.ValidateChart(); err != nil {
		// Inputs changed to something unusable: the old chart still comes
		// down, and no network call is made.
		e.teardownIfCurrent(gen)
		e.setError(gen, ErrClassValidation, err.Error())
		log.Warn("sync_rejected", zap.String("reason", err.Error()))
		e.notify()
		return err
	}

	surface, err := chart.NewSurface(snap.Params.Ticker, snap.Params.StartDate, snap.Params.EndDate, snap.Theme, gen)
	if err != nil {
		e.setError(gen, ErrClassValidation, err.Error())
		e.notify()
		return err
	}
	if !e.install(gen, surface) {
		surface.Destroy()
		return nil
	}

	bars, err := e.fetcher.PriceData(ctx, snap.Params.Ticker, snap.Params.StartDate, snap.Params.EndDate)
	if err == nil && len(bars) == 0 {
		err = fmt.Errorf("no data for range %s to %s", snap.Params.StartDate, snap.Params.EndDate)
	}
	if err != nil {
		// A chart with no price series must not stay up.
		e.teardownIfCurrent(gen)
		e.setError(gen, ErrClassFetch, err.Error())
		log.Warn("price_fetch_failed", zap.Error(err))
		e.notify()
		return err
	}
	if err := surface.SetPrice(bars); err != nil {
		return nil // superseded mid-flight
	}

	for _, pair := range model.DedupPairs(snap.Params.Conditions) {
		samples, err := e.fetcher.IndicatorData(ctx, snap.Params.Ticker, pair.Indicator, pair.Period, snap.Params.StartDate, snap.Params.EndDate)
		if err != nil {
			// The price series already rendered stays up; remaining
			// indicator fetches are abandoned.
			e.setError(gen, ErrClassFetch, err.Error())
			log.Warn("indicator_fetch_failed",
				zap.String("series", pair.SeriesID()),
				zap.Error(err),
			)
			e.notify()
			return err
		}
		if err := surface.AddOverlay(pair, samples); err != nil {
			return nil
		}
	}

	if snap.Result != nil {
		if len(snap.Result.TradeHistory) > 0 {
			if err := surface.SetMarkers(chart.ToMarkers(snap.Result.TradeHistory, e.logger)); err != nil {
				return nil
			}
		}
		if err := surface.SetStats(chart.StatsFrom(snap.Result)); err != nil {
			return nil
		}
	}

	if !e.isCurrent(gen) {
		return nil
	}
	e.clearError(gen)
	e.mu.Lock()
	e.syncCount++
	e.lastSync = time.Now()
	e.mu.Unlock()

	log.Info("chart_synced",
		zap.Int("bars", len(bars)),
		zap.Int("overlays", len(model.DedupPairs(snap.Params.Conditions))),
		zap.Bool("has_result", snap.Result != nil),
	)
	e.notify()
	return nil
}

// RunBacktest validates the full strategy, submits it to the service,
// stores the result, and re-syncs the chart so markers and stats appear.
func (e *Engine) RunBacktest(ctx context.Context) (*model.BacktestResult, error) {
	params := e.store.Params()
	if err := params.Validate(); err != nil {
		e.setErrorNow(ErrClassValidation, err.Error())
		e.notify()
		return nil, err
	}

	result, err := e.fetcher.RunBacktest(ctx, params)
	if err != nil {
		e.setErrorNow(ErrClassFetch, err.Error())
		e.logger.Warn("backtest_failed",
			zap.String("ticker", params.Ticker),
			zap.Error(err),
		)
		e.notify()
		return nil, err
	}

	e.store.SetResult(result)
	e.logger.Info("backtest_complete",
		zap.String("ticker", params.Ticker),
		zap.Int("trades", len(result.TradeHistory)),
	)
	_ = e.Sync(ctx) // surfaced via the error channel if it fails
	return result, nil
}
