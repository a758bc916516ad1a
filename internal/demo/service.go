// Package demo embeds a stub backtesting service so the daemon can run
// without a real one. It serves the same wire protocol: price rows,
// indicator rows with null warm-up values, and backtest results over
// deterministic synthetic data.
package demo

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chartsync/internal/model"
)

// Service is the stub backtesting HTTP service.
type Service struct {
	address string
	logger  *zap.Logger
	router  chi.Router
	srv     *http.Server
}

// NewService creates a stub service listening on address.
func NewService(address string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{address: address, logger: logger}

	r := chi.NewRouter()
	r.Get("/api/get-price-data", s.handlePriceData)
	r.Get("/api/get-indicator-data", s.handleIndicatorData)
	r.Post("/api/run-backtest", s.handleRunBacktest)
	s.router = r
	return s
}

// Router returns the chi router, mainly for tests.
func (s *Service) Router() chi.Router {
	return s.router
}

// Run starts the HTTP service and shuts it down when ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("demo_service_started", zap.String("address", s.address))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

type priceRow struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type indicatorRow struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func parseRange(r *http.Request) (ticker string, start, end time.Time, err error) {
	q := r.URL.Query()
	ticker = q.Get("ticker")
	if ticker == "" {
		return "", time.Time{}, time.Time{}, errBadRequest("ticker is required")
	}
	startDate, err := model.ParseDate(q.Get("start_date"))
	if err != nil {
		return "", time.Time{}, time.Time{}, errBadRequest("invalid start_date")
	}
	endDate, err := model.ParseDate(q.Get("end_date"))
	if err != nil {
		return "", time.Time{}, time.Time{}, errBadRequest("invalid end_date")
	}
	if endDate.Before(startDate.Time) {
		return "", time.Time{}, time.Time{}, errBadRequest("start_date must not be after end_date")
	}
	return ticker, startDate.Time, endDate.Time, nil
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

func (s *Service) handlePriceData(w http.ResponseWriter, r *http.Request) {
	ticker, start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bars := generateBars(ticker, start, end)
	rows := make([]priceRow, len(bars))
	for i, b := range bars {
		rows[i] = priceRow{
			Date:  b.Date.Format("2006-01-02"),
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
		}
	}
	s.logger.Debug("demo_price_data", zap.String("ticker", ticker), zap.Int("rows", len(rows)))
	writeData(w, rows)
}

func (s *Service) handleIndicatorData(w http.ResponseWriter, r *http.Request) {
	ticker, start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	ind := model.Indicator(q.Get("indicator"))
	period, err := strconv.Atoi(q.Get("period"))
	if err != nil || period <= 0 {
		writeError(w, http.StatusBadRequest, "period must be a positive integer")
		return
	}

	bars := generateBars(ticker, start, end)
	values, ok := indicatorSeries(ind, period, bars)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown indicator: "+string(ind))
		return
	}

	rows := make([]indicatorRow, len(bars))
	for i, b := range bars {
		rows[i] = indicatorRow{Date: b.Date.Format("2006-01-02")}
		if !math.IsNaN(values[i]) {
			v := math.Round(values[i]*10000) / 10000
			rows[i].Value = &v
		}
	}
	writeData(w, rows)
}

func (s *Service) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var params model.StrategyParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	startDate, err := model.ParseDate(params.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}
	endDate, err := model.ParseDate(params.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	bars := generateBars(params.Ticker, startDate.Time, endDate.Time)
	result := simulateBacktest(params, bars)
	s.logger.Info("demo_backtest",
		zap.String("ticker", params.Ticker),
		zap.Int("trades", len(result.TradeHistory)),
	)
	writeData(w, result)
}
