// Package api exposes the chart, parameter, and backtest surface over
// HTTP REST and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"chartsync/internal/chart"
	"chartsync/internal/engine"
	"chartsync/internal/model"
)

// Engine is the operational surface the API needs from the sync engine.
type Engine interface {
	Status() engine.Status
	ChartSnapshot() (chart.Snapshot, bool)
	Kick(ctx context.Context)
	RunBacktest(ctx context.Context) (*model.BacktestResult, error)
}

// Server is the REST API + WebSocket server.
type Server struct {
	engine  Engine
	store   *engine.Store
	hub     *Hub
	logger  *zap.Logger
	router  chi.Router
	srv     *http.Server
	address string
}

// NewServer creates an API server.
func NewServer(address string, eng Engine, store *engine.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  eng,
		store:   store,
		hub:     NewHub(logger),
		logger:  logger,
		address: address,
	}
	s.router = s.buildRouter()
	return s
}

// HubRef returns the WebSocket hub for broadcasting.
func (s *Server) HubRef() *Hub {
	return s.hub
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/chart", s.handleChart)
	r.Get("/api/params", s.handleGetParams)
	r.Put("/api/params", s.handlePutParams)
	r.Post("/api/theme", s.handleTheme)
	r.Post("/api/backtest", s.handleBacktest)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Run starts the HTTP server and the WebSocket hub, and shuts both down
// when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	s.srv = &http.Server{
		Addr:         s.address,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_server_started", zap.String("address", s.address))
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

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      map[string]string{"status": "ok"},
		Timestamp: time.Now(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      s.engine.Status(),
		Timestamp: time.Now(),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.engine.ChartSnapshot()
	if !ok {
		writeJSON(w, http.StatusNotFound, model.APIResponse{
			Error:     "no chart rendered",
			Timestamp: time.Now(),
		})
		return
	}
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      snap,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleGetParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      s.store.Params(),
		Timestamp: time.Now(),
	})
}

// handlePutParams accepts a full parameter set and kicks off a chart
// resync. Validation happens inside the sync cycle so its outcome lands
// on the status error channel, same as every other input change.
func (s *Server) handlePutParams(w http.ResponseWriter, r *http.Request) {
	var params model.StrategyParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	s.store.SetParams(params)
	s.engine.Kick(context.Background())

	s.logger.Info("api_params_updated",
		zap.String("ticker", params.Ticker),
		zap.Int("conditions", len(params.Conditions)),
		zap.Int("exits", len(params.Exits)),
	)
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      s.store.Params(),
		Timestamp: time.Now(),
	})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme model.Theme `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	if body.Theme != model.ThemeDark && body.Theme != model.ThemeLight {
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Error:     "theme must be \"dark\" or \"light\"",
			Timestamp: time.Now(),
		})
		return
	}

	s.store.SetTheme(body.Theme)
	s.engine.Kick(context.Background())

	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      map[string]model.Theme{"theme": body.Theme},
		Timestamp: time.Now(),
	})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.RunBacktest(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		var vErr *model.ValidationError
		var cErr *model.InvalidConditionError
		if errors.As(err, &vErr) || errors.As(err, &cErr) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, model.APIResponse{
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleUpgrade(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
