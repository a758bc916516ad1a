// Package app wires configuration, logging, the backtest client, the
// sync engine, and the API server into a running daemon.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chartsync/internal/api"
	"chartsync/internal/backtest"
	"chartsync/internal/config"
	"chartsync/internal/demo"
	"chartsync/internal/engine"
	"chartsync/internal/logging"
	"chartsync/internal/model"
)

// App is the application lifecycle manager.
type App struct {
	cfg *config.Config
}

// New creates a new App instance.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Run starts the full application: demo service (when enabled), engine,
// API, and signal handling. It blocks until shutdown.
func (a *App) Run() error {
	log, err := logging.Build(a.cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting chartsyncd",
		zap.String("env", a.cfg.App.Env),
		zap.String("log_level", a.cfg.App.LogLevel),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	baseURL := a.cfg.Backtest.BaseURL
	if a.cfg.Demo.Enabled {
		svc := demo.NewService(a.cfg.Demo.ListenAddress, log.Named("demo"))
		g.Go(func() error {
			return svc.Run(ctx)
		})
		baseURL = "http://" + a.cfg.Demo.ListenAddress
		log.Info("demo_service_enabled", zap.String("base_url", baseURL))
	}

	client := backtest.NewClient(baseURL, time.Duration(a.cfg.Backtest.TimeoutSeconds)*time.Second, log.Named("backtest"))

	store := engine.NewStore()
	store.SetParams(a.startupParams())
	if a.cfg.Chart.Theme == string(model.ThemeLight) {
		store.SetTheme(model.ThemeLight)
	}

	eng := engine.New(store, client, log.Named("engine"))
	srv := api.NewServer(a.cfg.API.ListenAddress, eng, store, log.Named("api"))

	// Push chart and status to WebSocket clients on every engine update.
	hub := srv.HubRef()
	eng.SetOnUpdate(func() {
		hub.Broadcast("status", eng.Status())
		if snap, ok := eng.ChartSnapshot(); ok {
			hub.Broadcast("chart", snap)
		}
	})

	g.Go(func() error {
		return srv.Run(ctx)
	})

	// Render the initial chart without blocking startup.
	eng.Kick(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Wait()
	}()

	select {
	case sig := <-sigCh:
		log.Info("shutdown_signal", zap.String("signal", sig.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("fatal_error", zap.Error(err))
			cancel()
			return err
		}
	}

	log.Info("chartsyncd stopped")
	return nil
}

// startupParams builds the initial strategy parameters from the config
// file's chart defaults, leaving the built-in defaults for anything unset.
func (a *App) startupParams() model.StrategyParameters {
	params := model.DefaultParameters()
	c := a.cfg.Chart
	if c.Ticker != "" {
		params.Ticker = c.Ticker
	}
	if c.StartDate != "" {
		params.StartDate = c.StartDate
	}
	if c.EndDate != "" {
		params.EndDate = c.EndDate
	}
	if c.InitialCash > 0 {
		params.InitialCash = c.InitialCash
	}
	if c.Commission > 0 {
		params.Commission = c.Commission
	}
	return params
}
