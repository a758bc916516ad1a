// Package config handles loading chartsync configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the chartsync daemon.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Backtest BacktestConfig `yaml:"backtest"`
	Chart    ChartConfig    `yaml:"chart"`
	API      APIConfig      `yaml:"api"`
	Demo     DemoConfig     `yaml:"demo"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`
}

// BacktestConfig points at the backtesting service.
type BacktestConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// ChartConfig holds the chart defaults applied at startup.
type ChartConfig struct {
	Ticker      string  `yaml:"ticker"`
	StartDate   string  `yaml:"startDate"`
	EndDate     string  `yaml:"endDate"`
	InitialCash float64 `yaml:"initialCash"`
	Commission  float64 `yaml:"commission"`
	Theme       string  `yaml:"theme"`
}

// APIConfig holds REST API server settings.
type APIConfig struct {
	ListenAddress string `yaml:"listenAddress"`
}

// DemoConfig controls the embedded stub backtesting service.
type DemoConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listenAddress"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for
// running without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults applies sensible defaults for optional fields.
func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Backtest.BaseURL == "" {
		c.Backtest.BaseURL = "http://localhost:8000"
	}
	if c.Backtest.TimeoutSeconds == 0 {
		c.Backtest.TimeoutSeconds = 30
	}
	if c.API.ListenAddress == "" {
		c.API.ListenAddress = ":8080"
	}
	if c.Demo.ListenAddress == "" {
		c.Demo.ListenAddress = "127.0.0.1:8000"
	}
}
