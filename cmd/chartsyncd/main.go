package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chartsync/internal/app"
	"chartsync/internal/config"
)

var (
	configPath string
	demoMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "chartsyncd",
	Short: "Strategy chart sync daemon",
	Long: `chartsyncd keeps a candlestick chart, its indicator overlays, trade
markers, and performance stats in sync with a rule-based strategy
definition, fetching all data from a backtesting service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if demoMode {
			cfg.Demo.Enabled = true
		}
		return app.New(cfg).Run()
	},
	SilenceUsage: true,
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.Flags().BoolVar(&demoMode, "demo", false, "run against the embedded stub backtesting service")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
