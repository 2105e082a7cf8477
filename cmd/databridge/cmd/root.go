package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/bridge"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dataloop"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dbsql"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	workers   int
)

var rootCmd = &cobra.Command{
	Use:   "databridge",
	Short: "Databricks to Dataloop data bridge",
	Long: `databridge moves data between Databricks and the Dataloop annotation
platform: it imports table rows as prompt items, writes curated best
responses back, transfers files to and from managed volumes, and launches
foundation-model fine-tuning runs.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "databridge.yaml",
		"Path to configuration file")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override volume transfer worker count")
}

// app bundles the components every command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	exec     *dbsql.Executor
	platform *dataloop.Client
}

// buildApp loads and validates configuration, applies CLI overrides, and
// wires the executor and platform client.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(logLevel, logFormat, workers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		exec:     dbsql.New(&cfg.Databricks, log),
		platform: dataloop.New(&cfg.Dataloop, log),
	}, nil
}

func (a *app) tableBridge() *bridge.TableBridge {
	return bridge.NewTableBridge(a.exec, a.platform, a.log)
}

func (a *app) volumeBridge() *bridge.VolumeBridge {
	return bridge.NewVolumeBridge(a.exec, a.platform, a.log, &a.cfg.Transfer)
}
