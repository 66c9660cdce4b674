// Package main provides the aeo_agent command line: the HTTP API server plus
// one-shot identify, recommend, score and migrate commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/aeo-insights/internal/config"
	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/spf13/cobra"
)

var (
	configPath string

	appConfig       *config.Config
	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "aeo_agent",
	Short: "Answer-engine optimization insights",
	Long: "aeo_agent finds where a brand is under-represented in AI answer engines, drafts " +
		"recommendations to close those gaps and scores content for how easily answer engines can extract it.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		logging.Sync()
		return shutdownTracing(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (defaults to ./config.yaml when present)")
}

// setup loads configuration and initializes logging, metrics and tracing
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	observability.Init()

	shutdown, err := observability.InitTracing(cfg.Tracing.Enabled, cfg.Tracing.ServiceName, os.Stderr)
	if err != nil {
		return err
	}
	shutdownTracing = shutdown

	appConfig = cfg
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
