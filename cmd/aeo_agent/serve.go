package main

import (
	"fmt"
	"time"

	"github.com/jonathan/aeo-insights/internal/pipeline"
	"github.com/jonathan/aeo-insights/internal/server"
	"github.com/jonathan/aeo-insights/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing opportunity identification, recommendation drafting and content scoring.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := currentConfig()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	scorer := newScorer(ctx, cfg)
	defer func() { _ = scorer.Cache.Close() }()

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	svc := pipeline.New(store, client, pipeline.Options{
		LookbackDays: cfg.Identify.LookbackDays,
		TopQueries:   cfg.Recommendations.TopQueries,
	})

	srv := server.New(server.Config{
		Port: port,
		RateLimit: ratelimit.Settings{
			Enabled:              cfg.RateLimit.Enabled,
			RecommendationsLimit: cfg.RateLimit.RecommendationsLimit,
			Window:               time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		},
	}, svc, scorer, store)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
