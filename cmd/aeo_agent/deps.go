package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/aeo-insights/internal/cache"
	"github.com/jonathan/aeo-insights/internal/config"
	"github.com/jonathan/aeo-insights/internal/db"
	"github.com/jonathan/aeo-insights/internal/llm"
	"github.com/jonathan/aeo-insights/internal/logging"
	"go.uber.org/zap"
)

// currentConfig returns the loaded configuration, or defaults when a command
// runs without the root pre-run hook (as in tests).
func currentConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	cfg, err := config.Load("")
	if err != nil {
		logging.Warn("falling back to empty configuration", zap.Error(err))
		return &config.Config{}
	}
	return cfg
}

func openStore(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or database.url)")
	}
	return db.Connect(ctx, cfg.Database.URL)
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY, OPENAI_API_KEY or llm.apiKey)")
	}
	llmCfg, err := llm.ConfigForProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	llmCfg = llmCfg.WithOverrides(cfg.LLM.LiteModel, cfg.LLM.StandardModel, cfg.LLM.AdvancedModel)
	return llm.NewClient(ctx, llmCfg, cfg.LLM.APIKey)
}

// newScorer returns a scorer backed by Redis when configured. An unreachable
// Redis only disables caching.
func newScorer(ctx context.Context, cfg *config.Config) *cache.Scorer {
	if cfg.Redis.Addr == "" {
		return &cache.Scorer{}
	}
	client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Redis.TTLMinutes)*time.Minute)
	if err != nil {
		logging.Warn("score cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return &cache.Scorer{}
	}
	return &cache.Scorer{Cache: client}
}

// Output formats for identify and recommend
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatMarkdown:
		return nil
	default:
		return fmt.Errorf("unsupported --format %q (expected json or markdown)", format)
	}
}

// writeReport writes v as JSON, or as the Markdown produced by render
func writeReport[T any](path, format string, v T, render func(T) (string, error)) error {
	if format != formatMarkdown {
		return writeJSON(path, v)
	}
	text, err := render(v)
	if err != nil {
		return err
	}
	return writeBytes(path, []byte(text))
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return writeBytes(path, append(data, '\n'))
}

func writeBytes(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
