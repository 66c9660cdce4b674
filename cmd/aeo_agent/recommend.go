package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/pipeline"
	"github.com/jonathan/aeo-insights/internal/recommendation"
	"github.com/jonathan/aeo-insights/internal/rendering"
	"github.com/jonathan/aeo-insights/internal/types"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Draft and store recommendations for a brand's top opportunities",
	RunE:  runRecommend,
}

var (
	recommendBrandID    string
	recommendCustomerID string
	recommendTop        int
	recommendOutput     string
	recommendFormat     string
	recommendVerbose    bool
)

func init() {
	recommendCmd.Flags().StringVar(&recommendBrandID, "brand", "", "Brand ID (required)")
	recommendCmd.Flags().StringVar(&recommendCustomerID, "customer", "", "Customer ID (required)")
	recommendCmd.Flags().IntVar(&recommendTop, "top", 0, "Number of top queries to draft for (defaults to recommendations.topQueries)")
	recommendCmd.Flags().StringVarP(&recommendOutput, "out", "o", "", "Write the batch to this file instead of stdout")
	recommendCmd.Flags().StringVar(&recommendFormat, "format", formatJSON, "Output format: json or markdown")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print progress and the drafted recommendations to stderr")

	if err := recommendCmd.MarkFlagRequired("brand"); err != nil {
		panic(fmt.Sprintf("failed to mark brand flag as required: %v", err))
	}
	if err := recommendCmd.MarkFlagRequired("customer"); err != nil {
		panic(fmt.Sprintf("failed to mark customer flag as required: %v", err))
	}

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := currentConfig()

	req := types.ConvertRecommendationsRequest{
		BrandID:    recommendBrandID,
		CustomerID: recommendCustomerID,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := checkFormat(recommendFormat); err != nil {
		return err
	}

	top := cfg.Recommendations.TopQueries
	if cmd.Flags().Changed("top") {
		if recommendTop < 1 {
			return fmt.Errorf("--top must be positive")
		}
		top = recommendTop
	}

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

	svc := pipeline.New(store, client, pipeline.Options{
		LookbackDays: cfg.Identify.LookbackDays,
		TopQueries:   top,
		OnProgress:   progressPrinter(recommendVerbose),
	})

	result, err := svc.Convert(ctx, req)
	if errors.Is(err, recommendation.ErrNoOpportunities) {
		_, _ = fmt.Fprintln(os.Stderr, "No opportunities found; nothing to recommend.")
		return nil
	}
	if err != nil {
		return err
	}

	if recommendVerbose {
		observability.NewPrinter(os.Stderr).PrintRecommendations(result)
	}
	return writeReport(recommendOutput, recommendFormat, result, rendering.RenderRecommendations)
}
