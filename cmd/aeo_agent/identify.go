package main

import (
	"fmt"
	"os"

	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/pipeline"
	"github.com/jonathan/aeo-insights/internal/rendering"
	"github.com/jonathan/aeo-insights/internal/types"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Identify answer-engine opportunities for a brand",
	Long: "Aggregate recent answer-engine metrics for a brand, compare them with competitors and " +
		"absolute floors, and print the ranked opportunity report as JSON.",
	RunE: runIdentify,
}

var (
	identifyBrandID    string
	identifyCustomerID string
	identifyLookback   int
	identifyCollectors []string
	identifyTopic      string
	identifyOutput     string
	identifyFormat     string
	identifyVerbose    bool
)

func init() {
	identifyCmd.Flags().StringVar(&identifyBrandID, "brand", "", "Brand ID (required)")
	identifyCmd.Flags().StringVar(&identifyCustomerID, "customer", "", "Customer ID (required)")
	identifyCmd.Flags().IntVar(&identifyLookback, "lookback", 0, "Lookback window in days (defaults to identify.lookbackDays)")
	identifyCmd.Flags().StringSliceVar(&identifyCollectors, "collector", nil, "Only use responses from these collectors (repeatable)")
	identifyCmd.Flags().StringVar(&identifyTopic, "topic", "", "Only analyze queries with this topic")
	identifyCmd.Flags().StringVarP(&identifyOutput, "out", "o", "", "Write the report to this file instead of stdout")
	identifyCmd.Flags().StringVar(&identifyFormat, "format", formatJSON, "Output format: json or markdown")
	identifyCmd.Flags().BoolVarP(&identifyVerbose, "verbose", "v", false, "Print progress and a summary table to stderr")

	if err := identifyCmd.MarkFlagRequired("brand"); err != nil {
		panic(fmt.Sprintf("failed to mark brand flag as required: %v", err))
	}
	if err := identifyCmd.MarkFlagRequired("customer"); err != nil {
		panic(fmt.Sprintf("failed to mark customer flag as required: %v", err))
	}

	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := currentConfig()

	req := types.IdentifyOpportunitiesRequest{
		BrandID:      identifyBrandID,
		CustomerID:   identifyCustomerID,
		LookbackDays: identifyLookback,
		Collectors:   identifyCollectors,
		Topic:        identifyTopic,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := checkFormat(identifyFormat); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Identification needs no generative client.
	svc := pipeline.New(store, nil, pipeline.Options{
		LookbackDays: cfg.Identify.LookbackDays,
		OnProgress:   progressPrinter(identifyVerbose),
	})

	report, err := svc.Identify(ctx, req)
	if err != nil {
		return err
	}

	if identifyVerbose {
		observability.NewPrinter(os.Stderr).PrintOpportunityReport(report)
	}
	return writeReport(identifyOutput, identifyFormat, report, rendering.RenderOpportunities)
}

// progressPrinter returns a callback echoing run progress to stderr, or nil
func progressPrinter(verbose bool) pipeline.ProgressCallback {
	if !verbose {
		return nil
	}
	return func(e pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Step, e.Message)
	}
}
