package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jonathan/aeo-insights/internal/fetch"
	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/types"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score content for answer-engine scrapability",
	Long: "Score a text or HTML file, or a published page, against the rubric of its content type. " +
		"No database is needed. With --url and no --type the rubric is picked from the page's platform.",
	RunE: runScore,
}

var (
	scoreContentType string
	scoreInputFile   string
	scoreURL         string
	scoreOutputFile  string
	scoreVerbose     bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreContentType, "type", "t", "article", "Content type (article, whitepaper, video, podcast, social-thread, comparison-table, expert-community-response)")
	scoreCmd.Flags().StringVarP(&scoreInputFile, "in", "i", "", "Path to the content file, or - for stdin")
	scoreCmd.Flags().StringVar(&scoreURL, "url", "", "Fetch and score a published page")
	scoreCmd.Flags().StringVarP(&scoreOutputFile, "out", "o", "", "Write the result to this file instead of stdout")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print the dimension table to stderr")

	scoreCmd.MarkFlagsOneRequired("in", "url")
	scoreCmd.MarkFlagsMutuallyExclusive("in", "url")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	contentType := scoreContentType
	var content string
	switch {
	case scoreURL != "":
		page, platform, err := fetch.Page(ctx, scoreURL, nil)
		if err != nil {
			return err
		}
		content = page
		if ct, ok := platform.ContentType(); ok && !cmd.Flags().Changed("type") {
			contentType = string(ct)
		}
	case scoreInputFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		content = string(data)
	default:
		data, err := os.ReadFile(scoreInputFile)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		content = string(data)
	}

	req := types.ScoreContentRequest{ContentType: contentType, RawText: content}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	scorer := newScorer(ctx, currentConfig())
	defer func() { _ = scorer.Cache.Close() }()

	res, _ := scorer.Score(ctx, req.ContentType, req.RawText)

	if scoreVerbose {
		observability.NewPrinter(os.Stderr).PrintScoreResult(&res)
	}
	return writeJSON(scoreOutputFile, res)
}
