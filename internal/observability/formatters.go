// Package observability provides Prometheus metrics, OpenTelemetry tracing and
// formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/aeo-insights/internal/scoring"
	"github.com/jonathan/aeo-insights/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOpportunityReport outputs the summary counts and the top opportunities.
func (p *Printer) PrintOpportunityReport(report *types.OpportunityReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Window:   %s → %s\n",
		report.DateRange.Start.Format("2006-01-02"), report.DateRange.End.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Queries:  %d analyzed\n", report.TotalQueriesAnalyzed))
	sb.WriteString(fmt.Sprintf("Found:    %d opportunities\n", report.Summary.Total))

	sev := report.Summary.BySeverity
	sb.WriteString(fmt.Sprintf("Severity: %d critical, %d high, %d medium, %d low\n",
		sev[types.SeverityCritical], sev[types.SeverityHigh], sev[types.SeverityMedium], sev[types.SeverityLow]))

	if len(report.Opportunities) > 0 {
		sb.WriteString("\n")
		count := min(len(report.Opportunities), maxItemsToShow)
		for i := 0; i < count; i++ {
			o := report.Opportunities[i]
			target := "floor"
			if o.Competitor != nil {
				target = *o.Competitor
			}
			sb.WriteString(fmt.Sprintf("%5.2f %-8s %-10s gap %4.1f vs %s\n", o.PriorityScore, o.Severity, o.Metric, o.Gap, target))
			sb.WriteString(fmt.Sprintf("      %s\n", o.QueryText))
		}
		if len(report.Opportunities) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(report.Opportunities)-maxItemsToShow))
		}
	}

	p.printBox("OPPORTUNITIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreResult outputs the dimension breakdown of a scored piece of content.
func (p *Printer) PrintScoreResult(res *scoring.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:   %s\n", res.ContentType))
	sb.WriteString(fmt.Sprintf("Score:  %d / %d\n\n", res.TotalScore, res.MaxScore))

	for _, d := range res.Dimensions() {
		sb.WriteString(fmt.Sprintf("%s %-22s %3d/%-3d\n", statusIcon(d.Status), d.Name, d.Score, d.Max))
		if d.Status != scoring.StatusGood {
			sb.WriteString(fmt.Sprintf("  %s\n", d.Feedback))
		}
	}

	p.printBox("AEO SCRAPABILITY SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs a persisted recommendation batch.
func (p *Printer) PrintRecommendations(result *types.RecommendationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Batch:  %s\n", result.Batch.ID))
	sb.WriteString(fmt.Sprintf("Count:  %d\n", len(result.Recommendations)))
	if n := len(result.Batch.MissingQueryIDs); n > 0 {
		sb.WriteString(fmt.Sprintf("Missed: %d of %d selected queries\n", n, result.Batch.SelectedQueryCount))
	}

	for _, r := range result.Recommendations {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("• %s\n", r.QueryText))
		sb.WriteString(fmt.Sprintf("  %s %s on %s (%s effort, %d%% confidence)\n", r.Action, r.ContentType, r.Channel, r.Effort, r.Confidence))
		if r.ContentTitle != "" {
			sb.WriteString(fmt.Sprintf("  \"%s\"\n", r.ContentTitle))
		}
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

func statusIcon(s scoring.Status) string {
	switch s {
	case scoring.StatusGood:
		return "✓"
	case scoring.StatusWarning:
		return "!"
	default:
		return "✗"
	}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
