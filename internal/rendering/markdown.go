// Package rendering turns opportunity reports and recommendation batches into
// Markdown briefs for sharing outside the API.
package rendering

import (
	"embed"
	"strings"
	"text/template"
	"time"

	"github.com/jonathan/aeo-insights/internal/types"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"md":   EscapeMarkdown,
	"inc":  func(i int) int { return i + 1 },
	"date": func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"join": func(items []string) string {
		escaped := make([]string, len(items))
		for i, s := range items {
			escaped[i] = EscapeMarkdown(s)
		}
		return strings.Join(escaped, ", ")
	},
	"target": func(competitor *string) string {
		if competitor == nil {
			return "floor"
		}
		return EscapeMarkdown(*competitor)
	},
}

var templates = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.md.tmpl"))

// severityCount is one row of the severity table
type severityCount struct {
	Name  types.Severity
	Count int
}

type opportunitiesData struct {
	Report     *types.OpportunityReport
	Severities []severityCount
}

// RenderOpportunities renders an opportunity report as Markdown.
func RenderOpportunities(report *types.OpportunityReport) (string, error) {
	if report == nil {
		return "", &RenderError{Message: "report is nil"}
	}

	data := opportunitiesData{Report: report}
	for _, sev := range []types.Severity{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		data.Severities = append(data.Severities, severityCount{Name: sev, Count: report.Summary.BySeverity[sev]})
	}
	return execute("opportunities.md.tmpl", data)
}

// RenderRecommendations renders a recommendation batch as Markdown.
func RenderRecommendations(result *types.RecommendationResult) (string, error) {
	if result == nil {
		return "", &RenderError{Message: "recommendation result is nil"}
	}
	return execute("recommendations.md.tmpl", result)
}

func execute(name string, data any) (string, error) {
	tmpl := templates.Lookup(name)
	if tmpl == nil {
		return "", &TemplateError{Template: name, Message: "not found"}
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", &TemplateError{Template: name, Message: "execution failed", Cause: err}
	}
	return out.String(), nil
}
