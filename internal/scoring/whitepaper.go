package scoring

import "regexp"

var sampleSizePattern = regexp.MustCompile(`(?i)(\bn\s?=\s?\d+|\b\d[\d,]*\s+(respondents|participants|companies|organizations|customers)|surveyed\s+\d)`)

type whitepaperScorer struct{}

func (whitepaperScorer) ContentType() ContentType { return ContentWhitepaper }
func (whitepaperScorer) MaxScore() int            { return 100 }

func (whitepaperScorer) Dimensions(doc *Document) []NamedDimension {
	return []NamedDimension{
		executiveSummary(doc, 15),
		methodology(doc, 15),
		dataDimension("dataDensity", doc, 20, tier{10, 20}, tier{6, 14}, tier{3, 8}, tier{1, 4}),
		citations(doc, 15),
		headingDimension(tiered(len(doc.Headings), tier{5, 10}, tier{3, 7}, tier{1, 3}), 10),
		causalDimension(doc, 10),
		conclusions(doc, 15),
	}
}

func executiveSummary(doc *Document, outOf int) NamedDimension {
	keywords := []string{"executive summary", "abstract", "key findings", "tl;dr", "summary"}
	score := 0
	switch {
	case doc.HeadingContains(keywords...) || containsAny(doc.Opening(300), keywords...):
		score = outOf
	case doc.ContainsAny(keywords...):
		score = outOf / 2
	}
	return dimension("executiveSummary", score, outOf,
		"Findings are summarised up front.",
		"Open with an executive summary stating the key findings in a few sentences.")
}

func methodology(doc *Document, outOf int) NamedDimension {
	score := 0
	if doc.HeadingContains("methodology", "method", "approach", "data sources") ||
		doc.ContainsAny("methodology", "we surveyed", "data was collected", "data were collected") {
		score += outOf * 2 / 3
	}
	if doc.Count(sampleSizePattern) > 0 {
		score += outOf / 3
	}
	return dimension("methodology", score, outOf,
		"Methodology and sample are stated.",
		"Describe how the data was gathered, including sample size and period.")
}

func citations(doc *Document, outOf int) NamedDimension {
	n := doc.Count(citationPattern)
	if doc.HeadingContains("references", "sources", "bibliography") {
		n += 2
	}
	return dimension("citations", tiered(n, tier{5, outOf}, tier{3, outOf * 2 / 3}, tier{1, outOf / 3}), outOf,
		"Claims are attributed to sources.",
		"Cite sources inline and add a references section.")
}

func conclusions(doc *Document, outOf int) NamedDimension {
	score := 0
	if doc.HeadingContains("conclusion", "recommendation", "key takeaways", "next steps") {
		score += outOf * 2 / 3
	}
	if doc.ContainsAny("we recommend", "should ", "organizations can", "teams can") {
		score += outOf / 3
	}
	return dimension("conclusions", score, outOf,
		"Ends with actionable conclusions.",
		"Close with a conclusions section that turns findings into recommendations.")
}
