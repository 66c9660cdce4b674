package scoring

import (
	"regexp"
	"strings"
)

var (
	experiencePattern = regexp.MustCompile(`(?i)(in my experience|\bi've\b|\bi have (used|worked|built|run|seen)|\bwe've\b|\bwhen i\b|\bi used\b|\bour team\b|\b\d+\+? years\b)`)
	balancePattern    = regexp.MustCompile(`(?i)\b(however|on the other hand|downside|drawbacks?|cons\b|trade-?offs?|that said|although|caveat)`)
	versionPattern    = regexp.MustCompile(`\bv?\d+\.\d+(\.\d+)?\b`)
)

type communityScorer struct{}

func (communityScorer) ContentType() ContentType { return ContentExpertCommunityResponse }
func (communityScorer) MaxScore() int            { return 100 }

func (communityScorer) Dimensions(doc *Document) []NamedDimension {
	return []NamedDimension{
		directAnswer(doc, 20),
		experienceSignals(doc, 15),
		disclosure(doc, 15),
		specificity(doc, 15),
		balancedPerspective(doc, 15),
		responseStructure(doc, 10),
		causalDimension(doc, 10),
	}
}

func directAnswer(doc *Document, outOf int) NamedDimension {
	first := doc.FirstParagraph()
	words := len(strings.Fields(first))
	lower := strings.ToLower(first)
	direct := hasNumber(first) || containsAny(lower, "short answer", "i recommend", "i'd recommend", "you should", "the best", "use ")
	for _, lead := range []string{"yes", "no", "it depends"} {
		if strings.HasPrefix(lower, lead) {
			direct = true
		}
	}

	score := 0
	switch {
	case words == 0:
	case words <= 50 && direct:
		score = outOf
	case words <= 80:
		score = outOf / 2
	default:
		score = outOf / 4
	}
	return dimension("directAnswer", score, outOf,
		"Answers the question in the first lines.",
		"Answer the question directly in the first one or two sentences.")
}

func experienceSignals(doc *Document, outOf int) NamedDimension {
	n := doc.Count(experiencePattern)
	return dimension("experienceSignals", tiered(n, tier{2, outOf}, tier{1, outOf / 2}), outOf,
		"Grounded in first-hand experience.",
		"Say what you have used or built and for how long.")
}

func disclosure(doc *Document, outOf int) NamedDimension {
	ok := doc.ContainsAny("disclosure", "disclaimer", "i work for", "i work at", "affiliated", "i'm the founder", "i am the founder", "i'm on the team", "full disclosure")
	return dimension("disclosure", boolScore(ok, outOf), outOf,
		"Affiliation is disclosed.",
		"Disclose any affiliation with the products mentioned; communities and engines discount undisclosed promotion.")
}

func specificity(doc *Document, outOf int) NamedDimension {
	n := doc.Count(dataPointPattern) + doc.Count(versionPattern) + doc.Numbered
	return dimension("specificity", tiered(n, tier{4, outOf}, tier{2, outOf * 2 / 3}, tier{1, outOf / 3}), outOf,
		"Specific details make the answer verifiable.",
		"Add concrete details such as versions, settings, numbers or steps.")
}

func balancedPerspective(doc *Document, outOf int) NamedDimension {
	n := doc.Count(balancePattern)
	return dimension("balancedPerspective", tiered(n, tier{2, outOf}, tier{1, outOf / 2}), outOf,
		"Acknowledges trade-offs.",
		"Mention downsides or alternatives so the answer reads as balanced.")
}

func responseStructure(doc *Document, outOf int) NamedDimension {
	score := 0
	switch {
	case doc.Bullets+doc.Numbered >= 2:
		score = outOf
	case len(doc.Paragraphs) >= 2:
		score = outOf * 6 / 10
	case doc.Words > 0:
		score = outOf / 5
	}
	return dimension("structure", score, outOf,
		"Easy to scan.",
		"Split the answer into short paragraphs or a list.")
}
