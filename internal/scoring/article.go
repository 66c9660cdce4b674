package scoring

import (
	"strings"
)

var answerLeadIns = []string{
	"yes", "no", "the short answer", "in short", "the best", "you should", "you can", "to ",
}

type articleScorer struct{}

func (articleScorer) ContentType() ContentType { return ContentArticle }
func (articleScorer) MaxScore() int            { return 100 }

func (articleScorer) Dimensions(doc *Document) []NamedDimension {
	return []NamedDimension{
		answerFirst(doc, 15),
		headingDimension(tiered(len(doc.Headings), tier{3, 10}, tier{1, 6})+headingDepthBonus(doc), 15),
		causalDimension(doc, 10),
		dataDimension("dataDensity", doc, 15, tier{5, 15}, tier{3, 10}, tier{1, 5}),
		listsAndSteps(doc, 10),
		faqCoverage(doc, 15),
		entityClarity(doc, 10),
		readability(doc, 10),
	}
}

// answerFirst rewards an opening paragraph short enough to be quoted whole
// that leads with a definition, a direct answer or a figure.
func answerFirst(doc *Document, outOf int) NamedDimension {
	first := doc.FirstParagraph()
	words := len(strings.Fields(first))
	lower := strings.ToLower(first)
	direct := definitionPat.MatchString(first) || hasNumber(first)
	for _, lead := range answerLeadIns {
		if strings.HasPrefix(lower, lead) {
			direct = true
		}
	}

	score := 0
	switch {
	case words == 0:
	case words <= 60 && direct:
		score = outOf
	case words <= 100:
		score = outOf / 2
	default:
		score = outOf / 4
	}
	return dimension("answerFirst", score, outOf,
		"Opens with a concise, quotable answer.",
		"Lead with a 40-60 word direct answer or definition before any background.")
}

// headingDepthBonus is 5 when headings are nested or phrased as questions.
func headingDepthBonus(doc *Document) int {
	if len(doc.Headings) < 3 {
		return 0
	}
	levels := map[int]bool{}
	for _, h := range doc.Headings {
		levels[h.Level] = true
		if strings.HasSuffix(h.Text, "?") {
			return 5
		}
	}
	if len(levels) > 1 {
		return 5
	}
	return 0
}

func listsAndSteps(doc *Document, outOf int) NamedDimension {
	n := doc.Bullets + doc.Numbered
	return dimension("listsAndSteps", tiered(n, tier{5, outOf}, tier{2, outOf * 6 / 10}, tier{1, outOf * 3 / 10}), outOf,
		"Lists and steps are easy to extract.",
		"Turn sequences and options into bulleted or numbered lists.")
}

func faqCoverage(doc *Document, outOf int) NamedDimension {
	questions := doc.Count(questionLine)
	score := tiered(questions, tier{3, outOf}, tier{1, outOf / 3})
	if questions > 0 && questions < 3 && (doc.ContainsAny("faq", "frequently asked") || doc.HeadingContains("question")) {
		score = outOf * 2 / 3
	}
	return dimension("faqCoverage", score, outOf,
		"Covers the follow-up questions users ask.",
		"Add an FAQ section answering the 3-5 questions people ask next.")
}

// entityClarity checks that the subject is defined early and named consistently.
func entityClarity(doc *Document, outOf int) NamedDimension {
	early := strings.Join(firstN(doc.Paragraphs, 2), " ")
	score := 0
	if definitionPat.MatchString(early) {
		score += outOf * 6 / 10
	}
	if repeatedProperNoun(doc.Text) {
		score += outOf * 4 / 10
	}
	return dimension("entityClarity", score, outOf,
		"The main entity is defined and named consistently.",
		"Define the subject explicitly early on and refer to it by the same name.")
}

func readability(doc *Document, outOf int) NamedDimension {
	if doc.Words == 0 {
		return dimension("readability", 0, outOf, "", "No readable text found.")
	}
	score := 0
	avg := doc.AvgSentenceWords()
	switch {
	case avg <= 20:
		score += outOf * 6 / 10
	case avg <= 25:
		score += outOf * 3 / 10
	}
	if doc.LongestParagraphWords() <= 120 {
		score += outOf * 4 / 10
	}
	return dimension("readability", score, outOf,
		"Short sentences and paragraphs.",
		"Keep sentences under 20 words and paragraphs under 120 words.")
}

func repeatedProperNoun(text string) bool {
	counts := map[string]int{}
	for _, m := range properNounPat.FindAllString(text, -1) {
		if len(m) < 3 {
			continue
		}
		counts[m]++
		if counts[m] >= 2 {
			return true
		}
	}
	return false
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
