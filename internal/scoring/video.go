package scoring

import (
	"regexp"
	"strings"
)

var visualCuePattern = regexp.MustCompile(`(?i)(\[?b-roll|on[- ]screen|\[visual|graphics?\b|cut to\b|\[show|lower third)`)

type videoScorer struct{}

func (videoScorer) ContentType() ContentType { return ContentVideoScript }
func (videoScorer) MaxScore() int            { return 80 }

func (videoScorer) Dimensions(doc *Document) []NamedDimension {
	return []NamedDimension{
		hookOpening(doc, 15),
		chapterMarkers(doc, 15),
		spokenClarity(doc, 10),
		recapDimension("keyPointsRecap", doc, 10),
		visualCues(doc, 10),
		dataDimension("dataDensity", doc, 10, tier{3, 10}, tier{1, 5}),
		causalDimension(doc, 10),
	}
}

func hookOpening(doc *Document, outOf int) NamedDimension {
	first := doc.FirstSentence()
	words := len(strings.Fields(first))
	lower := strings.ToLower(first)
	hook := strings.HasSuffix(strings.TrimSpace(first), "?") || hasNumber(first) ||
		containsAny(lower, "in this video", "today", "you'll learn", "you will learn", "here's how")

	score := 0
	switch {
	case words == 0:
	case words <= 25 && hook:
		score = outOf
	case words <= 25:
		score = outOf / 2
	default:
		score = outOf / 5
	}
	return dimension("hookOpening", score, outOf,
		"Opens with a short hook stating the payoff.",
		"Open with one short sentence that promises the answer or a striking figure.")
}

func chapterMarkers(doc *Document, outOf int) NamedDimension {
	n := doc.Count(timestampPattern)
	if n == 0 {
		n = len(doc.Headings)
	}
	return dimension("chapterMarkers", tiered(n, tier{3, outOf}, tier{1, outOf / 2}), outOf,
		"Chapters let engines deep-link to answers.",
		"Add timestamped chapters (00:00 Intro, 01:30 ...) for each segment.")
}

func spokenClarity(doc *Document, outOf int) NamedDimension {
	score := 0
	if doc.Words > 0 {
		avg := doc.AvgSentenceWords()
		switch {
		case avg <= 18:
			score = outOf
		case avg <= 24:
			score = outOf * 6 / 10
		default:
			score = outOf / 5
		}
	}
	return dimension("spokenClarity", score, outOf,
		"Short spoken sentences transcribe cleanly.",
		"Shorten sentences so the transcript reads as clear, standalone statements.")
}

func visualCues(doc *Document, outOf int) NamedDimension {
	n := doc.Count(visualCuePattern)
	return dimension("visualCues", tiered(n, tier{2, outOf}, tier{1, outOf / 2}), outOf,
		"Visual cues reinforce spoken points.",
		"Mark on-screen text and graphics that restate key facts.")
}

// recapDimension rewards an explicit summary of key points.
func recapDimension(name string, doc *Document, outOf int) NamedDimension {
	ok := doc.ContainsAny("recap", "to summarize", "to summarise", "in summary", "key takeaways", "let's review", "to wrap up") ||
		doc.HeadingContains("summary", "recap", "takeaways")
	return dimension(name, boolScore(ok, outOf), outOf,
		"Key points are recapped.",
		"Add a closing recap listing the key points.")
}
