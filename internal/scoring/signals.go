package scoring

import (
	"regexp"
)

var (
	dataPointPattern = regexp.MustCompile(`(?i)(\$\s?\d[\d,]*(\.\d+)?\s?(k|m|bn|million|billion)?\b|\b\d+(\.\d+)?\s?%|\b\d+(\.\d+)?\s?(x|times|thousand|million|billion|hours?|minutes?|seconds?|days?|weeks?|months?|years?|ms|users|customers|respondents|companies)\b|\b\d{2,}[\d,]*(\.\d+)?\b)`)
	causalPattern    = regexp.MustCompile(`(?i)\b(because|therefore|as a result|which means|due to|so that|this is why|that's why|leads? to|consequently|results? in|caused by|since)\b`)
	definitionPat    = regexp.MustCompile(`(?i)\b(is an?|are|is the|refers to|is defined as|means)\b`)
	questionLine     = regexp.MustCompile(`(?mi)^[ \t]*(#{1,6}\s+.+\?|\*\*.+\?\*\*|(?:q|question):\s*.+|.{5,160}\?)[ \t]*$`)
	properNounPat    = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+)*\b`)
	timestampPattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2})?\b`)
	citationPattern  = regexp.MustCompile(`(?i)(\[\d+\]|\(source:|according to|et al\.?|https?://\S+|\(\w[\w\s&.]*,\s*\d{4}\))`)
	speakerPattern   = regexp.MustCompile(`(?m)^\s*(?:\*\*)?([A-Z][\w.'-]*(?:\s[A-Z][\w.'-]*){0,2})(?:\*\*)?:\s+\S`)
	hashtagPattern   = regexp.MustCompile(`(?:^|\s)#[A-Za-z]\w*`)
	postNumberPat    = regexp.MustCompile(`(?m)^\s*(\d+\s?/\s?\d*|\d+[.)])\s`)
	quotePattern     = regexp.MustCompile(`["“][^"”]{20,200}["”]`)
)

// dimension builds a diagnostic, clamping score to [0,max] and choosing
// feedback by status.
func dimension(name string, score, outOf int, good, improve string) NamedDimension {
	score = clamp(score, 0, outOf)
	status := statusFor(score, outOf)
	feedback := improve
	if status == StatusGood {
		feedback = good
	}
	return NamedDimension{
		Name: name,
		Dimension: Dimension{
			Score:    score,
			Max:      outOf,
			Status:   status,
			Feedback: feedback,
		},
	}
}

// statusFor is good at 80% of max or more, warning above zero, error at zero.
func statusFor(score, outOf int) Status {
	switch {
	case outOf > 0 && score*5 >= outOf*4:
		return StatusGood
	case score > 0:
		return StatusWarning
	default:
		return StatusError
	}
}

// tier is a minimum count and the score it earns.
type tier struct {
	min   int
	score int
}

// tiered returns the score of the highest tier whose minimum count is reached.
// Tiers must be ordered from highest minimum to lowest.
func tiered(count int, tiers ...tier) int {
	for _, t := range tiers {
		if count >= t.min {
			return t.score
		}
	}
	return 0
}

func boolScore(ok bool, score int) int {
	if ok {
		return score
	}
	return 0
}

func causalDimension(doc *Document, outOf int) NamedDimension {
	n := doc.Count(causalPattern)
	score := tiered(n, tier{3, outOf}, tier{2, outOf * 7 / 10}, tier{1, outOf * 4 / 10})
	return dimension("causalReasoning", score, outOf,
		"Explains why, not just what, with explicit cause-and-effect language.",
		"Add cause-and-effect connectors (because, as a result, which means) so engines can quote reasoning.")
}

func dataDimension(name string, doc *Document, outOf int, tiers ...tier) NamedDimension {
	n := doc.Count(dataPointPattern)
	return dimension(name, tiered(n, tiers...), outOf,
		"Concrete figures give engines citable facts.",
		"Add specific numbers, percentages or measured outcomes.")
}

func headingDimension(score, outOf int) NamedDimension {
	return dimension("headingStructure", score, outOf,
		"Clear heading hierarchy makes sections extractable.",
		"Break the content into descriptive headings so each section can be lifted on its own.")
}

func hasNumber(s string) bool {
	return dataPointPattern.MatchString(s)
}
