package scoring

import "regexp"

var promotionalPattern = regexp.MustCompile(`(?i)(world[- ]class|best[- ]in[- ]class|industry[- ]leading|revolutionary|game[- ]chang(ing|er)|cutting[- ]edge|unparalleled|state[- ]of[- ]the[- ]art|next[- ]generation|synerg(y|ies)|unmatched|second to none|leading provider|#1\b|number one|guaranteed|act now|buy now|sign up today|limited[- ]time offer)`)

const (
	penaltyPerPhrase = 3
	maxPenalty       = 15
	penaltyName      = "promotionalLanguage"
)

// promotionalPenalty deducts points for marketing language that answer engines
// discount. Its score is zero or negative and its max is zero.
func promotionalPenalty(doc *Document) NamedDimension {
	hits := doc.Count(promotionalPattern)
	penalty := hits * penaltyPerPhrase
	if penalty > maxPenalty {
		penalty = maxPenalty
	}

	d := Dimension{Score: -penalty, Max: 0, Status: StatusGood, Feedback: "No promotional language detected."}
	switch {
	case penalty == 0:
	case penalty <= 2*penaltyPerPhrase:
		d.Status = StatusWarning
		d.Feedback = "Some promotional phrasing; replace superlatives with verifiable claims."
	default:
		d.Status = StatusError
		d.Feedback = "Heavy promotional language; engines favour neutral, evidence-backed wording."
	}
	return NamedDimension{Name: penaltyName, Dimension: d}
}
