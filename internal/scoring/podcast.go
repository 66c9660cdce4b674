package scoring

import "strings"

type podcastScorer struct{}

func (podcastScorer) ContentType() ContentType { return ContentPodcastScript }
func (podcastScorer) MaxScore() int            { return 80 }

func (podcastScorer) Dimensions(doc *Document) []NamedDimension {
	return []NamedDimension{
		episodeSummary(doc, 15),
		speakerLabels(doc, 15),
		topicSegments(doc, 15),
		quotableInsights(doc, 10),
		causalDimension(doc, 10),
		recapDimension("recap", doc, 15),
	}
}

func episodeSummary(doc *Document, outOf int) NamedDimension {
	keywords := []string{"in this episode", "episode summary", "today we", "show notes", "on today's show"}
	score := 0
	switch {
	case containsAny(doc.Opening(100), keywords...):
		score = outOf
	case doc.ContainsAny(keywords...):
		score = outOf / 2
	}
	return dimension("episodeSummary", score, outOf,
		"The episode's topic is summarised up front.",
		"Open with a two-sentence summary of what the episode answers.")
}

func speakerLabels(doc *Document, outOf int) NamedDimension {
	speakers := map[string]bool{}
	for _, m := range speakerPattern.FindAllStringSubmatch(doc.Text, -1) {
		speakers[strings.ToLower(m[1])] = true
	}
	return dimension("speakerLabels", tiered(len(speakers), tier{2, outOf}, tier{1, outOf / 2}), outOf,
		"Speakers are labelled consistently.",
		"Label every turn with the speaker's name (Host:, Guest:).")
}

func topicSegments(doc *Document, outOf int) NamedDimension {
	n := doc.Count(timestampPattern) + len(doc.Headings)
	return dimension("topicSegments", tiered(n, tier{3, outOf}, tier{1, outOf / 2}), outOf,
		"Segments are marked.",
		"Mark topic segments with headings or timestamps.")
}

func quotableInsights(doc *Document, outOf int) NamedDimension {
	n := doc.Count(quotePattern)
	for _, s := range doc.Sentences {
		words := len(strings.Fields(s))
		if words >= 6 && words <= 20 && hasNumber(s) {
			n++
		}
	}
	return dimension("quotableInsights", tiered(n, tier{2, outOf}, tier{1, outOf / 2}), outOf,
		"Contains short, quotable insights.",
		"Include crisp one-sentence insights backed by a figure.")
}
