package scoring

import (
	"strings"
	"unicode/utf8"
)

const postCharLimit = 280

type socialScorer struct{}

func (socialScorer) ContentType() ContentType { return ContentSocialThread }
func (socialScorer) MaxScore() int            { return 80 }

func (socialScorer) Dimensions(doc *Document) []NamedDimension {
	posts := doc.Paragraphs
	return []NamedDimension{
		hookPost(posts, 15),
		postNumbering(doc, 15),
		postLength(posts, 15),
		dataDimension("dataPoints", doc, 10, tier{3, 10}, tier{1, 5}),
		takeawayPost(posts, 10),
		hashtagDiscipline(doc, 15),
	}
}

func hookPost(posts []string, outOf int) NamedDimension {
	score := 0
	if len(posts) > 0 {
		first := posts[0]
		hook := strings.Contains(first, "?") || hasNumber(first) || strings.Contains(first, "🧵") ||
			containsAny(strings.ToLower(first), "thread", "here's", "here is")
		switch {
		case utf8.RuneCountInString(first) <= postCharLimit && hook:
			score = outOf
		case utf8.RuneCountInString(first) <= postCharLimit:
			score = outOf / 2
		}
	}
	return dimension("hookPost", score, outOf,
		"The first post hooks with the core claim.",
		"Open with a single short post stating the core claim or figure.")
}

func postNumbering(doc *Document, outOf int) NamedDimension {
	n := doc.Count(postNumberPat)
	return dimension("postNumbering", tiered(n, tier{3, outOf}, tier{1, outOf / 2}), outOf,
		"Posts are numbered.",
		"Number posts (1/, 2/ ...) so the thread reads in order when excerpted.")
}

func postLength(posts []string, outOf int) NamedDimension {
	score := 0
	if len(posts) > 0 {
		within := 0
		for _, p := range posts {
			if utf8.RuneCountInString(p) <= postCharLimit {
				within++
			}
		}
		switch {
		case within == len(posts):
			score = outOf
		case within*4 >= len(posts)*3:
			score = outOf * 2 / 3
		case within*2 >= len(posts):
			score = outOf / 3
		}
	}
	return dimension("postLength", score, outOf,
		"Every post fits a single card.",
		"Keep each post under 280 characters.")
}

func takeawayPost(posts []string, outOf int) NamedDimension {
	ok := false
	if len(posts) > 0 {
		last := strings.ToLower(posts[len(posts)-1])
		ok = containsAny(last, "takeaway", "tl;dr", "tldr", "in short", "bottom line", "summary", "key lesson")
	}
	return dimension("takeawayPost", boolScore(ok, outOf), outOf,
		"Ends with a takeaway.",
		"Close with a post that states the takeaway in one line.")
}

func hashtagDiscipline(doc *Document, outOf int) NamedDimension {
	n := len(hashtagPattern.FindAllString(doc.Text, -1))
	score := 0
	switch {
	case doc.Words == 0:
	case n >= 1 && n <= 3:
		score = outOf
	case n == 0:
		score = outOf * 2 / 3
	case n <= 6:
		score = outOf * 2 / 5
	}
	return dimension("hashtagDiscipline", score, outOf,
		"Hashtags are few and relevant.",
		"Use at most three relevant hashtags.")
}
