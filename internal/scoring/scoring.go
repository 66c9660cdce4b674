// Package scoring rates how easily answer engines can extract and cite a piece of
// content. Each content type has its own rubric of weighted dimensions computed
// from text heuristics. Scoring is pure: the same input always yields the same result.
package scoring

import (
	"sort"
	"strings"
)

// ContentType is the closed set of content formats with a rubric.
type ContentType string

// ContentType constants
const (
	ContentArticle                 ContentType = "article"
	ContentWhitepaper              ContentType = "whitepaper"
	ContentVideoScript             ContentType = "video_script"
	ContentPodcastScript           ContentType = "podcast_script"
	ContentSocialThread            ContentType = "social_thread"
	ContentComparisonTable         ContentType = "comparison_table"
	ContentExpertCommunityResponse ContentType = "expert_community_response"
)

// AllContentTypes lists every content type with a rubric.
var AllContentTypes = []ContentType{
	ContentArticle,
	ContentWhitepaper,
	ContentVideoScript,
	ContentPodcastScript,
	ContentSocialThread,
	ContentComparisonTable,
	ContentExpertCommunityResponse,
}

var contentTypeAliases = map[string]ContentType{
	"article":                   ContentArticle,
	"blog":                      ContentArticle,
	"blog_post":                 ContentArticle,
	"whitepaper":                ContentWhitepaper,
	"white_paper":               ContentWhitepaper,
	"report":                    ContentWhitepaper,
	"video":                     ContentVideoScript,
	"video_script":              ContentVideoScript,
	"youtube":                   ContentVideoScript,
	"podcast":                   ContentPodcastScript,
	"podcast_script":            ContentPodcastScript,
	"social":                    ContentSocialThread,
	"social_thread":             ContentSocialThread,
	"thread":                    ContentSocialThread,
	"twitter_thread":            ContentSocialThread,
	"linkedin_post":             ContentSocialThread,
	"comparison":                ContentComparisonTable,
	"comparison_table":          ContentComparisonTable,
	"table":                     ContentComparisonTable,
	"expert_community_response": ContentExpertCommunityResponse,
	"community_response":        ContentExpertCommunityResponse,
	"forum":                     ContentExpertCommunityResponse,
	"reddit_answer":             ContentExpertCommunityResponse,
	"quora_answer":              ContentExpertCommunityResponse,
}

// ParseContentType resolves a content type name or alias, ignoring case and
// treating hyphens, spaces and underscores alike. ok is false for unknown names.
func ParseContentType(s string) (ContentType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	ct, ok := contentTypeAliases[key]
	return ct, ok
}

// Status summarises a dimension score.
type Status string

// Status constants
const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Dimension is the diagnostic for one rubric dimension.
type Dimension struct {
	Score    int    `json:"score"`
	Max      int    `json:"max"`
	Status   Status `json:"status"`
	Feedback string `json:"feedback"`
}

// NamedDimension pairs a dimension with its rubric key.
type NamedDimension struct {
	Name string
	Dimension
}

// Result is the outcome of scoring one piece of content.
type Result struct {
	TotalScore  int                  `json:"totalScore"`
	MaxScore    int                  `json:"maxScore"`
	ContentType ContentType          `json:"contentType"`
	Breakdown   map[string]Dimension `json:"breakdown"`

	order []string
}

// Dimensions returns the breakdown in rubric order. Results decoded from JSON
// use the rubric order of their content type, then name order for anything else.
func (r *Result) Dimensions() []NamedDimension {
	names := r.order
	if len(names) != len(r.Breakdown) {
		names = orderedNames(DimensionOrder(r.ContentType), r.Breakdown)
	}
	out := make([]NamedDimension, 0, len(names))
	for _, name := range names {
		out = append(out, NamedDimension{Name: name, Dimension: r.Breakdown[name]})
	}
	return out
}

// DimensionOrder returns the dimension names of a content type's rubric in
// scoring order, including the promotional language penalty.
func DimensionOrder(ct ContentType) []string {
	dims := ScorerFor(ct).Dimensions(Analyze(""))
	names := make([]string, 0, len(dims)+1)
	for _, d := range dims {
		names = append(names, d.Name)
	}
	return append(names, penaltyName)
}

func orderedNames(preferred []string, breakdown map[string]Dimension) []string {
	names := make([]string, 0, len(breakdown))
	used := make(map[string]bool, len(breakdown))
	for _, name := range preferred {
		if _, ok := breakdown[name]; ok && !used[name] {
			names = append(names, name)
			used[name] = true
		}
	}
	var rest []string
	for name := range breakdown {
		if !used[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Scorer is the rubric of one content type.
type Scorer interface {
	ContentType() ContentType
	MaxScore() int
	Dimensions(doc *Document) []NamedDimension
}

// ScorerFor returns the rubric of a content type. Unknown types use the article rubric.
func ScorerFor(ct ContentType) Scorer {
	switch ct {
	case ContentWhitepaper:
		return whitepaperScorer{}
	case ContentVideoScript:
		return videoScorer{}
	case ContentPodcastScript:
		return podcastScorer{}
	case ContentSocialThread:
		return socialScorer{}
	case ContentComparisonTable:
		return comparisonScorer{}
	case ContentExpertCommunityResponse:
		return communityScorer{}
	default:
		return articleScorer{}
	}
}

// Score rates raw text (plain, markdown or HTML) against the rubric of contentType.
// Unknown content types are scored as articles.
func Score(contentType, rawText string) Result {
	ct, ok := ParseContentType(contentType)
	if !ok {
		ct = ContentArticle
	}
	return ScoreAs(ct, rawText)
}

// ScoreAs rates raw text against the rubric of a parsed content type.
func ScoreAs(ct ContentType, rawText string) Result {
	scorer := ScorerFor(ct)
	doc := Analyze(rawText)

	dims := scorer.Dimensions(doc)
	dims = append(dims, promotionalPenalty(doc))

	res := Result{
		MaxScore:    scorer.MaxScore(),
		ContentType: scorer.ContentType(),
		Breakdown:   make(map[string]Dimension, len(dims)),
		order:       make([]string, 0, len(dims)),
	}
	sum := 0
	for _, d := range dims {
		sum += d.Score
		res.Breakdown[d.Name] = d.Dimension
		res.order = append(res.order, d.Name)
	}
	res.TotalScore = clamp(sum, 0, res.MaxScore)
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
