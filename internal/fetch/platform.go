package fetch

import (
	"net/url"
	"strings"

	"github.com/jonathan/aeo-insights/internal/scoring"
)

// Platform represents a known publishing platform.
type Platform string

const (
	// PlatformYouTube hosts video pages with descriptions and transcripts
	PlatformYouTube Platform = "youtube"
	// PlatformPodcast covers podcast directories and episode pages
	PlatformPodcast Platform = "podcast"
	// PlatformReddit is the Reddit discussion platform
	PlatformReddit Platform = "reddit"
	// PlatformQuora is the Quora Q&A platform
	PlatformQuora Platform = "quora"
	// PlatformStackExchange covers Stack Overflow and Stack Exchange sites
	PlatformStackExchange Platform = "stackexchange"
	// PlatformSocial covers threaded social posts (X, Threads, LinkedIn posts)
	PlatformSocial Platform = "social"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"vimeo.com", PlatformYouTube},
	{"podcasts.apple.com", PlatformPodcast},
	{"open.spotify.com", PlatformPodcast},
	{"podbean.com", PlatformPodcast},
	{"buzzsprout.com", PlatformPodcast},
	{"reddit.com", PlatformReddit},
	{"quora.com", PlatformQuora},
	{"stackoverflow.com", PlatformStackExchange},
	{"stackexchange.com", PlatformStackExchange},
	{"x.com", PlatformSocial},
	{"twitter.com", PlatformSocial},
	{"threads.net", PlatformSocial},
	{"bsky.app", PlatformSocial},
}

// DetectPlatform identifies the publishing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	for _, p := range platformHosts {
		if host == p.suffix || strings.HasSuffix(host, "."+p.suffix) {
			return p.platform
		}
	}

	if strings.Contains(host, "podcast") {
		return PlatformPodcast
	}
	return PlatformUnknown
}

// ContentType returns the scoring rubric that fits content from the platform.
// ok is false when the platform does not imply one.
func (p Platform) ContentType() (scoring.ContentType, bool) {
	switch p {
	case PlatformYouTube:
		return scoring.ContentVideoScript, true
	case PlatformPodcast:
		return scoring.ContentPodcastScript, true
	case PlatformReddit, PlatformQuora, PlatformStackExchange:
		return scoring.ContentExpertCommunityResponse, true
	case PlatformSocial:
		return scoring.ContentSocialThread, true
	default:
		return "", false
	}
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformYouTube:
		return []string{
			"#description",
			"ytd-transcript-renderer",
			"#meta",
			"main",
		}
	case PlatformReddit:
		return []string{
			"shreddit-comment-tree",
			"[data-test-id='post-content']",
			".thing .usertext-body",
			"main",
		}
	case PlatformQuora:
		return []string{
			".q-box.qu-userSelect--text",
			".puppeteer_test_answer_content",
			"main",
		}
	case PlatformStackExchange:
		return []string{
			"#answers",
			"#mainbar",
			"main",
		}
	default:
		return DefaultContentSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-consent",
		".gdpr-notice",

		// Newsletter and related-content blocks
		".newsletter-signup",
		".related-posts",
		".comments",
	}

	switch platform {
	case PlatformReddit:
		return append(common,
			"shreddit-ad-post",
			".promotedlink",
		)
	case PlatformStackExchange:
		return append(common,
			"#sidebar",
			".js-post-menu",
			".comments-link",
		)
	case PlatformYouTube:
		return append(common,
			"#related",
			"#comments",
		)
	default:
		return common
	}
}
