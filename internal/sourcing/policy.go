// Package sourcing resolves how a brand can realistically act on each domain
// that answer engines cite for a query.
package sourcing

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/aeo-insights/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// DomainGroup is a set of known domains sharing one contribution model
type DomainGroup struct {
	ContentTypes []string `yaml:"content_types"`
	Domains      []string `yaml:"domains"`
	NameHints    []string `yaml:"name_hints"`
}

// Policy lists the known domain groups used before any generative refinement
type Policy struct {
	Owned     DomainGroup `yaml:"owned"`
	Community DomainGroup `yaml:"community"`
	Editorial DomainGroup `yaml:"editorial"`
}

// LoadPolicy parses a YAML domain policy. Domains are normalized on load.
func LoadPolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse domain policy: %w", err)
	}
	for _, g := range []*DomainGroup{&p.Community, &p.Editorial} {
		for i, d := range g.Domains {
			g.Domains[i] = NormalizeDomain(d)
		}
		for i, h := range g.NameHints {
			g.NameHints[i] = strings.ToLower(strings.TrimSpace(h))
		}
	}
	return &p, nil
}

// DefaultPolicy returns the embedded domain policy
func DefaultPolicy() *Policy {
	p, err := LoadPolicy(defaultPolicy)
	if err != nil {
		panic(err)
	}
	return p
}

// NormalizeDomain reduces a domain or URL to a lowercase bare host without "www."
func NormalizeDomain(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, ".")
	return strings.TrimPrefix(s, "www.")
}

// sameSite reports whether host equals base or is a subdomain of it
func sameSite(host, base string) bool {
	if host == "" || base == "" {
		return false
	}
	return host == base || strings.HasSuffix(host, "."+base)
}

func (g DomainGroup) listed(host string) bool {
	for _, d := range g.Domains {
		if sameSite(host, d) {
			return true
		}
	}
	return false
}

func (g DomainGroup) hinted(host string) bool {
	labels := strings.FieldsFunc(host, func(r rune) bool { return r == '.' || r == '-' })
	for _, label := range labels {
		for _, h := range g.NameHints {
			if h != "" && strings.HasPrefix(label, h) {
				return true
			}
		}
	}
	return false
}

// kind is the policy bucket a domain falls into
type kind int

const (
	kindOther kind = iota
	kindBrand
	kindCompetitor
	kindCommunity
	kindEditorial
)

// classify places a normalized host into a policy bucket. Brand ownership wins
// over every other rule and competitor ownership over the known lists.
func (p *Policy) classify(host, brandDomain string, competitorDomains []string) kind {
	switch {
	case sameSite(host, brandDomain):
		return kindBrand
	case isCompetitor(host, competitorDomains):
		return kindCompetitor
	case p.Community.listed(host):
		return kindCommunity
	case p.Editorial.listed(host):
		return kindEditorial
	case p.Community.hinted(host):
		return kindCommunity
	case p.Editorial.hinted(host):
		return kindEditorial
	default:
		return kindOther
	}
}

func isCompetitor(host string, competitorDomains []string) bool {
	for _, c := range competitorDomains {
		if sameSite(host, c) {
			return true
		}
	}
	return false
}

// baseline returns the deterministic classification for one (query, domain) pair
func (p *Policy) baseline(k kind, host string, q types.QueryContext) types.DomainClassification {
	dc := types.DomainClassification{
		Domain:           host,
		QueryID:          q.QueryID,
		BestContentTypes: []string{},
	}
	switch k {
	case kindBrand:
		dc.ContributionModel = types.ContributionDirectPublish
		dc.RecommendedActionVerb = types.ActionPublish
		dc.BestContentTypes = append(dc.BestContentTypes, p.Owned.ContentTypes...)
		dc.Rationale = fmt.Sprintf("%s is the brand's own domain and can be published to directly.", host)
	case kindCompetitor:
		dc.ContributionModel = types.ContributionEarnedMedia
		dc.RecommendedActionVerb = types.ActionMonitorCounter
		dc.Rationale = fmt.Sprintf("%s belongs to a competitor; monitor its coverage of %q and counter it elsewhere.", host, q.QueryText)
	case kindCommunity:
		dc.ContributionModel = types.ContributionCommunity
		dc.RecommendedActionVerb = types.ActionPost
		dc.BestContentTypes = append(dc.BestContentTypes, p.Community.ContentTypes...)
		dc.Rationale = fmt.Sprintf("%s is a community platform where practitioners can answer %q directly.", host, q.QueryText)
	case kindEditorial:
		dc.ContributionModel = types.ContributionEarnedMedia
		dc.RecommendedActionVerb = types.ActionPitch
		dc.BestContentTypes = append(dc.BestContentTypes, p.Editorial.ContentTypes...)
		dc.Rationale = fmt.Sprintf("%s is an editorial outlet; coverage must be earned through a pitch.", host)
	default:
		dc.ContributionModel = types.ContributionEarnedMedia
		dc.RecommendedActionVerb = types.ActionMonitorCounter
		dc.Rationale = fmt.Sprintf("%s is a third-party site the brand does not control.", host)
	}
	return dc
}
