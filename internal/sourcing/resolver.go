package sourcing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/llm"
	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/prompts"
	"github.com/jonathan/aeo-insights/internal/schemas"
	"github.com/jonathan/aeo-insights/internal/types"
	"go.uber.org/zap"
)

// ResolveError represents a failure while refining domain classifications
type ResolveError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("domain resolution %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("domain resolution %s: %s", e.Stage, e.Message)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// Request is one batch of query contexts to resolve for a brand
type Request struct {
	BrandName         string
	BrandDomain       string
	CompetitorDomains []string
	Contexts          []types.QueryContext
}

// Resolver classifies cited domains per query. A nil client disables
// generative refinement and only the embedded policy is applied.
type Resolver struct {
	policy *Policy
	client llm.Client
}

// NewResolver creates a resolver using the embedded domain policy
func NewResolver(client llm.Client) *Resolver {
	return NewResolverWithPolicy(DefaultPolicy(), client)
}

// NewResolverWithPolicy creates a resolver with an explicit policy
func NewResolverWithPolicy(policy *Policy, client llm.Client) *Resolver {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Resolver{policy: policy, client: client}
}

// Resolve returns query id -> domain -> classification. It never fails: any
// error during refinement is logged and an empty map is returned.
func (r *Resolver) Resolve(ctx context.Context, req Request) types.DomainClassifications {
	ctx, span := observability.StartSpan(ctx, "sourcing.Resolve")
	out, refined, err := r.resolve(ctx, req)
	observability.EndSpan(span, err)

	if err != nil {
		logging.Warn("domain resolution failed, continuing without domain context",
			zap.String("brand", req.BrandName),
			zap.Int("contexts", len(req.Contexts)),
			zap.Error(err),
		)
		observability.DomainResolutions.WithLabelValues("failed").Inc()
		return types.DomainClassifications{}
	}

	outcome := "policy"
	if refined {
		outcome = "refined"
	}
	observability.DomainResolutions.WithLabelValues(outcome).Inc()
	return out
}

type pendingPair struct {
	query types.QueryContext
	host  string
}

func (r *Resolver) resolve(ctx context.Context, req Request) (types.DomainClassifications, bool, error) {
	brandDomain := NormalizeDomain(req.BrandDomain)
	competitors := make([]string, 0, len(req.CompetitorDomains))
	for _, c := range req.CompetitorDomains {
		if d := NormalizeDomain(c); d != "" {
			competitors = append(competitors, d)
		}
	}

	out := make(types.DomainClassifications, len(req.Contexts))
	var pending []pendingPair

	for _, q := range req.Contexts {
		byDomain, ok := out[q.QueryID]
		if !ok {
			byDomain = make(map[string]types.DomainClassification)
			out[q.QueryID] = byDomain
		}
		for _, raw := range q.CandidateDomains {
			host := NormalizeDomain(raw)
			if host == "" {
				continue
			}
			if _, seen := byDomain[host]; seen {
				continue
			}
			k := r.policy.classify(host, brandDomain, competitors)
			byDomain[host] = r.policy.baseline(k, host, q)
			if k == kindOther {
				pending = append(pending, pendingPair{query: q, host: host})
			}
		}
	}

	if r.client == nil || len(pending) == 0 {
		return out, false, nil
	}

	if err := r.refine(ctx, req.BrandName, pending, out, brandDomain, competitors); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// domainItem is one element of the generative domain classification response
type domainItem struct {
	QueryID               string   `json:"query_id"`
	Domain                string   `json:"domain"`
	ContributionModel     string   `json:"contribution_model"`
	RecommendedActionVerb string   `json:"recommended_action_verb"`
	BestContentTypes      []string `json:"best_content_types"`
	Rationale             string   `json:"rationale"`
}

type domainResponse struct {
	Domains []domainItem `json:"domains"`
}

// refine sends every unknown pair in one call and merges the guarded answers into out
func (r *Resolver) refine(ctx context.Context, brandName string, pending []pendingPair, out types.DomainClassifications, brandDomain string, competitors []string) error {
	system, err := prompts.Get("sourcing.json", "system")
	if err != nil {
		return &ResolveError{Stage: "prompt", Message: "failed to load system prompt", Cause: err}
	}
	user, err := prompts.Render("sourcing.json", "user", map[string]string{
		"BrandName": brandName,
		"Pairs":     formatPairs(pending),
	})
	if err != nil {
		return &ResolveError{Stage: "prompt", Message: "failed to render prompt", Cause: err}
	}

	raw, err := r.client.GenerateJSON(ctx, system, user, llm.TierLite)
	if err != nil {
		return &ResolveError{Stage: "generate", Message: "LLM generation failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.Domains, raw); err != nil {
		return &ResolveError{Stage: "validate", Message: "response failed schema validation", Cause: err}
	}

	var resp domainResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return &ResolveError{Stage: "parse", Message: "failed to parse response", Cause: err}
	}

	requested := make(map[uuid.UUID]map[string]bool)
	for _, p := range pending {
		if requested[p.query.QueryID] == nil {
			requested[p.query.QueryID] = make(map[string]bool)
		}
		requested[p.query.QueryID][p.host] = true
	}

	for _, item := range resp.Domains {
		id, err := uuid.Parse(strings.TrimSpace(item.QueryID))
		if err != nil {
			continue
		}
		host := NormalizeDomain(item.Domain)
		if !requested[id][host] {
			continue
		}
		current := out[id][host]
		out[id][host] = r.guard(current, item, brandDomain, competitors)
	}
	return nil
}

// guard merges a generative answer into a baseline classification while
// keeping the ownership rules intact.
func (r *Resolver) guard(base types.DomainClassification, item domainItem, brandDomain string, competitors []string) types.DomainClassification {
	k := r.policy.classify(base.Domain, brandDomain, competitors)
	if k == kindBrand || k == kindCompetitor {
		return base
	}

	dc := base
	if item.Rationale != "" {
		dc.Rationale = item.Rationale
	}

	switch types.ContributionModel(item.ContributionModel) {
	case types.ContributionCommunity:
		dc.ContributionModel = types.ContributionCommunity
		dc.RecommendedActionVerb = types.ActionPost
	case types.ContributionPaidPlacement:
		dc.ContributionModel = types.ContributionPaidPlacement
		dc.RecommendedActionVerb = types.ActionSponsor
	default:
		// direct_publish is never granted outside the brand domain
		dc.ContributionModel = types.ContributionEarnedMedia
		if strings.EqualFold(item.RecommendedActionVerb, types.ActionPitch) {
			dc.RecommendedActionVerb = types.ActionPitch
		} else {
			dc.RecommendedActionVerb = types.ActionMonitorCounter
		}
	}

	dc.BestContentTypes = []string{}
	if dc.RecommendedActionVerb != types.ActionMonitorCounter {
		dc.BestContentTypes = cleanContentTypes(item.BestContentTypes)
	}
	return dc
}

func cleanContentTypes(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, ct := range in {
		ct = strings.TrimSpace(ct)
		if ct == "" || seen[ct] {
			continue
		}
		seen[ct] = true
		out = append(out, ct)
	}
	return out
}

func formatPairs(pending []pendingPair) string {
	sorted := make([]pendingPair, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].query.QueryID != sorted[j].query.QueryID {
			return sorted[i].query.QueryID.String() < sorted[j].query.QueryID.String()
		}
		return sorted[i].host < sorted[j].host
	})

	var sb strings.Builder
	for _, p := range sorted {
		fmt.Fprintf(&sb, "- query_id: %s | query: %q | domain: %s\n", p.query.QueryID, p.query.QueryText, p.host)
	}
	return strings.TrimRight(sb.String(), "\n")
}
