package types

import "github.com/google/uuid"

// ContributionModel is how content realistically reaches a domain
type ContributionModel string

// ContributionModel constants
const (
	ContributionDirectPublish ContributionModel = "direct_publish"
	ContributionEarnedMedia   ContributionModel = "earned_media"
	ContributionPaidPlacement ContributionModel = "paid_placement"
	ContributionCommunity     ContributionModel = "community"
)

// Recommended action verbs
const (
	ActionPublish        = "Publish"
	ActionPitch          = "Pitch"
	ActionPost           = "Post"
	ActionMonitorCounter = "Monitor/Counter"
	ActionSponsor        = "Sponsor"
)

// DomainClassification describes how a brand can act on one domain for one query
type DomainClassification struct {
	Domain                string            `json:"domain"`
	QueryID               uuid.UUID         `json:"query_id"`
	BestContentTypes      []string          `json:"best_content_types"`
	ContributionModel     ContributionModel `json:"contribution_model"`
	RecommendedActionVerb string            `json:"recommended_action_verb"`
	Rationale             string            `json:"rationale"`
}

// DomainClassifications maps query id to domain to classification
type DomainClassifications map[uuid.UUID]map[string]DomainClassification

// QueryContext is the per-query input to domain resolution and recommendation drafting
type QueryContext struct {
	QueryID          uuid.UUID `json:"query_id"`
	QueryText        string    `json:"query_text"`
	CandidateDomains []string  `json:"candidate_domains"`
}
