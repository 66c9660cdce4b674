// Package types provides type definitions for structured data used throughout the aeo-insights system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/google/uuid"

// Brand is the tracked brand whose answer-engine performance is evaluated
type Brand struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name" validate:"required"`
	Aliases    []string  `json:"aliases,omitempty"`
	// HomepageDomain is the bare host the brand controls (e.g. "acme.com")
	HomepageDomain string `json:"homepage_domain,omitempty"`
}

// Competitor is a competitor tracked for a brand
type Competitor struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Domain string    `json:"domain,omitempty"`
}

// GeneratedQuery is a query sent to answer engines on behalf of a brand
type GeneratedQuery struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Topic *string   `json:"topic,omitempty"`
}

// BrandContext bundles a brand with its competitors for one evaluation run
type BrandContext struct {
	Brand       Brand        `json:"brand"`
	Competitors []Competitor `json:"competitors"`
}

// CompetitorNames returns competitor names in stored order
func (bc *BrandContext) CompetitorNames() []string {
	names := make([]string, 0, len(bc.Competitors))
	for _, c := range bc.Competitors {
		names = append(names, c.Name)
	}
	return names
}

// CompetitorDomains returns the non-empty competitor domains
func (bc *BrandContext) CompetitorDomains() []string {
	domains := make([]string, 0, len(bc.Competitors))
	for _, c := range bc.Competitors {
		if c.Domain != "" {
			domains = append(domains, c.Domain)
		}
	}
	return domains
}
