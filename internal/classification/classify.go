// Package classification assigns each tracked query to an opportunity category
// based on which brand and competitor names appear in its text.
package classification

import (
	"strings"

	"github.com/jonathan/aeo-insights/internal/types"
)

// Classify determines the category of a query.
//
// The brand is present if its name or any alias occurs in the query, ignoring case.
// Each competitor is matched independently. Category 1 requires the brand and at
// least one competitor, category 2 the brand alone. Everything else is category 3,
// which compares the brand against every tracked competitor, so CompetitorsInQuery
// then lists all of them.
func Classify(queryText, brandName string, brandAliases, competitorNames []string) types.Classification {
	text := strings.ToLower(queryText)

	hasBrand := containsName(text, brandName)
	for _, alias := range brandAliases {
		if hasBrand {
			break
		}
		hasBrand = containsName(text, alias)
	}

	var present []string
	for _, name := range competitorNames {
		if containsName(text, name) {
			present = append(present, name)
		}
	}

	switch {
	case hasBrand && len(present) > 0:
		return types.Classification{Category: types.CategoryBrandAndCompetitor, CompetitorsInQuery: present}
	case hasBrand:
		return types.Classification{Category: types.CategoryBrandOnly, CompetitorsInQuery: []string{}}
	default:
		all := make([]string, 0, len(competitorNames))
		for _, name := range competitorNames {
			if strings.TrimSpace(name) != "" {
				all = append(all, name)
			}
		}
		return types.Classification{Category: types.CategoryUnbiased, CompetitorsInQuery: all}
	}
}

// ClassifyForBrand is Classify with the names taken from a BrandContext.
func ClassifyForBrand(queryText string, bc *types.BrandContext) types.Classification {
	return Classify(queryText, bc.Brand.Name, bc.Brand.Aliases, bc.CompetitorNames())
}

// containsName reports whether the lowercased text contains name. Blank names never match.
func containsName(lowerText, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.Contains(lowerText, strings.ToLower(name))
}
