package sourcing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/types"
)

// TopDomains aggregates citation usage per query and normalized domain and
// returns the n most used domains per query. Ties are broken by domain name.
func TopDomains(citations []types.Citation, n int) map[uuid.UUID][]string {
	usage := make(map[uuid.UUID]map[string]int)
	for _, c := range citations {
		d := NormalizeDomain(c.Domain)
		if d == "" {
			d = NormalizeDomain(c.URL)
		}
		if d == "" {
			continue
		}
		if usage[c.QueryID] == nil {
			usage[c.QueryID] = make(map[string]int)
		}
		usage[c.QueryID][d] += max(c.UsageCount, 1)
	}

	out := make(map[uuid.UUID][]string, len(usage))
	for id, byDomain := range usage {
		domains := make([]string, 0, len(byDomain))
		for d := range byDomain {
			domains = append(domains, d)
		}
		sort.Slice(domains, func(i, j int) bool {
			if byDomain[domains[i]] != byDomain[domains[j]] {
				return byDomain[domains[i]] > byDomain[domains[j]]
			}
			return domains[i] < domains[j]
		})
		if n > 0 && len(domains) > n {
			domains = domains[:n]
		}
		out[id] = domains
	}
	return out
}
