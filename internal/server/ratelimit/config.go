package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Path pattern; "{name}" matches one segment, a trailing "/" matches any suffix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the externally configured knobs. They are populated from the
// ratelimit section of the service configuration.
type Settings struct {
	Enabled              bool
	RecommendationsLimit int
	Window               time.Duration
	Whitelist            string // comma-separated client IDs
	Blacklist            string
}

// FromSettings builds a limiter configuration. Only the generative
// recommendations endpoint gets a strict budget; everything else falls under
// the lenient default.
func FromSettings(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}

	window := s.Window
	if window <= 0 {
		window = time.Hour
	}
	limit := s.RecommendationsLimit
	if limit <= 0 {
		limit = 10
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       parseIPList(s.Whitelist),
		Blacklist:       parseIPList(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(limit, window),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(recommendationsLimit int, window time.Duration) []EndpointConfig {
	burst := max(1, recommendationsLimit/5)
	return []EndpointConfig{
		{Path: "/brands/{brand_id}/recommendations", Method: http.MethodPost, Limit: recommendationsLimit, Window: window, Burst: burst},
		{Path: "/brands/{brand_id}/opportunities", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/aeo/score", Method: http.MethodPost, Limit: 300, Window: time.Minute, Burst: 30},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
