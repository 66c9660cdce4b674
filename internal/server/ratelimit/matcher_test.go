package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/brands/{brand_id}/recommendations", Method: http.MethodPost, Limit: 10},
		{Path: "/aeo/score", Method: http.MethodPost, Limit: 300},
		{Path: "/admin/", Method: http.MethodPost, Limit: 5},
	}

	tests := []struct {
		name   string
		path   string
		method string
		want   int // -1 means no match
	}{
		{"path parameter", "/brands/acme/recommendations", http.MethodPost, 10},
		{"trailing slash tolerated", "/brands/acme/recommendations/", http.MethodPost, 10},
		{"empty parameter", "/brands//recommendations", http.MethodPost, -1},
		{"wrong method", "/brands/acme/recommendations", http.MethodGet, -1},
		{"extra segment", "/brands/acme/recommendations/x", http.MethodPost, -1},
		{"exact", "/aeo/score", http.MethodPost, 300},
		{"prefix", "/admin/reset", http.MethodPost, 5},
		{"health unlimited", "/health", http.MethodGet, 0},
		{"metrics unlimited", "/metrics", http.MethodGet, 0},
		{"unknown", "/nope", http.MethodGet, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want < 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Limit)
		})
	}
}

func TestFromSettings(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := FromSettings(Settings{Enabled: false, RecommendationsLimit: 10})
		assert.False(t, cfg.Enabled)
		assert.Empty(t, cfg.EndpointConfigs)
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := FromSettings(Settings{
			Enabled:              true,
			RecommendationsLimit: 20,
			Window:               30 * time.Minute,
			Whitelist:            "10.0.0.1, 10.0.0.2,",
			Blacklist:            "1.2.3.4",
		})
		require.True(t, cfg.Enabled)
		assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
		assert.Equal(t, map[string]bool{"1.2.3.4": true}, cfg.Blacklist)

		rec := MatchEndpoint("/brands/x/recommendations", http.MethodPost, cfg.EndpointConfigs)
		require.NotNil(t, rec)
		assert.Equal(t, 20, rec.Limit)
		assert.Equal(t, 30*time.Minute, rec.Window)
		assert.Equal(t, 4, rec.Burst)
	})

	t.Run("fallback values", func(t *testing.T) {
		cfg := FromSettings(Settings{Enabled: true})
		rec := MatchEndpoint("/brands/x/recommendations", http.MethodPost, cfg.EndpointConfigs)
		require.NotNil(t, rec)
		assert.Equal(t, 10, rec.Limit)
		assert.Equal(t, time.Hour, rec.Window)
		assert.Equal(t, 2, rec.Burst)
	})
}
