package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// OpportunitiesIdentified counts emitted opportunities by severity.
	OpportunitiesIdentified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_opportunities_identified_total",
			Help: "Opportunities emitted by identify runs",
		},
		[]string{"severity"},
	)

	// IdentifyRuns counts identify runs by outcome.
	IdentifyRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_identify_runs_total",
			Help: "Identify-opportunities runs by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationRuns counts conversion runs by outcome.
	RecommendationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_recommendation_runs_total",
			Help: "Convert-to-recommendations runs by outcome",
		},
		[]string{"outcome"},
	)

	// DomainResolutions counts domain-context resolutions by outcome.
	DomainResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_domain_resolutions_total",
			Help: "Domain context resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// ScoreRequests counts scored documents by content type and cache result.
	ScoreRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_score_requests_total",
			Help: "Scored documents by content type and cache result",
		},
		[]string{"content_type", "cache"},
	)

	// LLMRequestDuration observes generative call latency.
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aeo_llm_request_duration_seconds",
			Help:    "Generative call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "tier", "status"},
	)

	// HTTPRequestDuration tracks API latency by route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aeo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(OpportunitiesIdentified)
		prometheus.MustRegister(IdentifyRuns)
		prometheus.MustRegister(RecommendationRuns)
		prometheus.MustRegister(DomainResolutions)
		prometheus.MustRegister(ScoreRequests)
		prometheus.MustRegister(LLMRequestDuration)
		prometheus.MustRegister(HTTPRequestDuration)
	})
}

// ObserveLLMCall records the latency of a generative call. Use it deferred with
// the named error result: defer ObserveLLMCall(p, tier, time.Now(), &err).
func ObserveLLMCall(provider, tier string, start time.Time, errp *error) {
	status := "ok"
	if errp != nil && *errp != nil {
		status = "error"
	}
	LLMRequestDuration.WithLabelValues(provider, tier, status).Observe(time.Since(start).Seconds())
}
