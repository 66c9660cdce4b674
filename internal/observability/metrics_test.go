package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInit_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestObserveLLMCall(t *testing.T) {
	before := testutil.CollectAndCount(LLMRequestDuration)

	var err error
	ObserveLLMCall("gemini", "lite", time.Now(), &err)
	err = errors.New("boom")
	ObserveLLMCall("gemini", "lite", time.Now(), &err)
	ObserveLLMCall("openai", "standard", time.Now(), nil)

	// one series per distinct label set
	assert.GreaterOrEqual(t, testutil.CollectAndCount(LLMRequestDuration), before+2)
	assert.LessOrEqual(t, testutil.CollectAndCount(LLMRequestDuration), before+3)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(OpportunitiesIdentified.WithLabelValues("Critical"))
	OpportunitiesIdentified.WithLabelValues("Critical").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(OpportunitiesIdentified.WithLabelValues("Critical")))
}
