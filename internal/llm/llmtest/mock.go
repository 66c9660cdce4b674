// Package llmtest provides an llm.Client test double.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/aeo-insights/internal/llm"
)

// Call records one invocation of the mock
type Call struct {
	System string
	Prompt string
	Tier   llm.ModelTier
}

// MockClient implements llm.Client for testing
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error)
	GetModelFunc        func(tier llm.ModelTier) string
	CloseFunc           func() error

	mu    sync.Mutex
	calls []Call
}

func (m *MockClient) record(system, prompt string, tier llm.ModelTier) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{System: system, Prompt: prompt, Tier: tier})
	m.mu.Unlock()
}

// Calls returns the recorded invocations in order
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) GenerateContent(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	m.record(system, prompt, tier)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, system, prompt, tier)
	}
	return "", nil
}

func (m *MockClient) GenerateJSON(ctx context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	m.record(system, prompt, tier)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, system, prompt, tier)
	}
	return "{}", nil
}

func (m *MockClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ llm.Client = (*MockClient)(nil)
