package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code fence",
			input:    "```json\n{\"recommendations\": []}\n```",
			expected: `{"recommendations": []}`,
		},
		{
			name:     "bare code fence",
			input:    "```\n{\"domains\": []}\n```",
			expected: `{"domains": []}`,
		},
		{
			name:     "plain JSON",
			input:    `{"query_id": "q1"}`,
			expected: `{"query_id": "q1"}`,
		},
		{
			name:     "preamble and trailing chatter",
			input:    "Here are the recommendations:\n{\"recommendations\": [{\"query_id\": \"q1\"}]}\nLet me know!",
			expected: `{"recommendations": [{"query_id": "q1"}]}`,
		},
		{
			name:     "array payload",
			input:    "Result: [\"reddit.com\", \"g2.com\"]",
			expected: `["reddit.com", "g2.com"]`,
		},
		{
			name:     "braces inside strings",
			input:    `{"content_title": "Pricing {2025} guide", "rationale": "He said \"go\""}`,
			expected: `{"content_title": "Pricing {2025} guide", "rationale": "He said \"go\""}`,
		},
		{
			name:     "no JSON at all",
			input:    "  I cannot help with that.  ",
			expected: "I cannot help with that.",
		},
		{
			name:     "unbalanced object returned as is",
			input:    `{"recommendations": [`,
			expected: `{"recommendations": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSONObject(`{"a": {"b": 1}} tail`))
	assert.Equal(t, "", extractJSONObject("not json"))
	assert.Equal(t, "", extractJSONObject(""))
	assert.Equal(t, `[[1, 2], [3]]`, extractJSONArray(`[[1, 2], [3]] tail`))
	assert.Equal(t, "", extractJSONArray(`{"a": 1}`))
}
