package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lineguard/pkg/anthropic"
)

func TestExtractText(t *testing.T) {
	resp := &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: "first"},
			{Type: "text", Text: "second"},
			{Type: "text", Text: ""},
		},
	}

	assert.Equal(t, "first\nsecond", extractText(resp))
	assert.Empty(t, extractText(nil))
	assert.Empty(t, extractText(&anthropic.MessageResponse{}))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose wrapping", `Here is the result: {"a": 1} as requested.`, `{"a": 1}`},
		{"fence with preamble", "Sure!\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no json at all", "no object here", "no object here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}
