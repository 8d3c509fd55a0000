package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	QuestionID string   `json:"questionId"`
	Tags       []string `json:"tags"`
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    payload
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"questionId": "q1"}`,
			want: payload{QuestionID: "q1"},
		},
		{
			name: "surrounding prose",
			text: `Sure! The best choice is {"questionId": "q2"} based on the gaps.`,
			want: payload{QuestionID: "q2"},
		},
		{
			name: "markdown fence with language",
			text: "```json\n{\"questionId\": \"q3\"}\n```",
			want: payload{QuestionID: "q3"},
		},
		{
			name: "fence without language",
			text: "```\n{\"tags\": [\"manual_process\", \"tool_sprawl\"]}\n```",
			want: payload{Tags: []string{"manual_process", "tool_sprawl"}},
		},
		{
			name:    "no object at all",
			text:    "I would pick the budget question.",
			wantErr: true,
		},
		{
			name:    "unbalanced braces",
			text:    `{"questionId": "q4"`,
			wantErr: true,
		},
		{
			name:    "malformed interior",
			text:    `{"questionId": q5}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := ExtractJSON(tt.text, &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONNoPartialRecovery(t *testing.T) {
	var got payload
	err := ExtractJSON(`{"questionId": "ok"} and also {"broken": }`, &got)
	// First '{' to last '}' spans both objects; the combined slice is
	// invalid, so the whole response is rejected.
	assert.Error(t, err)
}
