package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/llm"
)

type stubLLM struct {
	text string
	err  error
	seen llm.Request
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	s.seen = req
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Text: s.text}, nil
}

func selectionRequest() SelectionRequest {
	return SelectionRequest{
		History: []ExchangeSummary{
			{Question: "What industry are you in?", Answer: "logistics"},
		},
		Persona:           catalog.PersonaOwner,
		PersonaConfidence: 0.5,
		TopicsCovered:     []string{"company", "pain"},
		Signals:           WeakSignals{LacksMetrics: true},
		Guidance:          "quantify the reported pain",
		Candidates: []CandidateQuestion{
			{ID: "q_pain_cost", Priority: catalog.PriorityEssential, Category: "pain", Text: "What does it cost?"},
			{ID: "q_budget_range", Priority: catalog.PriorityImportant, Category: "budget", Text: "Budget?"},
		},
	}
}

func TestLLMSelectorParsesPlainJSON(t *testing.T) {
	client := &stubLLM{text: `{"questionId": "q_pain_cost", "reasoning": "pain is unquantified"}`}
	sel := NewLLMSelector(client, "test-model")

	res, err := sel.ChooseQuestion(context.Background(), selectionRequest())
	require.NoError(t, err)
	assert.Equal(t, "q_pain_cost", res.QuestionID)
	assert.Equal(t, "pain is unquantified", res.Reasoning)
}

func TestLLMSelectorTolerantOfFencesAndProse(t *testing.T) {
	client := &stubLLM{text: "Here is my choice:\n```json\n{\"questionId\": \"q_budget_range\", \"reasoning\": \"budget unknown\"}\n```\nHope that helps."}
	sel := NewLLMSelector(client, "test-model")

	res, err := sel.ChooseQuestion(context.Background(), selectionRequest())
	require.NoError(t, err)
	assert.Equal(t, "q_budget_range", res.QuestionID)
}

func TestLLMSelectorRejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no json at all", "I think the budget question is best."},
		{"truncated object", `{"questionId": "q_budget`},
		{"missing id key", `{"reasoning": "whatever"}`},
		{"empty id", `{"questionId": "", "reasoning": "?"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewLLMSelector(&stubLLM{text: tt.text}, "test-model")
			_, err := sel.ChooseQuestion(context.Background(), selectionRequest())
			assert.Error(t, err)
		})
	}
}

func TestLLMSelectorPropagatesCallFailure(t *testing.T) {
	sel := NewLLMSelector(&stubLLM{err: errors.New("throttled")}, "test-model")
	_, err := sel.ChooseQuestion(context.Background(), selectionRequest())
	assert.Error(t, err)
}

func TestLLMSelectorPromptContents(t *testing.T) {
	client := &stubLLM{text: `{"questionId": "q_pain_cost", "reasoning": "ok"}`}
	sel := NewLLMSelector(client, "test-model")

	_, err := sel.ChooseQuestion(context.Background(), selectionRequest())
	require.NoError(t, err)

	require.Len(t, client.seen.Messages, 1)
	prompt := client.seen.Messages[0].Content
	assert.Contains(t, prompt, "q_pain_cost")
	assert.Contains(t, prompt, "q_budget_range")
	assert.Contains(t, prompt, "owner")
	assert.Contains(t, prompt, "lacks_metrics")
	assert.Contains(t, prompt, "quantify the reported pain")
	assert.Contains(t, prompt, "logistics")
	assert.Equal(t, "test-model", client.seen.Model)
	require.NotEmpty(t, client.seen.System)
	assert.Contains(t, client.seen.System[0], "questionId")
}

func TestLLMSelectorRequiresCandidates(t *testing.T) {
	sel := NewLLMSelector(&stubLLM{text: "{}"}, "test-model")
	_, err := sel.ChooseQuestion(context.Background(), SelectionRequest{})
	assert.Error(t, err)
}
