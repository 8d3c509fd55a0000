package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leadlens-ai/leadlens/internal/llm"
)

const selectionSystemPrompt = `You are the question router for a B2B lead-qualification interview.
Given the conversation so far and a list of candidate questions, choose the single
best next question. Respond with exactly one JSON object of the form
{"questionId": "<id from the candidate list>", "reasoning": "<one or two sentences>"}
and nothing else.`

// LLMSelector delegates next-question choice to a language model. Any
// malformed response surfaces as an error so the router can fall back.
type LLMSelector struct {
	client      llm.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewLLMSelector builds a selector over the given provider.
func NewLLMSelector(client llm.Client, model string) *LLMSelector {
	if client == nil {
		panic("interview: llm client cannot be nil")
	}
	return &LLMSelector{
		client:      client,
		model:       model,
		maxTokens:   300,
		temperature: 0.2,
	}
}

// ChooseQuestion implements QuestionSelector.
func (s *LLMSelector) ChooseQuestion(ctx context.Context, req SelectionRequest) (SelectionResult, error) {
	if len(req.Candidates) == 0 {
		return SelectionResult{}, errors.New("interview: no candidates to choose from")
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		Model:       s.model,
		System:      []string{selectionSystemPrompt},
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: buildSelectionPrompt(req)}},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		JSONOnly:    true,
	})
	if err != nil {
		return SelectionResult{}, fmt.Errorf("interview: selection call failed: %w", err)
	}

	var result SelectionResult
	if err := llm.ExtractJSON(resp.Text, &result); err != nil {
		return SelectionResult{}, fmt.Errorf("interview: selection response rejected: %w", err)
	}
	if strings.TrimSpace(result.QuestionID) == "" {
		return SelectionResult{}, errors.New("interview: selection response missing questionId")
	}
	return result, nil
}

func buildSelectionPrompt(req SelectionRequest) string {
	var b strings.Builder

	if len(req.History) > 0 {
		b.WriteString("Recent exchanges:\n")
		for _, ex := range req.History {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", ex.Question, ex.Answer)
		}
		b.WriteString("\n")
	}

	persona := string(req.Persona)
	if persona == "" {
		persona = "unknown"
	}
	fmt.Fprintf(&b, "Detected persona: %s (confidence %.2f)\n", persona, req.PersonaConfidence)

	if len(req.TopicsCovered) > 0 {
		fmt.Fprintf(&b, "Topics already covered: %s\n", strings.Join(req.TopicsCovered, ", "))
	}
	if active := activeSignals(req.Signals); len(active) > 0 {
		fmt.Fprintf(&b, "Active weak signals: %s\n", strings.Join(active, ", "))
	}
	if req.Guidance != "" {
		fmt.Fprintf(&b, "Guidance: %s\n", req.Guidance)
	}

	b.WriteString("\nCandidate questions:\n")
	for _, c := range req.Candidates {
		fmt.Fprintf(&b, "- id=%s priority=%s category=%s", c.ID, c.Priority, c.Category)
		if len(c.Tags) > 0 {
			fmt.Fprintf(&b, " tags=%s", strings.Join(c.Tags, ","))
		}
		fmt.Fprintf(&b, "\n  %s\n", c.Text)
	}

	b.WriteString("\nChoose the best next question.")
	return b.String()
}

func activeSignals(s WeakSignals) []string {
	var out []string
	if s.Vague {
		out = append(out, "vague")
	}
	if s.Hesitant {
		out = append(out, "hesitant")
	}
	if s.Contradictory {
		out = append(out, "contradictory")
	}
	if s.LacksMetrics {
		out = append(out, "lacks_metrics")
	}
	if s.Emotional {
		out = append(out, "emotional")
	}
	if s.UnderPressure {
		out = append(out, "under_pressure")
	}
	return out
}
