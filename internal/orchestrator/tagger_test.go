package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens-ai/leadlens/internal/llm"
)

type stubLLM struct {
	responses []string
	errs      []error
	calls     int
	lastReq   llm.Request
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	i := s.calls
	s.calls++
	s.lastReq = req
	if i < len(s.errs) && s.errs[i] != nil {
		return llm.Response{}, s.errs[i]
	}
	text := ""
	if i < len(s.responses) {
		text = s.responses[i]
	}
	return llm.Response{Text: text}, nil
}

func TestExtractTagsParsesVocabulary(t *testing.T) {
	client := &stubLLM{responses: []string{`{"tags": ["manual_process", "missing_metric"]}`}}
	tagger := NewTagger(client, "test-model")

	tags := tagger.ExtractTags(context.Background(), "How do you invoice?", "We retype everything into spreadsheets by hand")
	assert.Equal(t, []string{TagManualProcess, TagMissingMetric}, tags)
	assert.Equal(t, 1, client.calls)
}

func TestExtractTagsFiltersUnknownTags(t *testing.T) {
	client := &stubLLM{responses: []string{`{"tags": ["manual_process", "made_up_tag", "MANUAL_PROCESS"]}`}}
	tagger := NewTagger(client, "test-model")

	tags := tagger.ExtractTags(context.Background(), "q", "a long enough answer")
	assert.Equal(t, []string{TagManualProcess}, tags, "unknown tags dropped, duplicates collapsed")
}

func TestExtractTagsFencedResponse(t *testing.T) {
	client := &stubLLM{responses: []string{"Here you go:\n```json\n{\"tags\": [\"tool_sprawl\"]}\n```"}}
	tagger := NewTagger(client, "test-model")

	tags := tagger.ExtractTags(context.Background(), "q", "we use six different tools")
	assert.Equal(t, []string{TagToolSprawl}, tags)
}

func TestExtractTagsEmptyOnFailure(t *testing.T) {
	client := &stubLLM{errs: []error{errors.New("throttled"), errors.New("throttled")}}
	tagger := NewTagger(client, "test-model")

	tags := tagger.ExtractTags(context.Background(), "q", "some answer")
	assert.Empty(t, tags)
	assert.Equal(t, 2, client.calls, "one retry, then give up")
}

func TestExtractTagsRetriesOnce(t *testing.T) {
	client := &stubLLM{
		errs:      []error{errors.New("flaky"), nil},
		responses: []string{"", `{"tags": ["growth_blocker"]}`},
	}
	tagger := NewTagger(client, "test-model")

	tags := tagger.ExtractTags(context.Background(), "q", "we cannot take on more clients")
	assert.Equal(t, []string{TagGrowthBlocker}, tags)
	assert.Equal(t, 2, client.calls)
}

func TestExtractTagsEmptyOnMalformedResponse(t *testing.T) {
	client := &stubLLM{responses: []string{"no json here", "still no json"}}
	tagger := NewTagger(client, "test-model")

	assert.Empty(t, tagger.ExtractTags(context.Background(), "q", "some answer"))
}

func TestExtractTagsSkipsEmptyAnswer(t *testing.T) {
	client := &stubLLM{}
	tagger := NewTagger(client, "test-model")

	assert.Empty(t, tagger.ExtractTags(context.Background(), "q", "   "))
	assert.Equal(t, 0, client.calls)
}

func TestTaggerPromptCarriesQuestionAndAnswer(t *testing.T) {
	client := &stubLLM{responses: []string{`{"tags": []}`}}
	tagger := NewTagger(client, "test-model")

	tagger.ExtractTags(context.Background(), "What slows you down?", "Chasing signatures")
	require.Len(t, client.lastReq.Messages, 1)
	assert.Contains(t, client.lastReq.Messages[0].Content, "What slows you down?")
	assert.Contains(t, client.lastReq.Messages[0].Content, "Chasing signatures")
	require.Len(t, client.lastReq.System, 1)
	assert.Contains(t, client.lastReq.System[0], `{"tags"`)
}
