package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/leadlens-ai/leadlens/internal/llm"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// Controlled tag vocabulary for answer classification. Model output outside
// this list is discarded.
const (
	TagManualProcess       = "manual_process"
	TagMissingMetric       = "missing_metric"
	TagKeyPersonDependency = "key_person_dependency"
	TagToolSprawl          = "tool_sprawl"
	TagComplianceRisk      = "compliance_risk"
	TagGrowthBlocker       = "growth_blocker"
)

// TagVocabulary lists every accepted classification tag.
func TagVocabulary() []string {
	return []string{
		TagManualProcess,
		TagMissingMetric,
		TagKeyPersonDependency,
		TagToolSprawl,
		TagComplianceRisk,
		TagGrowthBlocker,
	}
}

const taggingSystemPrompt = `You classify one interview answer from a business-process interview.
Respond with exactly one JSON object of the form {"tags": ["..."]} and nothing else.
Only use tags from this list: manual_process, missing_metric, key_person_dependency,
tool_sprawl, compliance_risk, growth_blocker. Use an empty list when none apply.`

// Tagger classifies free-text answers into the controlled vocabulary via the
// language model. Tagging is advisory: every failure degrades to an empty tag
// list and the interview proceeds regardless.
type Tagger struct {
	client      llm.Client
	model       string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	logger      *logging.Logger
	metrics     *metrics.InterviewMetrics
}

// TaggerOption customizes a Tagger.
type TaggerOption func(*Tagger)

// WithTaggerTimeout bounds each classification call.
func WithTaggerTimeout(d time.Duration) TaggerOption {
	return func(t *Tagger) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithTaggerLogger overrides the default logger.
func WithTaggerLogger(logger *logging.Logger) TaggerOption {
	return func(t *Tagger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTaggerMetrics wires the observability counters.
func WithTaggerMetrics(m *metrics.InterviewMetrics) TaggerOption {
	return func(t *Tagger) { t.metrics = m }
}

// NewTagger builds a tagger over the given provider.
func NewTagger(client llm.Client, model string, opts ...TaggerOption) *Tagger {
	if client == nil {
		panic("orchestrator: llm client cannot be nil")
	}
	t := &Tagger{
		client:      client,
		model:       model,
		maxTokens:   150,
		temperature: 0,
		timeout:     8 * time.Second,
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tagResponse struct {
	Tags []string `json:"tags"`
}

// ExtractTags classifies one answer. It retries once on a failed call (the
// result never blocks interview progress, so one retry is cheap) and returns
// an empty list on any failure or malformed response.
func (t *Tagger) ExtractTags(ctx context.Context, question, answer string) []string {
	if strings.TrimSpace(answer) == "" {
		return nil
	}

	prompt := "Question: " + question + "\nAnswer: " + answer

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		tags, err := t.call(ctx, prompt)
		if err == nil {
			return tags
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	t.logger.Warn("tag extraction failed, continuing without tags", "error", lastErr.Error())
	t.metrics.ObserveSelectionError("tagging", "call_failed")
	return nil
}

func (t *Tagger) call(ctx context.Context, prompt string) ([]string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	started := time.Now()
	resp, err := t.client.Complete(callCtx, llm.Request{
		Model:       t.model,
		System:      []string{taggingSystemPrompt},
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: prompt}},
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
		JSONOnly:    true,
	})
	t.metrics.ObserveSelectionLatency("tagging", time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	var parsed tagResponse
	if err := llm.ExtractJSON(resp.Text, &parsed); err != nil {
		return nil, err
	}
	return filterToVocabulary(parsed.Tags), nil
}

func filterToVocabulary(tags []string) []string {
	allowed := make(map[string]bool, 6)
	for _, t := range TagVocabulary() {
		allowed[t] = true
	}
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if allowed[tag] && !seen[tag] {
			out = append(out, tag)
			seen[tag] = true
		}
	}
	return out
}
