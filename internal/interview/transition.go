package interview

import (
	"time"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

// AnswerInput is the turn payload applied to a context.
type AnswerInput struct {
	QuestionID string
	VariantID  string
	Prompt     string
	Answer     catalog.Answer
	Source     QuestionSource
}

// Apply folds one answered question into the context and returns the updated
// copy. It is the only way session state changes: extraction, topic and
// metric accumulation, weak-signal merging, persona and insight updates, and
// completion recomputation all happen here. The input context is never
// mutated.
//
// A duplicate catalog question id or a terminal context is a no-op apart
// from the timestamp refresh.
func Apply(c Context, q catalog.Question, in AnswerInput, scorer *Scorer, now time.Time) Context {
	next := c.Clone()
	next.UpdatedAt = now.UTC()
	if next.Terminal {
		return next
	}
	if in.Source == "" {
		in.Source = SourceCatalog
	}
	if in.Source == SourceCatalog && next.HasAnswered(q.ID) {
		return next
	}

	ext := q.SafeExtract(in.Answer)
	next.Assessment.Merge(ext.Fields)
	for _, topic := range ext.Topics {
		if !next.TopicCovered(topic) {
			next.Topics = append(next.Topics, topic)
		}
	}
	for _, metric := range ext.Metrics {
		if !containsString(next.Metrics, metric) {
			next.Metrics = append(next.Metrics, metric)
		}
	}

	next.Signals = next.Signals.Merge(DetectWeakSignals(in.Answer, q))
	updatePersona(&next, in.Answer.Raw())
	updateInsights(&next, in.Answer.Raw(), ext)

	prompt := in.Prompt
	if prompt == "" {
		prompt = q.PromptText()
	}
	next.Asked = append(next.Asked, Exchange{
		QuestionID: in.QuestionID,
		VariantID:  in.VariantID,
		Prompt:     prompt,
		Answer:     in.Answer,
		Source:     in.Source,
		AskedAt:    now.UTC(),
	})
	if next.RemainingBudget > 0 {
		next.RemainingBudget--
	}

	if scorer != nil {
		next.Completion = scorer.Score(next)
	}
	return next
}
