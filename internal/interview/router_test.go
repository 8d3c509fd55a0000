package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

type stubSelector struct {
	result SelectionResult
	err    error
	calls  int
	seen   SelectionRequest
}

func (s *stubSelector) ChooseQuestion(_ context.Context, req SelectionRequest) (SelectionResult, error) {
	s.calls++
	s.seen = req
	if s.err != nil {
		return SelectionResult{}, s.err
	}
	return s.result, nil
}

type testProvider struct {
	questions []catalog.Question
}

func (p testProvider) Version() string               { return "test/v1" }
func (p testProvider) Questions() []catalog.Question { return p.questions }

func newTestRouter(t *testing.T, sel QuestionSelector) *Router {
	t.Helper()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	opts := []RouterOption{WithSelectionTimeout(time.Second)}
	if sel != nil {
		opts = append(opts, WithSelector(sel))
	}
	return NewRouter(catalog.Default(), scorer, opts...)
}

func TestFirstQuestionComesFromEssentialTier(t *testing.T) {
	router := newTestRouter(t, nil)
	c := NewContext("sess-1", 18, time.Now())

	out := router.NextQuestion(context.Background(), c)
	assert.False(t, out.ShouldFinish)
	require.NotNil(t, out.NextQuestion)
	assert.Equal(t, catalog.PriorityEssential, out.NextQuestion.Priority)
	require.NotNil(t, out.Decision)
	assert.Equal(t, RoutingSourceRules, out.Decision.Source)
}

func TestRouterFinishReasonPriority(t *testing.T) {
	router := newTestRouter(t, nil)

	// All essential collected AND over the hard cap: the cap wins.
	c := fillFields(testContext(t), DefaultInventory().Essential...)
	c = withAskedCount(c, 18)
	out := router.NextQuestion(context.Background(), c)
	require.True(t, out.ShouldFinish)
	assert.Equal(t, FinishMaxQuestions, out.FinishReason)

	// All essential at 10 questions finishes with the essential reason.
	c = fillFields(testContext(t), DefaultInventory().Essential...)
	c = withAskedCount(c, 10)
	out = router.NextQuestion(context.Background(), c)
	require.True(t, out.ShouldFinish)
	assert.Equal(t, FinishAllEssential, out.FinishReason)
}

func TestRouterForcesFinishWhenNothingEligible(t *testing.T) {
	cat := catalog.New(testProvider{questions: []catalog.Question{
		{
			ID:       "q_only",
			Category: "pain",
			Input:    catalog.InputText,
			Priority: catalog.PriorityEssential,
			Variants: []catalog.Variant{{ID: "v1", Text: "?"}},
		},
	}})
	router := NewRouter(cat, NewScorer(DefaultInventory(), DefaultFinishPolicy()))

	c := NewContext("sess-1", 18, time.Now())
	c.Asked = append(c.Asked, Exchange{QuestionID: "q_only", Source: SourceCatalog})

	out := router.NextQuestion(context.Background(), c)
	assert.True(t, out.ShouldFinish)
	assert.Equal(t, FinishAllEssential, out.FinishReason)
	assert.Nil(t, out.NextQuestion)
}

func TestDirectPickSkipsModelForTwoCandidates(t *testing.T) {
	sel := &stubSelector{result: SelectionResult{QuestionID: "q_optional"}}
	cat := catalog.New(testProvider{questions: []catalog.Question{
		{
			ID:       "q_optional",
			Category: "tooling",
			Input:    catalog.InputText,
			Priority: catalog.PriorityOptional,
			Variants: []catalog.Variant{{ID: "v1", Text: "Tools?"}},
		},
		{
			ID:       "q_essential",
			Category: "pain",
			Input:    catalog.InputText,
			Priority: catalog.PriorityEssential,
			Variants: []catalog.Variant{{ID: "v1", Text: "Pain?"}},
		},
	}})
	router := NewRouter(cat, NewScorer(DefaultInventory(), DefaultFinishPolicy()), WithSelector(sel))

	out := router.NextQuestion(context.Background(), NewContext("sess-1", 18, time.Now()))
	require.NotNil(t, out.NextQuestion)
	assert.Equal(t, "q_essential", out.NextQuestion.ID, "essential tier outranks optional")
	assert.Equal(t, RoutingSourceDirect, out.Decision.Source)
	assert.Equal(t, 0, sel.calls, "two candidates never reach the model")
	assert.GreaterOrEqual(t, out.Decision.Confidence, 0.85)
}

func TestModelSelectionValidated(t *testing.T) {
	sel := &stubSelector{result: SelectionResult{
		QuestionID: "q_goals_primary",
		Reasoning:  "goals are still unknown",
	}}
	router := newTestRouter(t, sel)

	out := router.NextQuestion(context.Background(), NewContext("sess-1", 18, time.Now()))
	require.NotNil(t, out.NextQuestion)
	assert.Equal(t, "q_goals_primary", out.NextQuestion.ID)
	assert.Equal(t, RoutingSourceModel, out.Decision.Source)
	assert.Equal(t, "goals are still unknown", out.Decision.Reasoning)
	assert.GreaterOrEqual(t, out.Decision.Confidence, 0.85)
	assert.Equal(t, 1, sel.calls)
	assert.LessOrEqual(t, len(sel.seen.Candidates), 8, "prompt is bounded to 8 candidates")
}

func TestModelFailureFallsBackToRules(t *testing.T) {
	sel := &stubSelector{err: errors.New("timeout")}
	router := newTestRouter(t, sel)

	out := router.NextQuestion(context.Background(), NewContext("sess-1", 18, time.Now()))
	require.NotNil(t, out.NextQuestion, "fallback still yields a question")
	assert.Equal(t, RoutingSourceRules, out.Decision.Source)
	assert.True(t, Eligible(NewContext("sess-1", 18, time.Now()), *out.NextQuestion))
	assert.LessOrEqual(t, out.Decision.Confidence, 0.7)
	assert.GreaterOrEqual(t, out.Decision.Confidence, 0.5)
}

func TestInvalidModelChoiceIsDiscarded(t *testing.T) {
	sel := &stubSelector{result: SelectionResult{QuestionID: "q_not_in_catalog"}}
	router := newTestRouter(t, sel)

	out := router.NextQuestion(context.Background(), NewContext("sess-1", 18, time.Now()))
	require.NotNil(t, out.NextQuestion)
	assert.NotEqual(t, "q_not_in_catalog", out.NextQuestion.ID)
	assert.Equal(t, RoutingSourceRules, out.Decision.Source)
	assert.LessOrEqual(t, out.Decision.Confidence, 0.5)
}

func TestRouterNeverReturnsIneligibleQuestion(t *testing.T) {
	router := newTestRouter(t, nil)
	scorer := router.Scorer()
	now := time.Now()
	c := NewContext("sess-1", 18, now)

	// Drive a full deterministic interview and check every pick.
	for i := 0; i < 30; i++ {
		out := router.NextQuestion(context.Background(), c)
		if out.ShouldFinish {
			return
		}
		require.NotNil(t, out.NextQuestion)
		q := *out.NextQuestion
		require.True(t, Eligible(c, q), "ineligible pick %s on turn %d", q.ID, i)

		c = Apply(c, q, AnswerInput{
			QuestionID: q.ID,
			Answer:     answerFor(q),
		}, scorer, now)
	}
	t.Fatal("interview did not finish within 30 turns")
}

func TestFallbackPrefersQuantificationOnLacksMetrics(t *testing.T) {
	sel := &stubSelector{err: errors.New("unavailable")}
	router := newTestRouter(t, sel)

	c := fillFields(testContext(t), DefaultInventory().Essential...)
	c.Signals.LacksMetrics = true

	out := router.NextQuestion(context.Background(), c)
	require.NotNil(t, out.NextQuestion)
	assert.True(t, out.NextQuestion.HasTag(catalog.TagQuantification),
		"lacks-metrics fallback should chase numbers, got %s", out.NextQuestion.ID)
}

func answerFor(q catalog.Question) catalog.Answer {
	switch q.Input {
	case catalog.InputChoice:
		if len(q.Options) > 0 {
			return catalog.ChoiceAnswer(q.Options[0])
		}
		return catalog.ChoiceAnswer("yes")
	case catalog.InputMultiChoice:
		if len(q.Options) > 0 {
			return catalog.MultiChoiceAnswer(q.Options[0])
		}
		return catalog.MultiChoiceAnswer("other")
	case catalog.InputScale:
		return catalog.ScaleAnswer(12)
	default:
		return catalog.TextAnswer("a straightforward answer with numbers: 42")
	}
}
