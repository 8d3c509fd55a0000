package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

func mustGet(t *testing.T, cat *catalog.Catalog, id string) catalog.Question {
	t.Helper()
	q, ok := cat.Get(id)
	require.True(t, ok, "catalog question %s", id)
	return q
}

func TestApplyExtractsAndRecords(t *testing.T) {
	cat := catalog.Default()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	c := NewContext("sess-1", 18, now)
	q := mustGet(t, cat, "q_company_industry")

	next := Apply(c, q, AnswerInput{
		QuestionID: q.ID,
		Answer:     catalog.TextAnswer("We run a small logistics company"),
	}, scorer, now.Add(time.Minute))

	assert.True(t, next.FieldPresent(catalog.FieldIndustry))
	assert.Equal(t, 1, next.QuestionsAsked())
	assert.True(t, next.HasAnswered(q.ID))
	assert.Equal(t, 17, next.RemainingBudget)
	assert.Equal(t, next.Completion, scorer.Score(next), "completion is recomputed on apply")

	// The input context is untouched.
	assert.Equal(t, 0, c.QuestionsAsked())
	assert.False(t, c.FieldPresent(catalog.FieldIndustry))
	assert.Equal(t, 18, c.RemainingBudget)
}

func TestApplyIgnoresDuplicateQuestion(t *testing.T) {
	cat := catalog.Default()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	q := mustGet(t, cat, "q_company_industry")
	in := AnswerInput{QuestionID: q.ID, Answer: catalog.TextAnswer("logistics")}

	once := Apply(c, q, in, scorer, now)
	twice := Apply(once, q, in, scorer, now)

	assert.Equal(t, 1, twice.QuestionsAsked())

	seen := map[string]bool{}
	for _, ex := range twice.Asked {
		assert.False(t, seen[ex.QuestionID], "duplicate question id %s", ex.QuestionID)
		seen[ex.QuestionID] = true
	}
}

func TestApplyIsNoOpOnTerminalContext(t *testing.T) {
	cat := catalog.Default()
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	c.Terminal = true
	q := mustGet(t, cat, "q_company_industry")

	next := Apply(c, q, AnswerInput{QuestionID: q.ID, Answer: catalog.TextAnswer("retail")}, nil, now)
	assert.Equal(t, 0, next.QuestionsAsked())
	assert.False(t, next.FieldPresent(catalog.FieldIndustry))
}

func TestApplyMergesSignalsMonotonically(t *testing.T) {
	cat := catalog.Default()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	pain := mustGet(t, cat, "q_pain_primary")
	cost := mustGet(t, cat, "q_pain_cost")

	c = Apply(c, pain, AnswerInput{
		QuestionID: pain.ID,
		Answer:     catalog.TextAnswer("I'm not sure, maybe the invoicing backlog"),
	}, scorer, now)
	require.True(t, c.Signals.Vague)

	// A later confident answer must not clear the vague flag.
	c = Apply(c, cost, AnswerInput{
		QuestionID: cost.ID,
		Answer:     catalog.TextAnswer("around 3000 dollars a month in wasted wages"),
	}, scorer, now)
	assert.True(t, c.Signals.Vague)
}

func TestApplyAccumulatesTopicsWithoutDuplicates(t *testing.T) {
	cat := catalog.Default()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	pain := mustGet(t, cat, "q_pain_primary")
	freq := mustGet(t, cat, "q_pain_frequency")

	c = Apply(c, pain, AnswerInput{QuestionID: pain.ID, Answer: catalog.TextAnswer("manual invoicing")}, scorer, now)
	c = Apply(c, freq, AnswerInput{QuestionID: freq.ID, Answer: catalog.ChoiceAnswer("weekly")}, scorer, now)

	counts := map[string]int{}
	for _, topic := range c.Topics {
		counts[topic]++
		assert.Equal(t, 1, counts[topic], "topic %s appears once", topic)
	}
}

func TestApplyDetectsPersona(t *testing.T) {
	cat := catalog.Default()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	q := mustGet(t, cat, "q_company_industry")

	c = Apply(c, q, AnswerInput{
		QuestionID: q.ID,
		Answer:     catalog.TextAnswer("I'm the founder, my company does last-mile delivery"),
	}, scorer, now)

	assert.Equal(t, catalog.PersonaOwner, c.Persona)
	assert.Greater(t, c.PersonaConfidence, 0.0)
	assert.LessOrEqual(t, c.PersonaConfidence, 1.0)
}

func TestApplyUpdatesInsights(t *testing.T) {
	cat := catalog.Default()
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	q := mustGet(t, cat, "q_pain_primary")

	c = Apply(c, q, AnswerInput{
		QuestionID: q.ID,
		Answer:     catalog.TextAnswer("We juggle Salesforce and QuickBooks and it needs fixing asap"),
	}, scorer, now)

	assert.Contains(t, c.Insights.ToolsMentioned, "salesforce")
	assert.Contains(t, c.Insights.ToolsMentioned, "quickbooks")
	assert.Equal(t, UrgencyElevated, c.Insights.Urgency)

	// Urgency never de-escalates.
	c2 := Apply(c, mustGet(t, cat, "q_goals_primary"), AnswerInput{
		QuestionID: "q_goals_primary",
		Answer:     catalog.TextAnswer("grow revenue without adding headcount"),
	}, scorer, now)
	assert.Equal(t, UrgencyElevated, c2.Insights.Urgency)
}

func TestGeneratedFollowUpDoesNotBlockCatalogQuestion(t *testing.T) {
	scorer := NewScorer(DefaultInventory(), DefaultFinishPolicy())
	now := time.Now()

	c := NewContext("sess-1", 18, now)
	followUp := catalog.Question{ID: "fu_1", Input: catalog.InputText}
	c = Apply(c, followUp, AnswerInput{
		QuestionID: "fu_1",
		Source:     SourceGenerated,
		Answer:     catalog.TextAnswer("mostly the handoffs between teams"),
	}, scorer, now)

	assert.Equal(t, 1, c.QuestionsAsked())
	assert.False(t, c.HasAnswered("fu_1"), "generated questions do not consume catalog ids")
}
