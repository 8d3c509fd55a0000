package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	version   string
	questions []Question
}

func (p fakeProvider) Version() string       { return p.version }
func (p fakeProvider) Questions() []Question { return p.questions }

func TestDefaultCatalogResolves(t *testing.T) {
	c := Default()

	require.Greater(t, c.Len(), 10)
	assert.Equal(t, "builtin/v1", c.Version())

	q, ok := c.Get("q_pain_primary")
	require.True(t, ok)
	assert.Equal(t, PriorityEssential, q.Priority)
	assert.NotEmpty(t, q.PromptText())
}

func TestDefaultCatalogUniqueIDsAndVariants(t *testing.T) {
	c := Default()
	seen := make(map[string]bool)
	for _, q := range c.Questions() {
		assert.False(t, seen[q.ID], "duplicate question id %s", q.ID)
		seen[q.ID] = true

		require.NotEmpty(t, q.Variants, "question %s has no variants", q.ID)
		variantIDs := make(map[string]bool)
		for _, v := range q.Variants {
			assert.False(t, variantIDs[v.ID], "question %s duplicate variant %s", q.ID, v.ID)
			variantIDs[v.ID] = true
			assert.NotEmpty(t, v.Text)
		}
	}
}

func TestNewSkipsDuplicateIDsAcrossProviders(t *testing.T) {
	base := Default().Questions()
	extra := fakeProvider{
		version: "extra/v1",
		questions: []Question{
			{ID: "q_pain_primary", Priority: PriorityOptional}, // shadow attempt
			{ID: "q_extra", Priority: PriorityOptional, Variants: []Variant{{ID: "v1", Text: "Extra?"}}},
		},
	}

	c := New(BuiltinProvider{}, extra)

	assert.Equal(t, len(base)+1, c.Len())
	q, ok := c.Get("q_pain_primary")
	require.True(t, ok)
	assert.Equal(t, PriorityEssential, q.Priority, "earlier provider wins")
	assert.Equal(t, "builtin/v1+extra/v1", c.Version())
}

func TestAppliesTo(t *testing.T) {
	all := Question{Personas: []Persona{PersonaAll}}
	assert.True(t, all.AppliesTo(PersonaUnknown))
	assert.True(t, all.AppliesTo(PersonaFinance))

	finance := Question{Personas: []Persona{PersonaFinance, PersonaOwner}}
	assert.True(t, finance.AppliesTo(PersonaFinance))
	assert.False(t, finance.AppliesTo(PersonaTechnical))
	assert.False(t, finance.AppliesTo(PersonaUnknown))

	unrestricted := Question{}
	assert.True(t, unrestricted.AppliesTo(PersonaTechnical))
}

func TestSafeExtractNeverPanics(t *testing.T) {
	broken := Question{
		ID: "q_broken",
		Extract: func(Answer) Extraction {
			panic("catalog bug")
		},
	}

	ext := broken.SafeExtract(TextAnswer("anything"))
	assert.True(t, ext.IsEmpty())

	missing := Question{ID: "q_missing"}
	assert.True(t, missing.SafeExtract(TextAnswer("x")).IsEmpty())
}

func TestAnswerRaw(t *testing.T) {
	assert.Equal(t, "hello", TextAnswer("hello").Raw())
	assert.Equal(t, "daily", ChoiceAnswer("daily").Raw())
	assert.Equal(t, "CRM, ERP", MultiChoiceAnswer("CRM", "ERP").Raw())
	assert.Equal(t, "12", ScaleAnswer(12).Raw())
	assert.True(t, TextAnswer("  ").IsEmpty())
}
