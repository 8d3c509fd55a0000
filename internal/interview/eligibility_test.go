package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

func TestEligible(t *testing.T) {
	base := catalog.Question{
		ID:       "q_test",
		Category: "pain",
		Input:    catalog.InputText,
		Priority: catalog.PriorityImportant,
		Personas: []catalog.Persona{catalog.PersonaAll},
	}

	tests := []struct {
		name    string
		setup   func(c *Context)
		mutate  func(q *catalog.Question)
		want    bool
	}{
		{
			name: "fresh context, unrestricted question",
			want: true,
		},
		{
			name: "already answered",
			setup: func(c *Context) {
				c.Asked = append(c.Asked, Exchange{QuestionID: "q_test", Source: SourceCatalog})
			},
			want: false,
		},
		{
			name: "persona mismatch",
			mutate: func(q *catalog.Question) {
				q.Personas = []catalog.Persona{catalog.PersonaFinance}
			},
			setup: func(c *Context) { c.Persona = catalog.PersonaOwner },
			want:  false,
		},
		{
			name: "empty persona list applies to unknown",
			mutate: func(q *catalog.Question) {
				q.Personas = nil
			},
			want: true,
		},
		{
			name: "persona confidence below requirement",
			mutate: func(q *catalog.Question) {
				q.Eligibility.MinPersonaConfidence = 0.5
			},
			setup: func(c *Context) {
				c.Persona = catalog.PersonaOwner
				c.PersonaConfidence = 0.3
			},
			want: false,
		},
		{
			name: "persona confidence meets requirement",
			mutate: func(q *catalog.Question) {
				q.Eligibility.MinPersonaConfidence = 0.5
			},
			setup: func(c *Context) {
				c.Persona = catalog.PersonaOwner
				c.PersonaConfidence = 0.6
			},
			want: true,
		},
		{
			name: "required field missing",
			mutate: func(q *catalog.Question) {
				q.Eligibility.RequiresFields = []string{catalog.FieldPainPrimary}
			},
			want: false,
		},
		{
			name: "required field present",
			mutate: func(q *catalog.Question) {
				q.Eligibility.RequiresFields = []string{catalog.FieldPainPrimary}
			},
			setup: func(c *Context) { c.Assessment.Set(catalog.FieldPainPrimary, "churn") },
			want:  true,
		},
		{
			name: "required topic missing",
			mutate: func(q *catalog.Question) {
				q.Eligibility.RequiresTopics = []string{"tooling"}
			},
			want: false,
		},
		{
			name: "skipIf field present",
			mutate: func(q *catalog.Question) {
				q.Eligibility.SkipIfFields = []string{catalog.FieldDecisionMaker}
			},
			setup: func(c *Context) { c.Assessment.Set(catalog.FieldDecisionMaker, "yes") },
			want:  false,
		},
		{
			name: "skipIf topic covered",
			mutate: func(q *catalog.Question) {
				q.Eligibility.SkipIfTopics = []string{"competitors"}
			},
			setup: func(c *Context) { c.Topics = []string{"competitors"} },
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext("sess-1", 18, time.Now())
			if tt.setup != nil {
				tt.setup(&c)
			}
			q := base
			if tt.mutate != nil {
				tt.mutate(&q)
			}
			assert.Equal(t, tt.want, Eligible(c, q))
		})
	}
}

func TestPriorityScore(t *testing.T) {
	c := NewContext("sess-1", 18, time.Now())
	comp := Completion{Gaps: []string{"pain.cost_estimate"}}

	essential := catalog.Question{ID: "e", Priority: catalog.PriorityEssential, Category: "goals"}
	assert.Equal(t, 100, PriorityScore(c, comp, essential))

	important := catalog.Question{ID: "i", Priority: catalog.PriorityImportant, Category: "goals"}
	assert.Equal(t, 50, PriorityScore(c, comp, important))

	optional := catalog.Question{ID: "o", Priority: catalog.PriorityOptional, Category: "goals"}
	assert.Equal(t, 20, PriorityScore(c, comp, optional))

	// Gap category bonus.
	gapMatch := catalog.Question{ID: "g", Priority: catalog.PriorityImportant, Category: "pain"}
	assert.Equal(t, 90, PriorityScore(c, comp, gapMatch))

	// Exact persona bonus requires the persona to be listed, not "all".
	c.Persona = catalog.PersonaFinance
	listed := catalog.Question{
		ID:       "p",
		Priority: catalog.PriorityOptional,
		Category: "goals",
		Personas: []catalog.Persona{catalog.PersonaFinance},
	}
	assert.Equal(t, 50, PriorityScore(c, comp, listed))
	viaAll := catalog.Question{
		ID:       "p2",
		Priority: catalog.PriorityOptional,
		Category: "goals",
		Personas: []catalog.Persona{catalog.PersonaAll},
	}
	assert.Equal(t, 20, PriorityScore(c, comp, viaAll))

	// Quantification bonus under an active lacks-metrics signal.
	c.Signals.LacksMetrics = true
	quant := catalog.Question{
		ID:       "q",
		Priority: catalog.PriorityImportant,
		Category: "process",
		Tags:     []string{catalog.TagQuantification},
	}
	assert.Equal(t, 100, PriorityScore(c, comp, quant))

	// Budget questions get a push when urgency is critical.
	c.Insights.Urgency = UrgencyCritical
	budget := catalog.Question{ID: "b", Priority: catalog.PriorityImportant, Category: "budget"}
	assert.Equal(t, 80, PriorityScore(c, comp, budget))
}
