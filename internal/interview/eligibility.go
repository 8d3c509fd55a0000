package interview

import "github.com/leadlens-ai/leadlens/internal/catalog"

// Eligible reports whether a catalog question may legally be asked given the
// current context.
func Eligible(c Context, q catalog.Question) bool {
	if c.HasAnswered(q.ID) {
		return false
	}
	if !q.AppliesTo(c.Persona) {
		return false
	}
	if q.Eligibility.MinPersonaConfidence > 0 && c.PersonaConfidence < q.Eligibility.MinPersonaConfidence {
		return false
	}
	for _, topic := range q.Eligibility.SkipIfTopics {
		if c.TopicCovered(topic) {
			return false
		}
	}
	for _, field := range q.Eligibility.SkipIfFields {
		if c.FieldPresent(field) {
			return false
		}
	}
	for _, field := range q.Eligibility.RequiresFields {
		if !c.FieldPresent(field) {
			return false
		}
	}
	for _, topic := range q.Eligibility.RequiresTopics {
		if !c.TopicCovered(topic) {
			return false
		}
	}
	return true
}

// Priority score weights. The tier weight dominates; the rest nudge the
// ranking toward the current conversational need.
const (
	weightEssential     = 100
	weightImportant     = 50
	weightOptional      = 20
	weightPersonaMatch  = 30
	weightGapCategory   = 40
	weightLacksMetrics  = 50
	weightUrgentBudget  = 30
	budgetCategory      = "budget"
)

// PriorityScore computes the deterministic ranking weight for a question.
func PriorityScore(c Context, comp Completion, q catalog.Question) int {
	var score int
	switch q.Priority {
	case catalog.PriorityEssential:
		score += weightEssential
	case catalog.PriorityImportant:
		score += weightImportant
	default:
		score += weightOptional
	}

	if personaListed(q, c.Persona) {
		score += weightPersonaMatch
	}
	if GapCategories(comp)[q.Category] {
		score += weightGapCategory
	}
	if c.Signals.LacksMetrics && q.HasTag(catalog.TagQuantification) {
		score += weightLacksMetrics
	}
	if c.Insights.Urgency == UrgencyCritical && q.Category == budgetCategory {
		score += weightUrgentBudget
	}
	return score
}

// personaListed reports an exact persona match, not a match via "all".
func personaListed(q catalog.Question, persona catalog.Persona) bool {
	if persona == catalog.PersonaUnknown {
		return false
	}
	for _, p := range q.Personas {
		if p == persona {
			return true
		}
	}
	return false
}
