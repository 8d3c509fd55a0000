package interview

import (
	"fmt"
	"math"
	"strings"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

// FieldInventory partitions the assessment paths into the three priority
// tiers used to weight the completeness score.
type FieldInventory struct {
	Essential []string
	Important []string
	Optional  []string
}

// DefaultInventory returns the standard lead-qualification field set.
func DefaultInventory() FieldInventory {
	return FieldInventory{
		Essential: []string{
			catalog.FieldIndustry,
			catalog.FieldTeamSize,
			catalog.FieldPainPrimary,
			catalog.FieldPainCost,
			catalog.FieldGoalsPrimary,
		},
		Important: []string{
			catalog.FieldRevenueBand,
			catalog.FieldPainFrequency,
			catalog.FieldManualHours,
			catalog.FieldBudgetRange,
			catalog.FieldUrgency,
		},
		Optional: []string{
			catalog.FieldToolingStack,
			catalog.FieldDecisionMaker,
			catalog.FieldGrowthPlan,
			catalog.FieldMetricsTracked,
			catalog.FieldCompetitors,
		},
	}
}

// FinishPolicy holds the tunable termination thresholds. The defaults are
// inherited policy, not derived constants; treat them as configuration.
type FinishPolicy struct {
	MaxQuestions             int
	ScoreThreshold           int
	MinQuestionsAtThreshold  int
	MinQuestionsAllEssential int
}

// DefaultFinishPolicy returns the standard thresholds.
func DefaultFinishPolicy() FinishPolicy {
	return FinishPolicy{
		MaxQuestions:             18,
		ScoreThreshold:           80,
		MinQuestionsAtThreshold:  8,
		MinQuestionsAllEssential: 10,
	}
}

// Scorer computes completion metrics against a fixed field inventory. It is
// stateless and safe for concurrent use.
type Scorer struct {
	inventory FieldInventory
	policy    FinishPolicy
}

// NewScorer builds a scorer. Zero-valued policy fields fall back to defaults.
func NewScorer(inventory FieldInventory, policy FinishPolicy) *Scorer {
	def := DefaultFinishPolicy()
	if policy.MaxQuestions <= 0 {
		policy.MaxQuestions = def.MaxQuestions
	}
	if policy.ScoreThreshold <= 0 {
		policy.ScoreThreshold = def.ScoreThreshold
	}
	if policy.MinQuestionsAtThreshold <= 0 {
		policy.MinQuestionsAtThreshold = def.MinQuestionsAtThreshold
	}
	if policy.MinQuestionsAllEssential <= 0 {
		policy.MinQuestionsAllEssential = def.MinQuestionsAllEssential
	}
	if len(inventory.Essential) == 0 && len(inventory.Important) == 0 && len(inventory.Optional) == 0 {
		inventory = DefaultInventory()
	}
	return &Scorer{inventory: inventory, policy: policy}
}

// Policy exposes the configured thresholds.
func (s *Scorer) Policy() FinishPolicy {
	return s.policy
}

// Score computes the completion record for a context. It is a pure function
// of the context: calling it twice yields identical results.
func (s *Scorer) Score(c Context) Completion {
	essCollected, essMissing := s.collected(c, s.inventory.Essential)
	impCollected, impMissing := s.collected(c, s.inventory.Important)
	optCollected, _ := s.collected(c, s.inventory.Optional)

	score := weighted(essCollected, len(s.inventory.Essential), 50) +
		weighted(impCollected, len(s.inventory.Important), 30) +
		weighted(optCollected, len(s.inventory.Optional), 20)

	comp := Completion{
		Score:              clampScore(int(math.Round(score))),
		EssentialCollected: essCollected,
		EssentialTotal:     len(s.inventory.Essential),
		ImportantCollected: impCollected,
		ImportantTotal:     len(s.inventory.Important),
		OptionalCollected:  optCollected,
		OptionalTotal:      len(s.inventory.Optional),
		Gaps:               append(essMissing, impMissing...),
	}

	asked := c.QuestionsAsked()
	allEssential := essCollected == len(s.inventory.Essential) && len(s.inventory.Essential) > 0

	// Finish reasons are checked in fixed priority order.
	switch {
	case asked >= s.policy.MaxQuestions:
		comp.CanFinish = true
		comp.FinishReason = FinishMaxQuestions
	case comp.Score >= s.policy.ScoreThreshold && asked >= s.policy.MinQuestionsAtThreshold:
		comp.CanFinish = true
		comp.FinishReason = FinishThreshold
	case allEssential && asked >= s.policy.MinQuestionsAllEssential:
		comp.CanFinish = true
		comp.FinishReason = FinishAllEssential
	}

	comp.Action = s.recommendedAction(c, comp, essMissing, impMissing)
	comp.Recommendation = s.recommendation(comp, essMissing, impMissing)
	return comp
}

func (s *Scorer) recommendedAction(c Context, comp Completion, essMissing, impMissing []string) RecommendedAction {
	switch {
	case comp.CanFinish:
		return ActionFinish
	case len(essMissing) > 0:
		return ActionAskEssential
	case c.Signals.LacksMetrics || (c.FieldPresent(catalog.FieldPainPrimary) && len(c.Metrics) == 0):
		return ActionQuantifyPain
	case len(impMissing) > 0:
		return ActionAskImportant
	default:
		return ActionAskOptional
	}
}

func (s *Scorer) recommendation(comp Completion, essMissing, impMissing []string) string {
	switch {
	case comp.CanFinish:
		return ""
	case len(essMissing) > 0:
		return fmt.Sprintf("continue collecting essential fields: %s", strings.Join(essMissing, ", "))
	case comp.Score < s.policy.ScoreThreshold:
		return fmt.Sprintf("ask 1-2 more questions to cross the %d completeness threshold", s.policy.ScoreThreshold)
	case len(impMissing) > 0:
		return fmt.Sprintf("address remaining gaps: %s", strings.Join(impMissing, ", "))
	default:
		return "a few more answers are needed before the interview can close"
	}
}

func (s *Scorer) collected(c Context, paths []string) (int, []string) {
	var count int
	var missing []string
	for _, path := range paths {
		if c.FieldPresent(path) {
			count++
		} else {
			missing = append(missing, path)
		}
	}
	return count, missing
}

func weighted(collected, total int, weight float64) float64 {
	if total == 0 {
		return weight
	}
	return weight * float64(collected) / float64(total)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// GapCategories returns the set of top-level categories covering the gap
// list, e.g. "pain" for "pain.cost_estimate".
func GapCategories(comp Completion) map[string]bool {
	out := make(map[string]bool, len(comp.Gaps))
	for _, gap := range comp.Gaps {
		if i := strings.Index(gap, "."); i > 0 {
			out[gap[:i]] = true
		} else {
			out[gap] = true
		}
	}
	return out
}
