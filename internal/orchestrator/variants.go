package orchestrator

import (
	"math/rand"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

// pickVariant chooses a phrasing variant for a question: the first variant
// not yet used this session, in catalog order. Once every variant has been
// shown, a random one is reused.
func pickVariant(s State, q catalog.Question, rng *rand.Rand) (catalog.Variant, bool) {
	if len(q.Variants) == 0 {
		return catalog.Variant{}, false
	}
	for _, v := range q.Variants {
		if !s.VariantUsed(q.ID, v.ID) {
			return v, true
		}
	}
	if rng == nil {
		return q.Variants[0], true
	}
	return q.Variants[rng.Intn(len(q.Variants))], true
}
