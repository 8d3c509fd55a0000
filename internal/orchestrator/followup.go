package orchestrator

import (
	"fmt"
	"strings"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
)

// FollowUpPolicy bounds follow-up spend.
type FollowUpPolicy struct {
	// MaxPerQuestion caps follow-ups per base catalog question.
	MaxPerQuestion int
	// ShortAnswerChars treats free-text answers at or under this length as
	// too thin to leave alone.
	ShortAnswerChars int
}

// DefaultFollowUpPolicy returns the standard caps.
func DefaultFollowUpPolicy() FollowUpPolicy {
	return FollowUpPolicy{MaxPerQuestion: 2, ShortAnswerChars: 15}
}

// shouldFollowUp gates follow-up questions: the previous answer must have
// been vague or short, or revealed a scoreable opportunity, and the base
// question must still have follow-up budget left.
func shouldFollowUp(s State, baseID string, q catalog.Question, answer catalog.Answer, turnSignals interview.WeakSignals, opportunity bool, policy FollowUpPolicy) bool {
	if policy.MaxPerQuestion <= 0 {
		return false
	}
	if s.FollowUpsAsked[baseID] >= policy.MaxPerQuestion {
		return false
	}
	if q.Input != catalog.InputText {
		return false
	}

	raw := strings.TrimSpace(answer.Raw())
	short := raw != "" && len(raw) <= policy.ShortAnswerChars
	return turnSignals.Vague || short || opportunity
}

// followUpPrompt phrases the probe. Vague or short answers get a widening
// question; opportunities get a quantifying one.
func followUpPrompt(q catalog.Question, turnSignals interview.WeakSignals, opportunity bool) string {
	switch {
	case opportunity:
		return "That sounds like something worth digging into. Roughly how much time or money does it cost you today?"
	case turnSignals.Vague:
		return fmt.Sprintf("Could you be more specific? %s", q.PromptText())
	default:
		return "Can you tell me a bit more about that?"
	}
}

// followUpID derives a distinct id so generated probes never collide with
// catalog ids in the answered set.
func followUpID(baseID string, n int) string {
	return fmt.Sprintf("%s.followup.%d", baseID, n)
}
