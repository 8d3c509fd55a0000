package interview

import (
	"strings"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

// Keyword lists are matched case-insensitively as substrings. They are
// intentionally small; the detector is a coarse heuristic, not NLP.
var (
	vagueMarkers = []string{
		"not sure", "i guess", "maybe", "kind of", "sort of", "it depends",
		"hard to say", "roughly", "i think", "somewhere around", "don't really know",
	}
	hesitantMarkers = []string{
		"um", "uh", "hmm", "well...", "let me think", "good question",
		"i'd have to check", "i would have to", "off the top of my head",
	}
	contradictoryMarkers = []string{
		"actually no", "wait,", "scratch that", "on second thought",
		"i said earlier but", "that's not right",
	}
	emotionalMarkers = []string{
		"frustrat", "exhaust", "nightmare", "drives me crazy", "fed up",
		"overwhelm", "stress", "painful", "hate", "killing us", "drowning",
	}
	pressureMarkers = []string{
		"asap", "urgent", "yesterday", "running out of time", "deadline",
		"before the end of", "can't wait", "immediately", "right away",
		"losing customers", "losing money",
	}
)

const lacksMetricsMinLength = 20

// DetectWeakSignals runs the lexical heuristics over a single answer. It is a
// pure function of the answer text and the question's metadata.
func DetectWeakSignals(answer catalog.Answer, q catalog.Question) WeakSignals {
	text := strings.ToLower(strings.TrimSpace(answer.Raw()))
	if text == "" {
		// An empty free-text answer is itself a vagueness signal.
		return WeakSignals{Vague: q.Input == catalog.InputText}
	}

	s := WeakSignals{
		Vague:         containsAny(text, vagueMarkers),
		Hesitant:      containsAny(text, hesitantMarkers),
		Contradictory: containsAny(text, contradictoryMarkers),
		Emotional:     containsAny(text, emotionalMarkers),
		UnderPressure: containsAny(text, pressureMarkers),
	}
	if q.HasTag(catalog.TagQuantification) && len(text) > lacksMetricsMinLength && !catalog.ContainsDigit(text) {
		s.LacksMetrics = true
	}
	return s
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
