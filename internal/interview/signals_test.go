package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

func TestDetectWeakSignals(t *testing.T) {
	plain := catalog.Question{ID: "q", Input: catalog.InputText}
	quantified := catalog.Question{
		ID:    "q_cost",
		Input: catalog.InputText,
		Tags:  []string{catalog.TagQuantification},
	}

	tests := []struct {
		name     string
		question catalog.Question
		answer   catalog.Answer
		want     WeakSignals
	}{
		{
			name:     "confident answer sets nothing",
			question: plain,
			answer:   catalog.TextAnswer("We lose 40 hours a month to manual data entry."),
			want:     WeakSignals{},
		},
		{
			name:     "vague marker",
			question: plain,
			answer:   catalog.TextAnswer("I'm not sure, maybe it depends on the season"),
			want:     WeakSignals{Vague: true},
		},
		{
			name:     "hesitation",
			question: plain,
			answer:   catalog.TextAnswer("Hmm, good question, I'd have to check with the team"),
			want:     WeakSignals{Hesitant: true},
		},
		{
			name:     "self-correction",
			question: plain,
			answer:   catalog.TextAnswer("We have ten reps. Actually no, wait, eight since March."),
			want:     WeakSignals{Contradictory: true},
		},
		{
			name:     "emotional language",
			question: plain,
			answer:   catalog.TextAnswer("Honestly the whole invoicing process is a nightmare"),
			want:     WeakSignals{Emotional: true},
		},
		{
			name:     "time pressure",
			question: plain,
			answer:   catalog.TextAnswer("We needed this fixed yesterday, we are losing customers"),
			want:     WeakSignals{UnderPressure: true},
		},
		{
			// Long, digit-free answer to a quantification question.
			name:     "lacks metrics on quantification question",
			question: quantified,
			answer:   catalog.TextAnswer("it definitely costs us a lot but nobody has measured it"),
			want:     WeakSignals{LacksMetrics: true},
		},
		{
			name:     "digits satisfy quantification",
			question: quantified,
			answer:   catalog.TextAnswer("roughly 3000 dollars every single month, give or take"),
			want:     WeakSignals{Vague: true},
		},
		{
			name:     "short answers never lack metrics",
			question: quantified,
			answer:   catalog.TextAnswer("no idea at all"),
			want:     WeakSignals{},
		},
		{
			name:     "plain question never lacks metrics",
			question: plain,
			answer:   catalog.TextAnswer("it definitely costs us a lot but nobody has measured it"),
			want:     WeakSignals{},
		},
		{
			name:     "empty free text reads as vague",
			question: plain,
			answer:   catalog.TextAnswer("   "),
			want:     WeakSignals{Vague: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectWeakSignals(tt.answer, tt.question))
		})
	}
}

func TestWeakSignalsMergeIsMonotonic(t *testing.T) {
	s := WeakSignals{Vague: true, LacksMetrics: true}

	merged := s.Merge(WeakSignals{Hesitant: true})
	assert.True(t, merged.Vague, "existing flags survive a merge")
	assert.True(t, merged.LacksMetrics)
	assert.True(t, merged.Hesitant)

	// Merging an empty set must not clear anything.
	merged = merged.Merge(WeakSignals{})
	assert.Equal(t, WeakSignals{Vague: true, Hesitant: true, LacksMetrics: true}, merged)
}

func TestWeakSignalsAny(t *testing.T) {
	assert.False(t, WeakSignals{}.Any())
	assert.True(t, WeakSignals{Emotional: true}.Any())
}
