package orchestrator

import (
	"sort"
	"time"

	"github.com/leadlens-ai/leadlens/internal/interview"
)

// Phase names the orchestrator's position in the interview loop. The machine
// moves collecting -> (deciding_next | deciding_end) -> collecting | ended.
// No transition ever leaves ended.
type Phase string

const (
	PhaseCollecting   Phase = "collecting"
	PhaseDecidingNext Phase = "deciding_next"
	PhaseDecidingEnd  Phase = "deciding_end"
	PhaseEnded        Phase = "ended"
)

// ExpertiseLevel is the respondent's self-reported familiarity with a topic
// area.
type ExpertiseLevel string

const (
	ExpertiseNone         ExpertiseLevel = ""
	ExpertiseNovice       ExpertiseLevel = "novice"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
)

func expertiseRank(l ExpertiseLevel) int {
	switch l {
	case ExpertiseNovice:
		return 1
	case ExpertiseIntermediate:
		return 2
	case ExpertiseExpert:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether the level meets or exceeds the floor.
func (l ExpertiseLevel) AtLeast(floor ExpertiseLevel) bool {
	return expertiseRank(l) >= expertiseRank(floor)
}

// ExpertiseFromScale maps a 1-5 self-rating onto the expertise ladder.
func ExpertiseFromScale(v int) ExpertiseLevel {
	switch {
	case v <= 0:
		return ExpertiseNone
	case v <= 2:
		return ExpertiseNovice
	case v == 3:
		return ExpertiseIntermediate
	default:
		return ExpertiseExpert
	}
}

// CompanySnapshot is the headline company profile lifted out of the
// assessment record for quick display.
type CompanySnapshot struct {
	Industry    string `json:"industry,omitempty"`
	TeamSize    string `json:"teamSize,omitempty"`
	RevenueBand string `json:"revenueBand,omitempty"`
}

// ProblemStory is one reported problem: where it lives, the respondent's own
// words, and the classification tags attached afterwards.
type ProblemStory struct {
	Area       string   `json:"area"`
	QuestionID string   `json:"questionId"`
	Narrative  string   `json:"narrative"`
	Tags       []string `json:"tags,omitempty"`
	Quantified bool     `json:"quantified"`
}

// DeepDiveEntry is one answered question inside a topic-area deep dive.
type DeepDiveEntry struct {
	QuestionID string   `json:"questionId"`
	Answer     string   `json:"answer"`
	Tags       []string `json:"tags,omitempty"`
}

// DeepDive accumulates the answers concentrated on one topic area.
type DeepDive struct {
	Area    string          `json:"area"`
	Entries []DeepDiveEntry `json:"entries"`
	Tags    []string        `json:"tags,omitempty"`
}

// PendingQuestion is the question currently in front of the respondent.
type PendingQuestion struct {
	QuestionID string `json:"questionId"`
	// BaseID is the catalog question a follow-up probes; equals QuestionID
	// for catalog questions.
	BaseID    string `json:"baseId"`
	VariantID string `json:"variantId,omitempty"`
	Prompt    string `json:"prompt"`
	// Area is the topic area the answer counts toward; generated probes
	// carry it explicitly since they have no catalog entry.
	Area     string `json:"area,omitempty"`
	FollowUp bool   `json:"followUp"`
}

// State is the deeper-interview superset of the conversation context. It
// additionally tracks phrasing-variant usage, follow-up spend, expertise,
// problem stories and per-area deep dives.
type State struct {
	interview.Context

	Phase          Phase                     `json:"phase"`
	Pending        *PendingQuestion          `json:"pending,omitempty"`
	Company        CompanySnapshot           `json:"company"`
	Expertise      map[string]ExpertiseLevel `json:"expertise,omitempty"`
	Stories        []ProblemStory            `json:"stories,omitempty"`
	DeepDives      map[string]*DeepDive      `json:"deepDives,omitempty"`
	VariantsUsed   map[string][]string       `json:"variantsUsed,omitempty"`
	FollowUpsAsked map[string]int            `json:"followUpsAsked,omitempty"`
	LLMCalls       int                       `json:"llmCalls"`
}

// NewState starts a fresh deeper-interview session.
func NewState(sessionID string, budget int, now time.Time) State {
	return State{
		Context:        interview.NewContext(sessionID, budget, now),
		Phase:          PhaseCollecting,
		Expertise:      make(map[string]ExpertiseLevel),
		DeepDives:      make(map[string]*DeepDive),
		VariantsUsed:   make(map[string][]string),
		FollowUpsAsked: make(map[string]int),
	}
}

// Clone deep-copies the state so transitions can stay pure.
func (s State) Clone() State {
	out := s
	out.Context = s.Context.Clone()
	if s.Pending != nil {
		pending := *s.Pending
		out.Pending = &pending
	}
	out.Expertise = make(map[string]ExpertiseLevel, len(s.Expertise))
	for k, v := range s.Expertise {
		out.Expertise[k] = v
	}
	out.Stories = make([]ProblemStory, len(s.Stories))
	for i, story := range s.Stories {
		story.Tags = append([]string(nil), story.Tags...)
		out.Stories[i] = story
	}
	out.DeepDives = make(map[string]*DeepDive, len(s.DeepDives))
	for area, dive := range s.DeepDives {
		clone := DeepDive{Area: dive.Area, Tags: append([]string(nil), dive.Tags...)}
		clone.Entries = make([]DeepDiveEntry, len(dive.Entries))
		for i, e := range dive.Entries {
			e.Tags = append([]string(nil), e.Tags...)
			clone.Entries[i] = e
		}
		out.DeepDives[area] = &clone
	}
	out.VariantsUsed = make(map[string][]string, len(s.VariantsUsed))
	for id, variants := range s.VariantsUsed {
		out.VariantsUsed[id] = append([]string(nil), variants...)
	}
	out.FollowUpsAsked = make(map[string]int, len(s.FollowUpsAsked))
	for id, n := range s.FollowUpsAsked {
		out.FollowUpsAsked[id] = n
	}
	return out
}

// VariantUsed reports whether the phrasing variant has been shown already.
func (s State) VariantUsed(questionID, variantID string) bool {
	for _, used := range s.VariantsUsed[questionID] {
		if used == variantID {
			return true
		}
	}
	return false
}

// markVariantUsed records a (question, variant) pair. Each pair is recorded
// at most once per session; a repeat (variant reuse after exhaustion) is not
// recorded again.
func (s *State) markVariantUsed(questionID, variantID string) {
	if variantID == "" || s.VariantUsed(questionID, variantID) {
		return
	}
	if s.VariantsUsed == nil {
		s.VariantsUsed = make(map[string][]string)
	}
	s.VariantsUsed[questionID] = append(s.VariantsUsed[questionID], variantID)
}

// PriorityAreas lists topic areas where the respondent reported at least
// intermediate expertise and at least one problem, sorted for determinism.
func (s State) PriorityAreas() []string {
	storyAreas := make(map[string]bool, len(s.Stories))
	for _, story := range s.Stories {
		storyAreas[story.Area] = true
	}
	var out []string
	for area, level := range s.Expertise {
		if level.AtLeast(ExpertiseIntermediate) && storyAreas[area] {
			out = append(out, area)
		}
	}
	sort.Strings(out)
	return out
}

// AreaAnswerCount returns how many questions have been answered inside the
// area's deep dive.
func (s State) AreaAnswerCount(area string) int {
	dive, ok := s.DeepDives[area]
	if !ok {
		return 0
	}
	return len(dive.Entries)
}

func (s *State) deepDiveFor(area string) *DeepDive {
	if s.DeepDives == nil {
		s.DeepDives = make(map[string]*DeepDive)
	}
	dive, ok := s.DeepDives[area]
	if !ok {
		dive = &DeepDive{Area: area}
		s.DeepDives[area] = dive
	}
	return dive
}
