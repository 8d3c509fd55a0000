package interview

import (
	"time"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

// WeakSignals tracks soft indicators detected across the interview. Flags only
// ever flip from false to true; once a prospect sounds hesitant the interview
// stays in that mode.
type WeakSignals struct {
	Vague         bool `json:"vague"`
	Hesitant      bool `json:"hesitant"`
	Contradictory bool `json:"contradictory"`
	LacksMetrics  bool `json:"lacksMetrics"`
	Emotional     bool `json:"emotional"`
	UnderPressure bool `json:"underPressure"`
}

// Merge ORs two signal sets together.
func (w WeakSignals) Merge(other WeakSignals) WeakSignals {
	return WeakSignals{
		Vague:         w.Vague || other.Vague,
		Hesitant:      w.Hesitant || other.Hesitant,
		Contradictory: w.Contradictory || other.Contradictory,
		LacksMetrics:  w.LacksMetrics || other.LacksMetrics,
		Emotional:     w.Emotional || other.Emotional,
		UnderPressure: w.UnderPressure || other.UnderPressure,
	}
}

// Any reports whether at least one signal is set.
func (w WeakSignals) Any() bool {
	return w.Vague || w.Hesitant || w.Contradictory || w.LacksMetrics || w.Emotional || w.UnderPressure
}

// UrgencyLevel grades how time-pressed the prospect appears.
type UrgencyLevel string

const (
	UrgencyNormal   UrgencyLevel = "normal"
	UrgencyElevated UrgencyLevel = "elevated"
	UrgencyCritical UrgencyLevel = "critical"
)

// ComplexityLevel grades how tangled the prospect's situation appears.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

// Insights holds derived observations that influence routing but are not part
// of the structured assessment record.
type Insights struct {
	Urgency         UrgencyLevel    `json:"urgency"`
	Complexity      ComplexityLevel `json:"complexity"`
	ToolsMentioned  []string        `json:"toolsMentioned,omitempty"`
	BudgetSignal    bool            `json:"budgetSignal"`
	AuthoritySignal bool            `json:"authoritySignal"`
}

// QuestionSource distinguishes catalog questions from generated follow-ups.
type QuestionSource string

const (
	SourceCatalog   QuestionSource = "catalog"
	SourceGenerated QuestionSource = "generated"
)

// Exchange records one asked question and its answer.
type Exchange struct {
	QuestionID string         `json:"questionId"`
	VariantID  string         `json:"variantId,omitempty"`
	Prompt     string         `json:"prompt"`
	Answer     catalog.Answer `json:"answer"`
	Source     QuestionSource `json:"source"`
	AskedAt    time.Time      `json:"askedAt"`
}

// FinishReason explains why an interview ended.
type FinishReason string

const (
	FinishMaxQuestions FinishReason = "max_questions_reached"
	FinishThreshold    FinishReason = "completeness_threshold_reached"
	FinishAllEssential FinishReason = "all_essential_covered"
	FinishAbandoned    FinishReason = "abandoned"
)

// RecommendedAction is the rules engine's suggestion for what kind of
// question to ask next.
type RecommendedAction string

const (
	ActionAskEssential RecommendedAction = "ask_essential"
	ActionQuantifyPain RecommendedAction = "quantify_pain"
	ActionAskImportant RecommendedAction = "ask_important"
	ActionAskOptional  RecommendedAction = "ask_optional"
	ActionFinish       RecommendedAction = "finish"
)

// Completion summarizes how much of the field inventory has been collected.
type Completion struct {
	Score              int               `json:"score"`
	EssentialCollected int               `json:"essentialCollected"`
	EssentialTotal     int               `json:"essentialTotal"`
	ImportantCollected int               `json:"importantCollected"`
	ImportantTotal     int               `json:"importantTotal"`
	OptionalCollected  int               `json:"optionalCollected"`
	OptionalTotal      int               `json:"optionalTotal"`
	Gaps               []string          `json:"gaps,omitempty"`
	CanFinish          bool              `json:"canFinish"`
	FinishReason       FinishReason      `json:"finishReason,omitempty"`
	Action             RecommendedAction `json:"recommendedAction"`
	Recommendation     string            `json:"recommendation,omitempty"`
}

// Context is the full state of one interview session. Transitions never
// mutate an existing Context; Apply returns an updated copy.
type Context struct {
	SessionID         string                      `json:"sessionId"`
	CreatedAt         time.Time                   `json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
	Persona           catalog.Persona             `json:"persona"`
	PersonaConfidence float64                     `json:"personaConfidence"`
	PersonaScores     map[catalog.Persona]float64 `json:"personaScores,omitempty"`
	Assessment        Assessment                  `json:"assessment"`
	Asked             []Exchange                  `json:"asked,omitempty"`
	Topics            []string                    `json:"topics,omitempty"`
	Metrics           []string                    `json:"metrics,omitempty"`
	Signals           WeakSignals                 `json:"signals"`
	Insights          Insights                    `json:"insights"`
	Completion        Completion                  `json:"completion"`
	RemainingBudget   int                         `json:"remainingBudget"`
	Terminal          bool                        `json:"terminal"`
	FinishReason      FinishReason                `json:"finishReason,omitempty"`
}

// NewContext creates a fresh session context with the given question budget.
func NewContext(sessionID string, budget int, now time.Time) Context {
	return Context{
		SessionID:       sessionID,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
		RemainingBudget: budget,
		Assessment:      make(Assessment),
		Insights: Insights{
			Urgency:    UrgencyNormal,
			Complexity: ComplexityLow,
		},
	}
}

// QuestionsAsked returns how many exchanges have been recorded.
func (c Context) QuestionsAsked() int {
	return len(c.Asked)
}

// HasAnswered reports whether the catalog question id was already asked.
func (c Context) HasAnswered(id string) bool {
	for _, ex := range c.Asked {
		if ex.Source == SourceCatalog && ex.QuestionID == id {
			return true
		}
	}
	return false
}

// TopicCovered reports whether a topic marker has been recorded.
func (c Context) TopicCovered(topic string) bool {
	for _, t := range c.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// FieldPresent reports whether a dotted assessment path holds a value.
func (c Context) FieldPresent(path string) bool {
	return c.Assessment.Has(path)
}

// LastExchanges returns up to n most recent exchanges, oldest first.
func (c Context) LastExchanges(n int) []Exchange {
	if n <= 0 || len(c.Asked) == 0 {
		return nil
	}
	if n > len(c.Asked) {
		n = len(c.Asked)
	}
	out := make([]Exchange, n)
	copy(out, c.Asked[len(c.Asked)-n:])
	return out
}

// Clone returns a deep copy so transitions cannot alias shared state.
func (c Context) Clone() Context {
	next := c
	next.Assessment = c.Assessment.Clone()
	next.Asked = append([]Exchange(nil), c.Asked...)
	next.Topics = append([]string(nil), c.Topics...)
	next.Metrics = append([]string(nil), c.Metrics...)
	next.Completion.Gaps = append([]string(nil), c.Completion.Gaps...)
	next.Insights.ToolsMentioned = append([]string(nil), c.Insights.ToolsMentioned...)
	if c.PersonaScores != nil {
		next.PersonaScores = make(map[catalog.Persona]float64, len(c.PersonaScores))
		for k, v := range c.PersonaScores {
			next.PersonaScores[k] = v
		}
	}
	return next
}
