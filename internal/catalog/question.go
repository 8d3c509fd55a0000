package catalog

import (
	"strconv"
	"strings"
)

// InputType describes the answer shape a question expects.
type InputType string

const (
	InputText        InputType = "text"
	InputChoice      InputType = "choice"
	InputMultiChoice InputType = "multi_choice"
	InputScale       InputType = "scale"
)

// Priority tiers weight a question's contribution to completeness.
type Priority string

const (
	PriorityEssential Priority = "essential"
	PriorityImportant Priority = "important"
	PriorityOptional  Priority = "optional"
)

// Tone labels a phrasing variant so the orchestrator can vary register.
type Tone string

const (
	ToneDirect       Tone = "direct"
	ToneConsultative Tone = "consultative"
	ToneCasual       Tone = "casual"
)

// Persona identifies who the respondent appears to be.
type Persona string

const (
	PersonaUnknown    Persona = ""
	PersonaAll        Persona = "all"
	PersonaOwner      Persona = "owner"
	PersonaOperations Persona = "operations"
	PersonaFinance    Persona = "finance"
	PersonaTechnical  Persona = "technical"
)

// Variant is one pre-written phrasing of a question.
type Variant struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Eligibility gates when a question may be asked.
type Eligibility struct {
	RequiresFields       []string
	RequiresTopics       []string
	SkipIfFields         []string
	SkipIfTopics         []string
	MinPersonaConfidence float64
}

// AnswerKind discriminates the Answer union.
type AnswerKind string

const (
	AnswerKindText        AnswerKind = "text"
	AnswerKindChoice      AnswerKind = "choice"
	AnswerKindMultiChoice AnswerKind = "multi_choice"
	AnswerKindScale       AnswerKind = "scale"
)

// Answer is a tagged variant of the possible answer shapes. Exactly the
// field matching Kind is meaningful; extractors must coerce or ignore
// mismatches rather than fail.
type Answer struct {
	Kind    AnswerKind `json:"kind"`
	Text    string     `json:"text,omitempty"`
	Choice  string     `json:"choice,omitempty"`
	Choices []string   `json:"choices,omitempty"`
	Scale   int        `json:"scale,omitempty"`
}

// TextAnswer builds a free-text answer.
func TextAnswer(text string) Answer {
	return Answer{Kind: AnswerKindText, Text: text}
}

// ChoiceAnswer builds a single-choice answer.
func ChoiceAnswer(choice string) Answer {
	return Answer{Kind: AnswerKindChoice, Choice: choice}
}

// MultiChoiceAnswer builds a multi-choice answer.
func MultiChoiceAnswer(choices ...string) Answer {
	return Answer{Kind: AnswerKindMultiChoice, Choices: choices}
}

// ScaleAnswer builds a numeric-scale answer.
func ScaleAnswer(value int) Answer {
	return Answer{Kind: AnswerKindScale, Scale: value}
}

// Raw renders the answer as transcript text.
func (a Answer) Raw() string {
	switch a.Kind {
	case AnswerKindChoice:
		return a.Choice
	case AnswerKindMultiChoice:
		return strings.Join(a.Choices, ", ")
	case AnswerKindScale:
		return strconv.Itoa(a.Scale)
	default:
		return a.Text
	}
}

// IsEmpty reports whether the answer carries no content at all.
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Raw()) == ""
}

// Extraction is the structured partial update a question pulls out of an
// answer. An empty extraction means "no new information".
type Extraction struct {
	Fields  map[string]any
	Topics  []string
	Metrics []string
}

// IsEmpty reports whether the extraction adds nothing.
func (e Extraction) IsEmpty() bool {
	return len(e.Fields) == 0 && len(e.Topics) == 0 && len(e.Metrics) == 0
}

// ExtractFunc maps a raw answer to a partial update of the assessment
// record. Implementations must be pure and must not panic for any answer
// shape; SafeExtract guards against catalog bugs regardless.
type ExtractFunc func(Answer) Extraction

// Question is an immutable catalog entry.
type Question struct {
	ID          string
	Category    string
	Variants    []Variant
	Input       InputType
	Options     []string
	Priority    Priority
	Personas    []Persona
	Tags        []string
	Eligibility Eligibility
	Extract     ExtractFunc `json:"-"`
}

// TagQuantification marks questions that ask for numbers; the weak-signal
// detector keys lacks-metrics off it.
const TagQuantification = "quantification"

// AppliesTo reports whether the question may be asked of the given persona.
// A question listing PersonaAll applies to everyone, including unknown.
func (q Question) AppliesTo(p Persona) bool {
	if len(q.Personas) == 0 {
		return true
	}
	for _, candidate := range q.Personas {
		if candidate == PersonaAll || candidate == p {
			return true
		}
	}
	return false
}

// HasTag reports whether the question carries the topic tag.
func (q Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PromptText returns the first phrasing variant, the default presentation.
func (q Question) PromptText() string {
	if len(q.Variants) == 0 {
		return ""
	}
	return q.Variants[0].Text
}

// Variant looks up a phrasing by id.
func (q Question) Variant(id string) (Variant, bool) {
	for _, v := range q.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// SafeExtract runs the question's extractor, degrading to an empty
// extraction when the extractor is missing or panics. Selection and state
// transitions must never abort because one catalog entry is broken.
func (q Question) SafeExtract(a Answer) (out Extraction) {
	if q.Extract == nil {
		return Extraction{}
	}
	defer func() {
		if recover() != nil {
			out = Extraction{}
		}
	}()
	return q.Extract(a)
}
