package interview

import (
	"context"
	"sort"
	"time"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// Routing decision sources.
const (
	RoutingSourceModel  = "model"
	RoutingSourceRules  = "rules"
	RoutingSourceDirect = "direct"
)

// Confidence attached to a routing decision. Model picks that validate
// against the candidate set score high; deterministic fallbacks score lower,
// and a rejected model answer lower still.
const (
	confidenceDirect       = 0.95
	confidenceModel        = 0.9
	confidenceRuleFallback = 0.6
	confidenceRejectedPick = 0.5
)

const maxModelCandidates = 8

// RoutingDecision explains how the next question was chosen.
type RoutingDecision struct {
	QuestionID string  `json:"questionId"`
	Source     string  `json:"source"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Confidence float64 `json:"confidence"`
}

// TurnOutput is the router's answer to "what happens next".
type TurnOutput struct {
	NextQuestion *catalog.Question
	Decision     *RoutingDecision
	ShouldFinish bool
	FinishReason FinishReason
	Completion   Completion
}

// CandidateQuestion is the bounded view of an eligible question shown to the
// model selector.
type CandidateQuestion struct {
	ID       string           `json:"id"`
	Priority catalog.Priority `json:"priority"`
	Category string           `json:"category"`
	Text     string           `json:"text"`
	Tags     []string         `json:"tags,omitempty"`
}

// ExchangeSummary is a condensed question/answer pair for the prompt.
type ExchangeSummary struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SelectionRequest carries everything the selector may consider.
type SelectionRequest struct {
	History           []ExchangeSummary
	Persona           catalog.Persona
	PersonaConfidence float64
	TopicsCovered     []string
	Signals           WeakSignals
	Guidance          string
	Candidates        []CandidateQuestion
}

// SelectionResult names one candidate id and a short rationale.
type SelectionResult struct {
	QuestionID string `json:"questionId"`
	Reasoning  string `json:"reasoning"`
}

// QuestionSelector delegates question choice to an external service. A nil
// selector means rule-based routing only.
type QuestionSelector interface {
	ChooseQuestion(ctx context.Context, req SelectionRequest) (SelectionResult, error)
}

// Router selects the next question for a session. Selection never mutates
// the context; all state changes happen through Apply.
type Router struct {
	catalog  *catalog.Catalog
	scorer   *Scorer
	selector QuestionSelector
	timeout  time.Duration
	logger   *logging.Logger
	metrics  *metrics.InterviewMetrics
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithSelector installs the model-backed selector.
func WithSelector(sel QuestionSelector) RouterOption {
	return func(r *Router) { r.selector = sel }
}

// WithSelectionTimeout bounds the model call. Timeouts degrade to the
// deterministic fallback, same as a malformed response.
func WithSelectionTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRouterLogger overrides the default logger.
func WithRouterLogger(logger *logging.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRouterMetrics wires the observability counters.
func WithRouterMetrics(m *metrics.InterviewMetrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// NewRouter builds a router over a static catalog.
func NewRouter(cat *catalog.Catalog, scorer *Scorer, opts ...RouterOption) *Router {
	if cat == nil {
		panic("interview: catalog cannot be nil")
	}
	if scorer == nil {
		scorer = NewScorer(DefaultInventory(), DefaultFinishPolicy())
	}
	r := &Router{
		catalog: cat,
		scorer:  scorer,
		timeout: 10 * time.Second,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scorer exposes the router's completeness scorer.
func (r *Router) Scorer() *Scorer {
	return r.scorer
}

// Catalog exposes the question catalog the router selects from.
func (r *Router) Catalog() *catalog.Catalog {
	return r.catalog
}

// NextQuestion recomputes completion and either picks the next question or
// signals a finish. A failed or malformed model call never aborts the
// interview; it degrades to the deterministic rule-based path.
func (r *Router) NextQuestion(ctx context.Context, c Context) TurnOutput {
	comp := r.scorer.Score(c)
	if comp.CanFinish {
		return TurnOutput{ShouldFinish: true, FinishReason: comp.FinishReason, Completion: comp}
	}

	eligible := r.eligibleQuestions(c)
	if len(eligible) == 0 {
		// Nothing left to ask; finish honestly rather than stall.
		r.logger.Warn("no eligible questions remain, forcing finish",
			"session_id", c.SessionID,
			"questions_asked", c.QuestionsAsked(),
		)
		comp.CanFinish = true
		comp.FinishReason = FinishAllEssential
		return TurnOutput{ShouldFinish: true, FinishReason: FinishAllEssential, Completion: comp}
	}

	if len(eligible) <= 2 {
		pick := r.rankByPriority(c, comp, eligible)[0]
		r.metrics.ObserveRouting(RoutingSourceDirect)
		return TurnOutput{
			NextQuestion: pick,
			Decision: &RoutingDecision{
				QuestionID: pick.ID,
				Source:     RoutingSourceDirect,
				Confidence: confidenceDirect,
			},
			Completion: comp,
		}
	}
	if r.selector == nil {
		return r.fallbackPick(c, comp, eligible, confidenceRuleFallback)
	}

	return r.delegate(ctx, c, comp, eligible)
}

func (r *Router) delegate(ctx context.Context, c Context, comp Completion, eligible []*catalog.Question) TurnOutput {
	shown := eligible
	if len(shown) > maxModelCandidates {
		ranked := r.rankByPriority(c, comp, eligible)
		shown = ranked[:maxModelCandidates]
	}

	req := SelectionRequest{
		History:           summarizeExchanges(c.LastExchanges(4)),
		Persona:           c.Persona,
		PersonaConfidence: c.PersonaConfidence,
		TopicsCovered:     c.Topics,
		Signals:           c.Signals,
		Guidance:          comp.Recommendation,
		Candidates:        candidateViews(shown),
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	result, err := r.selector.ChooseQuestion(callCtx, req)
	r.metrics.ObserveSelectionLatency("routing", time.Since(started).Seconds())

	if err != nil {
		r.logger.Warn("model selection failed, using rule-based fallback",
			"session_id", c.SessionID,
			"error", err.Error(),
		)
		r.metrics.ObserveSelectionError("routing", "call_failed")
		return r.fallbackPick(c, comp, eligible, confidenceRuleFallback)
	}

	for _, q := range shown {
		if q.ID == result.QuestionID {
			r.metrics.ObserveRouting(RoutingSourceModel)
			return TurnOutput{
				NextQuestion: q,
				Decision: &RoutingDecision{
					QuestionID: q.ID,
					Source:     RoutingSourceModel,
					Reasoning:  result.Reasoning,
					Confidence: confidenceModel,
				},
				Completion: comp,
			}
		}
	}

	r.logger.Warn("model selected an ineligible question, using rule-based fallback",
		"session_id", c.SessionID,
		"chosen_id", result.QuestionID,
	)
	r.metrics.ObserveSelectionError("routing", "invalid_choice")
	return r.fallbackPick(c, comp, eligible, confidenceRejectedPick)
}

// fallbackPick is the deterministic selection path: filter by the
// recommended action, rank by priority score, pick the top.
func (r *Router) fallbackPick(c Context, comp Completion, eligible []*catalog.Question, confidence float64) TurnOutput {
	filtered := filterByAction(comp.Action, eligible)
	if len(filtered) == 0 {
		filtered = eligible
	}
	pick := r.rankByPriority(c, comp, filtered)[0]
	r.metrics.ObserveRouting(RoutingSourceRules)
	return TurnOutput{
		NextQuestion: pick,
		Decision: &RoutingDecision{
			QuestionID: pick.ID,
			Source:     RoutingSourceRules,
			Confidence: confidence,
		},
		Completion: comp,
	}
}

func (r *Router) eligibleQuestions(c Context) []*catalog.Question {
	all := r.catalog.Questions()
	eligible := make([]*catalog.Question, 0, len(all))
	for i := range all {
		q := &all[i]
		if Eligible(c, *q) {
			eligible = append(eligible, q)
		}
	}
	return eligible
}

// rankByPriority sorts descending by priority score, preserving catalog
// order on ties so selection stays deterministic.
func (r *Router) rankByPriority(c Context, comp Completion, qs []*catalog.Question) []*catalog.Question {
	ranked := append([]*catalog.Question(nil), qs...)
	scores := make(map[string]int, len(ranked))
	for _, q := range ranked {
		scores[q.ID] = PriorityScore(c, comp, *q)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	return ranked
}

func filterByAction(action RecommendedAction, qs []*catalog.Question) []*catalog.Question {
	var keep func(q *catalog.Question) bool
	switch action {
	case ActionAskEssential:
		keep = func(q *catalog.Question) bool { return q.Priority == catalog.PriorityEssential }
	case ActionQuantifyPain:
		keep = func(q *catalog.Question) bool { return q.HasTag(catalog.TagQuantification) }
	case ActionAskImportant:
		keep = func(q *catalog.Question) bool { return q.Priority == catalog.PriorityImportant }
	default:
		return qs
	}
	out := make([]*catalog.Question, 0, len(qs))
	for _, q := range qs {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func candidateViews(qs []*catalog.Question) []CandidateQuestion {
	out := make([]CandidateQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, CandidateQuestion{
			ID:       q.ID,
			Priority: q.Priority,
			Category: q.Category,
			Text:     q.PromptText(),
			Tags:     q.Tags,
		})
	}
	return out
}

func summarizeExchanges(exchanges []Exchange) []ExchangeSummary {
	out := make([]ExchangeSummary, 0, len(exchanges))
	for _, ex := range exchanges {
		out = append(out, ExchangeSummary{
			Question: ex.Prompt,
			Answer:   ex.Answer.Raw(),
		})
	}
	return out
}
