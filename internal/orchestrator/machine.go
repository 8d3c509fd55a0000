package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// EndPolicy extends the base finish thresholds for the deeper interview
// mode: before ending, enough priority areas must each have received a
// minimum number of answers. The hard question cap always ends the
// interview.
type EndPolicy struct {
	MinPriorityAreas  int
	MinAnswersPerArea int
}

// DefaultEndPolicy returns the standard deep-dive requirements.
func DefaultEndPolicy() EndPolicy {
	return EndPolicy{MinPriorityAreas: 2, MinAnswersPerArea: 3}
}

// StepResult reports one advance of the machine.
type StepResult struct {
	State         State
	Question      *PendingQuestion
	Decision      *interview.RoutingDecision
	Completion    interview.Completion
	DecisionPhase Phase
	IsFollowUp    bool
	Finished      bool
	FinishReason  interview.FinishReason
}

// Machine drives the deeper interview variant on top of the adaptive router:
// variant rotation, follow-up probes, answer tagging and the priority-area
// termination rule.
type Machine struct {
	router    *interview.Router
	tagger    *Tagger
	followUps FollowUpPolicy
	end       EndPolicy
	rng       *rand.Rand
	clock     func() time.Time
	logger    *logging.Logger
	metrics   *metrics.InterviewMetrics
}

// MachineOption customizes a Machine.
type MachineOption func(*Machine)

// WithTagger installs the answer classifier.
func WithTagger(t *Tagger) MachineOption {
	return func(m *Machine) { m.tagger = t }
}

// WithFollowUpPolicy overrides the follow-up caps.
func WithFollowUpPolicy(p FollowUpPolicy) MachineOption {
	return func(m *Machine) { m.followUps = p }
}

// WithEndPolicy overrides the priority-area termination rule.
func WithEndPolicy(p EndPolicy) MachineOption {
	return func(m *Machine) { m.end = p }
}

// WithRand injects the randomness source used for variant reuse.
func WithRand(rng *rand.Rand) MachineOption {
	return func(m *Machine) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// WithMachineClock injects the time source.
func WithMachineClock(clock func() time.Time) MachineOption {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithMachineLogger overrides the default logger.
func WithMachineLogger(logger *logging.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMachineMetrics wires the observability counters.
func WithMachineMetrics(mx *metrics.InterviewMetrics) MachineOption {
	return func(m *Machine) { m.metrics = mx }
}

// NewMachine builds the deeper-interview state machine.
func NewMachine(router *interview.Router, opts ...MachineOption) *Machine {
	if router == nil {
		panic("orchestrator: router cannot be nil")
	}
	m := &Machine{
		router:    router,
		followUps: DefaultFollowUpPolicy(),
		end:       DefaultEndPolicy(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:     time.Now,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Router exposes the underlying adaptive router.
func (m *Machine) Router() *interview.Router {
	return m.router
}

// Start picks the opening question for a fresh session.
func (m *Machine) Start(ctx context.Context, s State) StepResult {
	next := s.Clone()
	if next.Phase == PhaseEnded {
		return StepResult{State: next, Finished: true, FinishReason: next.FinishReason}
	}
	return m.decide(ctx, next, nil)
}

// Step applies the answer to the pending question and advances the machine.
// Once the ended phase is reached every further Step is a no-op.
func (m *Machine) Step(ctx context.Context, s State, answer catalog.Answer) StepResult {
	next := s.Clone()
	if next.Phase == PhaseEnded {
		return StepResult{
			State:        next,
			Completion:   next.Completion,
			Finished:     true,
			FinishReason: next.FinishReason,
		}
	}
	if next.Pending == nil {
		return m.decide(ctx, next, nil)
	}

	pending := *next.Pending
	q, source := m.resolveQuestion(pending)
	now := m.clock()

	// Signals from this answer alone, before the monotonic merge, so the
	// follow-up gate reacts to the turn rather than to session history.
	turnSignals := interview.DetectWeakSignals(answer, q)

	next.Context = interview.Apply(next.Context, q, interview.AnswerInput{
		QuestionID: pending.QuestionID,
		VariantID:  pending.VariantID,
		Prompt:     pending.Prompt,
		Answer:     answer,
		Source:     source,
	}, m.router.Scorer(), now)

	tags := m.classify(ctx, &next, pending.Prompt, answer)
	m.recordAnswer(&next, pending, q, answer, tags)

	// Scoreable opportunity: the classifier attached at least one tag.
	opportunity := len(tags) > 0
	if shouldFollowUp(next, pending.BaseID, q, answer, turnSignals, opportunity, m.followUps) {
		return m.askFollowUp(&next, pending, q, turnSignals, opportunity)
	}

	return m.decide(ctx, next, &pending)
}

// resolveQuestion maps a pending question back to its catalog entry, or
// synthesizes a free-text question for generated probes.
func (m *Machine) resolveQuestion(pending PendingQuestion) (catalog.Question, interview.QuestionSource) {
	if q, ok := m.router.Catalog().Get(pending.BaseID); ok && pending.QuestionID == pending.BaseID {
		return q, interview.SourceCatalog
	}
	return catalog.Question{
		ID:       pending.QuestionID,
		Category: pending.Area,
		Input:    catalog.InputText,
	}, interview.SourceGenerated
}

func (m *Machine) classify(ctx context.Context, s *State, question string, answer catalog.Answer) []string {
	if m.tagger == nil || answer.Kind != catalog.AnswerKindText || answer.IsEmpty() {
		return nil
	}
	s.LLMCalls++
	return m.tagger.ExtractTags(ctx, question, answer.Raw())
}

// recordAnswer folds the turn into the deeper-variant bookkeeping: company
// snapshot, expertise, problem stories and the per-area deep dive.
func (m *Machine) recordAnswer(s *State, pending PendingQuestion, q catalog.Question, answer catalog.Answer, tags []string) {
	refreshCompanySnapshot(s)

	area := q.Category
	if area == "" {
		area = "general"
	}

	if q.HasTag("expertise") && answer.Kind == catalog.AnswerKindScale {
		if level := ExpertiseFromScale(answer.Scale); level != ExpertiseNone {
			if s.Expertise == nil {
				s.Expertise = make(map[string]ExpertiseLevel)
			}
			s.Expertise[area] = level
		}
	}

	raw := strings.TrimSpace(answer.Raw())
	if raw == "" {
		return
	}

	dive := s.deepDiveFor(area)
	dive.Entries = append(dive.Entries, DeepDiveEntry{
		QuestionID: pending.QuestionID,
		Answer:     raw,
		Tags:       tags,
	})
	dive.Tags = mergeTags(dive.Tags, tags)

	if isProblemNarrative(q, answer) {
		s.Stories = append(s.Stories, ProblemStory{
			Area:       area,
			QuestionID: pending.QuestionID,
			Narrative:  raw,
			Tags:       tags,
			Quantified: catalog.ContainsDigit(raw),
		})
	}
}

// isProblemNarrative detects answers that read as a reported problem: a
// free-text answer of some substance to a pain-oriented question.
func isProblemNarrative(q catalog.Question, answer catalog.Answer) bool {
	if answer.Kind != catalog.AnswerKindText {
		return false
	}
	if q.Category != "pain" && !q.HasTag("pain") {
		return false
	}
	return len(strings.TrimSpace(answer.Raw())) >= 20
}

func (m *Machine) askFollowUp(s *State, pending PendingQuestion, q catalog.Question, turnSignals interview.WeakSignals, opportunity bool) StepResult {
	n := s.FollowUpsAsked[pending.BaseID] + 1
	if s.FollowUpsAsked == nil {
		s.FollowUpsAsked = make(map[string]int)
	}
	s.FollowUpsAsked[pending.BaseID] = n
	m.metrics.ObserveFollowUp()

	probe := &PendingQuestion{
		QuestionID: followUpID(pending.BaseID, n),
		BaseID:     pending.BaseID,
		Prompt:     followUpPrompt(q, turnSignals, opportunity),
		Area:       q.Category,
		FollowUp:   true,
	}
	s.Pending = probe
	s.Phase = PhaseCollecting

	m.logger.Debug("asking follow-up",
		"session_id", s.SessionID,
		"base_question", pending.BaseID,
		"follow_up", n,
	)
	return StepResult{
		State:         *s,
		Question:      probe,
		Completion:    s.Completion,
		DecisionPhase: PhaseDecidingNext,
		IsFollowUp:    true,
	}
}

// decide runs the router and lands the machine in collecting or ended.
func (m *Machine) decide(ctx context.Context, s State, answered *PendingQuestion) StepResult {
	out := m.router.NextQuestion(ctx, s.Context)
	if out.Decision != nil && out.Decision.Source == interview.RoutingSourceModel {
		s.LLMCalls++
	}

	if out.ShouldFinish {
		s.Phase = PhaseDecidingEnd
		if m.mayEnd(s, out.FinishReason) {
			s.Phase = PhaseEnded
			s.Pending = nil
			s.Terminal = true
			s.FinishReason = out.FinishReason
			s.Completion = out.Completion
			m.metrics.ObserveFinish(string(out.FinishReason), out.Completion.Score)
			return StepResult{
				State:         s,
				Completion:    out.Completion,
				DecisionPhase: PhaseDecidingEnd,
				Finished:      true,
				FinishReason:  out.FinishReason,
			}
		}
		// Base thresholds are met but a priority area still needs depth;
		// spend remaining budget on a deep-dive probe instead of ending.
		s.Completion = out.Completion
		return m.askDeepDive(s)
	}

	s.Phase = PhaseDecidingNext
	q := out.NextQuestion
	variant, ok := pickVariant(s, *q, m.rng)
	pending := &PendingQuestion{
		QuestionID: q.ID,
		BaseID:     q.ID,
		Prompt:     q.PromptText(),
		Area:       q.Category,
	}
	if ok {
		pending.VariantID = variant.ID
		pending.Prompt = variant.Text
		s.markVariantUsed(q.ID, variant.ID)
	}
	s.Pending = pending
	s.Phase = PhaseCollecting
	s.Completion = out.Completion

	return StepResult{
		State:         s,
		Question:      pending,
		Decision:      out.Decision,
		Completion:    out.Completion,
		DecisionPhase: PhaseDecidingNext,
	}
}

// mayEnd applies the priority-area rule on top of the base finish decision.
// The hard question cap always wins; sessions that surfaced no priority
// areas have nothing left to deepen.
func (m *Machine) mayEnd(s State, reason interview.FinishReason) bool {
	if reason == interview.FinishMaxQuestions {
		return true
	}
	if m.end.MinPriorityAreas <= 0 {
		return true
	}
	areas := s.PriorityAreas()
	if len(areas) == 0 {
		return true
	}

	required := m.end.MinPriorityAreas
	if len(areas) < required {
		required = len(areas)
	}
	var satisfied int
	for _, area := range areas {
		if s.AreaAnswerCount(area) >= m.end.MinAnswersPerArea {
			satisfied++
		}
	}
	return satisfied >= required
}

// askDeepDive probes the least-covered priority area.
func (m *Machine) askDeepDive(s State) StepResult {
	target := ""
	best := -1
	for _, area := range s.PriorityAreas() {
		count := s.AreaAnswerCount(area)
		if count >= m.end.MinAnswersPerArea {
			continue
		}
		if best == -1 || count < best {
			target = area
			best = count
		}
	}
	if target == "" {
		// Should not happen given mayEnd returned false; end defensively
		// rather than loop.
		s.Phase = PhaseEnded
		s.Pending = nil
		s.Terminal = true
		s.FinishReason = interview.FinishAllEssential
		return StepResult{
			State:         s,
			Completion:    s.Completion,
			DecisionPhase: PhaseDecidingEnd,
			Finished:      true,
			FinishReason:  s.FinishReason,
		}
	}

	probeID := fmt.Sprintf("%s.deepdive.%d", target, s.AreaAnswerCount(target)+1)
	probe := &PendingQuestion{
		QuestionID: probeID,
		BaseID:     probeID,
		Prompt:     deepDivePrompt(target),
		Area:       target,
	}
	s.Pending = probe
	s.Phase = PhaseCollecting

	m.logger.Debug("deep diving before finish",
		"session_id", s.SessionID,
		"area", target,
	)
	return StepResult{
		State:         s,
		Question:      probe,
		Completion:    s.Completion,
		DecisionPhase: PhaseDecidingEnd,
	}
}

func deepDivePrompt(area string) string {
	return fmt.Sprintf("Earlier you mentioned a problem around %s. Walk me through what that looks like day to day.", area)
}

func refreshCompanySnapshot(s *State) {
	s.Company.Industry = assessmentString(s, catalog.FieldIndustry)
	s.Company.TeamSize = assessmentString(s, catalog.FieldTeamSize)
	s.Company.RevenueBand = assessmentString(s, catalog.FieldRevenueBand)
}

func assessmentString(s *State, path string) string {
	v, ok := s.Assessment.Get(path)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func mergeTags(existing, incoming []string) []string {
	for _, tag := range incoming {
		found := false
		for _, have := range existing {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, tag)
		}
	}
	return existing
}
