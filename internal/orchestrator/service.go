package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// Service runs deeper-interview sessions over a state store. It satisfies
// interview.Service so the HTTP layer and the queue dispatcher can serve
// either mode without knowing which one is wired.
type Service struct {
	store    StateStore
	machine  *Machine
	logger   *logging.Logger
	hooks    []interview.FinishHook
	clock    func() time.Time
	inflight sync.Map
}

var _ interview.Service = (*Service)(nil)

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithServiceHooks registers post-finish callbacks (archival, notification).
func WithServiceHooks(hooks ...interview.FinishHook) ServiceOption {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

// WithServiceLogger overrides the default logger.
func WithServiceLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock overrides time.Now, for deterministic tests.
func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService builds a deeper-interview service over a state store and
// machine.
func NewService(store StateStore, machine *Machine, opts ...ServiceOption) *Service {
	if store == nil {
		panic("orchestrator: state store cannot be nil")
	}
	if machine == nil {
		panic("orchestrator: machine cannot be nil")
	}
	s := &Service{
		store:   store,
		machine: machine,
		logger:  logging.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartInterview creates a session and returns the opening question.
func (s *Service) StartInterview(ctx context.Context, req interview.StartRequest) (*interview.TurnResult, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	budget := s.machine.Router().Scorer().Policy().MaxQuestions
	state := NewState(sessionID, budget, s.clock())
	res := s.machine.Start(ctx, state)

	if err := s.store.Put(ctx, res.State); err != nil {
		return nil, fmt.Errorf("orchestrator: failed to create session: %w", err)
	}

	s.logger.Info("deep interview started", "session_id", sessionID)
	return s.toTurnResult(res), nil
}

// ProcessTurn applies an answer to the pending question and advances the
// machine. Concurrent turns on the same session are rejected with
// interview.ErrTurnInFlight. A request whose question id no longer matches
// the pending question re-presents the pending question without consuming
// the answer, so stale clients resynchronize instead of corrupting state.
func (s *Service) ProcessTurn(ctx context.Context, req interview.TurnRequest) (*interview.TurnResult, error) {
	if req.SessionID == "" {
		return nil, errors.New("orchestrator: session id is required")
	}
	if _, loaded := s.inflight.LoadOrStore(req.SessionID, struct{}{}); loaded {
		return nil, interview.ErrTurnInFlight
	}
	defer s.inflight.Delete(req.SessionID)

	state, err := s.store.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if state.Phase == PhaseEnded {
		return s.toTurnResult(StepResult{
			State:        state,
			Completion:   state.Completion,
			Finished:     true,
			FinishReason: state.FinishReason,
		}), nil
	}

	if state.Pending != nil && req.QuestionID != "" && req.QuestionID != state.Pending.QuestionID {
		s.logger.Warn("stale turn re-presented pending question",
			"session_id", req.SessionID,
			"got_question_id", req.QuestionID,
			"pending_question_id", state.Pending.QuestionID,
		)
		return s.toTurnResult(StepResult{
			State:      state,
			Question:   state.Pending,
			Completion: state.Completion,
			IsFollowUp: state.Pending.FollowUp,
		}), nil
	}

	res := s.machine.Step(ctx, state, req.Answer)

	if res.Finished {
		s.runFinishHooks(ctx, res.State.Context)
	}

	if err := s.store.Put(ctx, res.State); err != nil {
		return nil, fmt.Errorf("orchestrator: failed to persist session: %w", err)
	}

	return s.toTurnResult(res), nil
}

// GetSession loads the base conversation context for a session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (interview.Context, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return interview.Context{}, err
	}
	return state.Context, nil
}

// GetState loads the full deeper-interview state for a session.
func (s *Service) GetState(ctx context.Context, sessionID string) (State, error) {
	return s.store.Get(ctx, sessionID)
}

// Report builds the interviewer-facing summary for a session.
func (s *Service) Report(ctx context.Context, sessionID string) (Report, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(state, s.clock()), nil
}

// AbandonSession drops a session without generating a report.
func (s *Service) AbandonSession(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *Service) runFinishHooks(ctx context.Context, c interview.Context) {
	for _, hook := range s.hooks {
		if err := hook.OnFinish(ctx, c); err != nil {
			s.logger.Error("finish hook failed",
				"session_id", c.SessionID,
				"error", err.Error(),
			)
		}
	}
}

// toTurnResult flattens a machine step into the transport-level result
// shared with the base engine.
func (s *Service) toTurnResult(res StepResult) *interview.TurnResult {
	out := &interview.TurnResult{
		SessionID:      res.State.SessionID,
		Decision:       res.Decision,
		Finished:       res.Finished,
		FinishReason:   res.FinishReason,
		Completion:     res.Completion,
		QuestionsAsked: res.State.QuestionsAsked(),
	}
	if res.Question != nil {
		out.Question = s.presentQuestion(res.Question)
	}
	return out
}

func (s *Service) presentQuestion(pending *PendingQuestion) *interview.PresentedQuestion {
	pq := &interview.PresentedQuestion{
		ID:        pending.QuestionID,
		VariantID: pending.VariantID,
		Prompt:    pending.Prompt,
		Input:     catalog.InputText,
		Source:    interview.SourceGenerated,
	}
	if q, ok := s.machine.Router().Catalog().Get(pending.BaseID); ok && pending.QuestionID == pending.BaseID {
		pq.Input = q.Input
		pq.Options = q.Options
		pq.Source = interview.SourceCatalog
	}
	return pq
}
