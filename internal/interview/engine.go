package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// ErrTurnInFlight means a second turn arrived for a session whose previous
// turn is still being processed. Turns within a session are strictly
// sequential; callers should retry after the in-flight turn resolves.
var ErrTurnInFlight = errors.New("interview: turn already in flight for session")

// FinishHook runs after an interview reaches a terminal state. Hooks are
// best-effort: a failing hook is logged, never surfaced to the respondent.
type FinishHook interface {
	OnFinish(ctx context.Context, c Context) error
}

// FinishHookFunc adapts a function to the FinishHook interface.
type FinishHookFunc func(ctx context.Context, c Context) error

func (f FinishHookFunc) OnFinish(ctx context.Context, c Context) error {
	return f(ctx, c)
}

// StartRequest opens a new interview session.
type StartRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}

// TurnRequest carries one answer into a session.
type TurnRequest struct {
	SessionID  string         `json:"sessionId"`
	QuestionID string         `json:"questionId"`
	VariantID  string         `json:"variantId,omitempty"`
	Answer     catalog.Answer `json:"answer"`
}

// PresentedQuestion is the next question as shown to the respondent.
type PresentedQuestion struct {
	ID        string            `json:"id"`
	VariantID string            `json:"variantId,omitempty"`
	Prompt    string            `json:"prompt"`
	Input     catalog.InputType `json:"input"`
	Options   []string          `json:"options,omitempty"`
	Source    QuestionSource    `json:"source"`
}

// TurnResult is the engine's response to a start or turn request.
type TurnResult struct {
	SessionID      string             `json:"sessionId"`
	Question       *PresentedQuestion `json:"question,omitempty"`
	Decision       *RoutingDecision   `json:"decision,omitempty"`
	Finished       bool               `json:"finished"`
	FinishReason   FinishReason       `json:"finishReason,omitempty"`
	Completion     Completion         `json:"completion"`
	QuestionsAsked int                `json:"questionsAsked"`
}

// Engine drives interview sessions: it loads the context, applies the
// answer, asks the router what comes next, and persists the result. All
// context mutation goes through the pure Apply transition; the engine itself
// only coordinates.
type Engine struct {
	store    SessionStore
	router   *Router
	catalog  *catalog.Catalog
	logger   *logging.Logger
	metrics  *metrics.InterviewMetrics
	hooks    []FinishHook
	clock    func() time.Time
	inflight sync.Map
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithFinishHooks registers post-finish callbacks (archival, notification).
func WithFinishHooks(hooks ...FinishHook) EngineOption {
	return func(e *Engine) { e.hooks = append(e.hooks, hooks...) }
}

// WithEngineLogger overrides the default logger.
func WithEngineLogger(logger *logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineMetrics wires the observability counters.
func WithEngineMetrics(m *metrics.InterviewMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine builds an engine over a session store and router.
func NewEngine(store SessionStore, router *Router, cat *catalog.Catalog, opts ...EngineOption) *Engine {
	if store == nil {
		panic("interview: session store cannot be nil")
	}
	if router == nil {
		panic("interview: router cannot be nil")
	}
	if cat == nil {
		panic("interview: catalog cannot be nil")
	}
	e := &Engine{
		store:   store,
		router:  router,
		catalog: cat,
		logger:  logging.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartInterview creates a session and returns the first question.
func (e *Engine) StartInterview(ctx context.Context, req StartRequest) (*TurnResult, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	c := NewContext(sessionID, e.router.Scorer().Policy().MaxQuestions, e.clock())
	out := e.router.NextQuestion(ctx, c)
	c.Completion = out.Completion

	if err := e.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("interview: failed to create session: %w", err)
	}

	e.logger.Info("interview started", "session_id", sessionID)
	return e.result(c, out), nil
}

// ProcessTurn applies an answer and routes the next question. Concurrent
// turns on the same session are rejected with ErrTurnInFlight; a turn on a
// finished session returns the terminal result unchanged.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.SessionID == "" {
		return nil, errors.New("interview: session id is required")
	}
	if _, loaded := e.inflight.LoadOrStore(req.SessionID, struct{}{}); loaded {
		return nil, ErrTurnInFlight
	}
	defer e.inflight.Delete(req.SessionID)

	c, err := e.store.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if c.Terminal {
		e.metrics.ObserveTurn("already_finished")
		return e.result(c, TurnOutput{ShouldFinish: true, FinishReason: c.FinishReason, Completion: c.Completion}), nil
	}

	q, ok := e.catalog.Get(req.QuestionID)
	source := SourceCatalog
	if !ok {
		// Unknown ids (generated follow-ups, stale clients) still advance
		// the interview; they just extract nothing.
		q = catalog.Question{ID: req.QuestionID, Input: catalog.InputText}
		source = SourceGenerated
	}

	next := Apply(c, q, AnswerInput{
		QuestionID: req.QuestionID,
		VariantID:  req.VariantID,
		Answer:     req.Answer,
		Source:     source,
	}, e.router.Scorer(), e.clock())

	out := e.router.NextQuestion(ctx, next)
	next.Completion = out.Completion

	if out.ShouldFinish {
		next.Terminal = true
		next.FinishReason = out.FinishReason
		e.metrics.ObserveFinish(string(out.FinishReason), out.Completion.Score)
		e.runFinishHooks(ctx, next)
	}

	if err := e.store.Put(ctx, next); err != nil {
		e.metrics.ObserveTurn("store_error")
		return nil, fmt.Errorf("interview: failed to persist session: %w", err)
	}

	e.metrics.ObserveTurn("ok")
	return e.result(next, out), nil
}

// GetSession loads the current context for a session.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (Context, error) {
	return e.store.Get(ctx, sessionID)
}

// AbandonSession drops a session without generating a report.
func (e *Engine) AbandonSession(ctx context.Context, sessionID string) error {
	return e.store.Delete(ctx, sessionID)
}

func (e *Engine) runFinishHooks(ctx context.Context, c Context) {
	for _, hook := range e.hooks {
		if err := hook.OnFinish(ctx, c); err != nil {
			e.logger.Error("finish hook failed",
				"session_id", c.SessionID,
				"error", err.Error(),
			)
		}
	}
}

func (e *Engine) result(c Context, out TurnOutput) *TurnResult {
	res := &TurnResult{
		SessionID:      c.SessionID,
		Decision:       out.Decision,
		Finished:       out.ShouldFinish,
		FinishReason:   out.FinishReason,
		Completion:     out.Completion,
		QuestionsAsked: c.QuestionsAsked(),
	}
	if out.NextQuestion != nil {
		q := out.NextQuestion
		variant := catalog.Variant{}
		if len(q.Variants) > 0 {
			variant = q.Variants[0]
		}
		res.Question = &PresentedQuestion{
			ID:        q.ID,
			VariantID: variant.ID,
			Prompt:    variant.Text,
			Input:     q.Input,
			Options:   q.Options,
			Source:    SourceCatalog,
		}
	}
	return res
}
