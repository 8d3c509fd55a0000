package interview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// SessionReader loads stored session contexts for read-only endpoints.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (Context, error)
}

// Handler wires HTTP requests to the interview service.
type Handler struct {
	service  Service
	sessions SessionReader
	jobs     JobRecorder
	logger   *logging.Logger
	clock    func() time.Time
}

// NewHandler creates an interview handler. The jobs recorder may be nil when
// the deployment runs without the async queue path.
func NewHandler(service Service, sessions SessionReader, jobs JobRecorder, logger *logging.Logger) *Handler {
	if service == nil {
		panic("interview: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		sessions: sessions,
		jobs:     jobs,
		logger:   logger,
		clock:    time.Now,
	}
}

// Start handles POST /interviews/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("failed to decode start request", "error", err)
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
	}

	resp, err := h.service.StartInterview(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to start interview", "error", err)
		http.Error(w, `{"error":"failed to start interview"}`, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// Turn handles POST /interviews/{sessionID}/turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		http.Error(w, `{"error":"session id required"}`, http.StatusBadRequest)
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode turn request", "session_id", sessionID, "error", err)
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	req.SessionID = sessionID
	if req.QuestionID == "" {
		http.Error(w, `{"error":"questionId required"}`, http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrTurnInFlight):
			http.Error(w, `{"error":"turn already in flight"}`, http.StatusConflict)
		default:
			h.logger.Error("failed to process turn", "session_id", sessionID, "error", err)
			http.Error(w, `{"error":"failed to process turn"}`, http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /interviews/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		http.Error(w, `{"error":"session id required"}`, http.StatusBadRequest)
		return
	}
	if h.sessions == nil {
		http.Error(w, `{"error":"session lookup not available"}`, http.StatusServiceUnavailable)
		return
	}

	c, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

// SessionReport is the qualification summary served once a reviewer asks for
// the outcome of a session. It is a read model over the stored context.
type SessionReport struct {
	SessionID         string          `json:"sessionId"`
	GeneratedAt       time.Time       `json:"generatedAt"`
	Persona           catalog.Persona `json:"persona,omitempty"`
	PersonaConfidence float64         `json:"personaConfidence"`
	Terminal          bool            `json:"terminal"`
	FinishReason      FinishReason    `json:"finishReason,omitempty"`
	Completion        Completion      `json:"completion"`
	Assessment        Assessment      `json:"assessment"`
	Insights          Insights        `json:"insights"`
	Signals           WeakSignals     `json:"signals"`
	QuestionsAsked    int             `json:"questionsAsked"`
	FollowUpsAsked    int             `json:"followUpsAsked"`
}

// Report handles GET /interviews/{sessionID}/report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		http.Error(w, `{"error":"session id required"}`, http.StatusBadRequest)
		return
	}
	if h.sessions == nil {
		http.Error(w, `{"error":"session lookup not available"}`, http.StatusServiceUnavailable)
		return
	}

	c, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load session for report", "session_id", sessionID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	followUps := 0
	for _, ex := range c.Asked {
		if ex.Source == SourceGenerated {
			followUps++
		}
	}

	report := SessionReport{
		SessionID:         c.SessionID,
		GeneratedAt:       h.clock().UTC(),
		Persona:           c.Persona,
		PersonaConfidence: c.PersonaConfidence,
		Terminal:          c.Terminal,
		FinishReason:      c.FinishReason,
		Completion:        c.Completion,
		Assessment:        c.Assessment,
		Insights:          c.Insights,
		Signals:           c.Signals,
		QuestionsAsked:    c.QuestionsAsked(),
		FollowUpsAsked:    followUps,
	}

	h.writeJSON(w, http.StatusOK, report)
}

// JobStatus handles GET /interviews/jobs/{jobID}.
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(chi.URLParam(r, "jobID"))
	if jobID == "" {
		http.Error(w, `{"error":"job id required"}`, http.StatusBadRequest)
		return
	}
	if h.jobs == nil {
		http.Error(w, `{"error":"job tracking not available"}`, http.StatusServiceUnavailable)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load job", "job_id", jobID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
