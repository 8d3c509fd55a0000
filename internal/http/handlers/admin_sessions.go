package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leadlens-ai/leadlens/internal/archive"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

type sessionArchive interface {
	ListRecent(ctx context.Context, limit int32) ([]archive.InterviewRecord, error)
	Get(ctx context.Context, sessionID string) (archive.InterviewRecord, error)
}

// AdminSessionsHandler lets reviewers browse archived interviews.
type AdminSessionsHandler struct {
	store  sessionArchive
	logger *logging.Logger
}

func NewAdminSessionsHandler(store sessionArchive, logger *logging.Logger) *AdminSessionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionsHandler{store: store, logger: logger}
}

// ListSessions handles GET /admin/sessions?limit=N.
func (h *AdminSessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, `{"error":"archive disabled (db not configured)"}`, http.StatusServiceUnavailable)
		return
	}

	limit := int32(20)
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			http.Error(w, `{"error":"invalid limit; must be 1-200"}`, http.StatusBadRequest)
			return
		}
		limit = int32(parsed)
	}

	records, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list archived sessions", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []archive.InterviewRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"sessions": records,
		"count":    len(records),
	})
}

// GetSession handles GET /admin/sessions/{sessionID}.
func (h *AdminSessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, `{"error":"archive disabled (db not configured)"}`, http.StatusServiceUnavailable)
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		http.Error(w, `{"error":"session id required"}`, http.StatusBadRequest)
		return
	}

	record, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, archive.ErrRecordNotFound) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load archived session", "session_id", sessionID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(record)
}
