package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// Handler runs live interviews over WebSocket for the embeddable widget.
type Handler struct {
	service  interview.Service
	logger   *logging.Logger
	widgetJS []byte

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type       string         `json:"type"` // "start", "answer", "ping"
	SessionID  string         `json:"session_id,omitempty"`
	QuestionID string         `json:"question_id,omitempty"`
	VariantID  string         `json:"variant_id,omitempty"`
	Text       string         `json:"text,omitempty"`
	Answer     catalog.Answer `json:"answer,omitempty"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type         string                       `json:"type"` // "session", "question", "finished", "pong", "error"
	SessionID    string                       `json:"session_id,omitempty"`
	Question     *interview.PresentedQuestion `json:"question,omitempty"`
	Score        int                          `json:"score,omitempty"`
	FinishReason string                       `json:"finish_reason,omitempty"`
	Text         string                       `json:"text,omitempty"`
	Timestamp    string                       `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(service interview.Service, widgetJS []byte, logger *logging.Logger) *Handler {
	if service == nil {
		panic("webchat: interview service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		logger:   logger,
		widgetJS: widgetJS,
		sessions: make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and runs the interview loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")

	var registered string
	defer func() {
		if registered != "" {
			h.unregister(registered)
		}
	}()

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})

		case "start":
			if msg.SessionID != "" {
				sessionID = msg.SessionID
			}
			if sessionID == "" {
				sessionID = generateSessionID()
			}

			result, err := h.service.StartInterview(r.Context(), interview.StartRequest{SessionID: sessionID})
			if err != nil {
				h.logger.Error("webchat: failed to start interview", "session_id", sessionID, "error", err)
				_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
				continue
			}
			sessionID = result.SessionID

			h.register(sessionID, &wsConn{conn: conn, done: make(chan struct{})})
			registered = sessionID
			h.logger.Info("webchat: interview started", "session_id", sessionID)

			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
			h.sendResult(conn, result)

		case "answer":
			if sessionID == "" {
				_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "no active session; send start first"})
				continue
			}
			answer := msg.Answer
			if answer.IsEmpty() && strings.TrimSpace(msg.Text) != "" {
				answer = catalog.TextAnswer(msg.Text)
			}
			h.processAnswer(r.Context(), conn, interview.TurnRequest{
				SessionID:  sessionID,
				QuestionID: msg.QuestionID,
				VariantID:  msg.VariantID,
				Answer:     answer,
			})
		}
	}
}

func (h *Handler) processAnswer(ctx context.Context, conn *websocket.Conn, req interview.TurnRequest) {
	if req.QuestionID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "question_id is required"})
		return
	}

	result, err := h.service.ProcessTurn(ctx, req)
	if err != nil {
		h.logger.Error("webchat: failed to process answer", "session_id", req.SessionID, "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
		return
	}

	h.sendResult(conn, result)
}

func (h *Handler) sendResult(conn *websocket.Conn, result *interview.TurnResult) {
	now := time.Now().UTC().Format(time.RFC3339)
	if result.Finished {
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:         "finished",
			SessionID:    result.SessionID,
			Score:        result.Completion.Score,
			FinishReason: string(result.FinishReason),
			Timestamp:    now,
		})
		return
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "question",
		SessionID: result.SessionID,
		Question:  result.Question,
		Score:     result.Completion.Score,
		Timestamp: now,
	})
}

func (h *Handler) register(sessionID string, wsc *wsConn) {
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
}

func (h *Handler) unregister(sessionID string) {
	h.mu.Lock()
	wsc, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()
	if ok {
		close(wsc.done)
	}
}

// SendToSession pushes a message to an active WebSocket session.
func (h *Handler) SendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleAnswer is the HTTP fallback for widgets without WebSocket support.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.QuestionID == "" {
		http.Error(w, "session_id and question_id are required", http.StatusBadRequest)
		return
	}

	answer := req.Answer
	if answer.IsEmpty() && strings.TrimSpace(req.Text) != "" {
		answer = catalog.TextAnswer(req.Text)
	}

	result, err := h.service.ProcessTurn(r.Context(), interview.TurnRequest{
		SessionID:  req.SessionID,
		QuestionID: req.QuestionID,
		VariantID:  req.VariantID,
		Answer:     answer,
	})
	if err != nil {
		h.logger.Error("webchat: failed to process answer", "session_id", req.SessionID, "error", err)
		http.Error(w, "failed to process answer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
