package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/http/handlers"
	httpmiddleware "github.com/leadlens-ai/leadlens/internal/http/middleware"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

func newTestRouter(t *testing.T, adminSecret string) http.Handler {
	t.Helper()

	logger := logging.Default()
	cat := catalog.Default()
	scorer := interview.NewScorer(interview.DefaultInventory(), interview.DefaultFinishPolicy())
	engineRouter := interview.NewRouter(cat, scorer)
	store := interview.NewMemorySessionStore(time.Hour)
	engine := interview.NewEngine(store, engineRouter, cat)

	cfg := &Config{
		Logger:           logger,
		InterviewHandler: interview.NewHandler(engine, engine, nil, logger),
		AdminCatalog:     handlers.NewAdminCatalogHandler(cat, logger),
		AdminAuthSecret:  adminSecret,
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterInterviewFlow(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/interviews/start", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var started interview.TurnResult
	if err := json.NewDecoder(rr.Body).Decode(&started); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}
	if started.SessionID == "" || started.Question == nil {
		t.Fatalf("expected session and first question, got %#v", started)
	}

	turn := interview.TurnRequest{
		QuestionID: started.Question.ID,
		VariantID:  started.Question.VariantID,
		Answer:     catalog.TextAnswer("we run a logistics business"),
	}
	body, _ := json.Marshal(turn)

	req = httptest.NewRequest(http.MethodPost, "/interviews/"+started.SessionID+"/turn", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var turned interview.TurnResult
	if err := json.NewDecoder(rr.Body).Decode(&turned); err != nil {
		t.Fatalf("failed to decode turn response: %v", err)
	}
	if turned.QuestionsAsked != 1 {
		t.Fatalf("expected 1 question asked, got %d", turned.QuestionsAsked)
	}

	req = httptest.NewRequest(http.MethodGet, "/interviews/"+started.SessionID, nil)
	rr = httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/interviews/"+started.SessionID+"/report", nil)
	rr = httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterUnknownSession(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/interviews/does-not-exist", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	router := newTestRouter(t, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/catalog", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	claims := httpmiddleware.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    httpmiddleware.AdminTokenIssuer,
			Subject:   "admin-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
		Scope: "admin",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp struct {
		Version string `json:"version"`
		Count   int    `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode catalog response: %v", err)
	}
	if resp.Count == 0 {
		t.Fatalf("expected non-empty catalog")
	}
}

func TestRouterAdminDisabledWithoutSecret(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/admin/catalog", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
