package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leadlens-ai/leadlens/internal/http/handlers"
	httpmiddleware "github.com/leadlens-ai/leadlens/internal/http/middleware"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/internal/webchat"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	InterviewHandler *interview.Handler

	// Live websocket transport, mounted at /ws when set. The embeddable
	// widget and its HTTP fallback live under /webchat.
	WebchatHandler *webchat.Handler

	// Admin surface (optional, requires AdminAuthSecret)
	AdminDashboard  *handlers.AdminDashboardHandler
	AdminSessions   *handlers.AdminSessionsHandler
	AdminCatalog    *handlers.AdminCatalogHandler
	AdminAuthSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Rate limit for the public start endpoint; zero values disable it.
	StartRatePerSec float64
	StartRateBurst  int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.InterviewHandler != nil {
			public.Route("/interviews", func(r chi.Router) {
				start := http.HandlerFunc(cfg.InterviewHandler.Start)
				if cfg.StartRatePerSec > 0 && cfg.StartRateBurst > 0 {
					r.With(httpmiddleware.RateLimit(cfg.StartRatePerSec, cfg.StartRateBurst)).Post("/start", start)
				} else {
					r.Post("/start", start)
				}
				r.Get("/jobs/{jobID}", cfg.InterviewHandler.JobStatus)
				r.Post("/{sessionID}/turn", cfg.InterviewHandler.Turn)
				r.Get("/{sessionID}", cfg.InterviewHandler.GetSession)
				r.Get("/{sessionID}/report", cfg.InterviewHandler.Report)
			})
		}

		if cfg.WebchatHandler != nil {
			public.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
			public.Get("/webchat/widget.js", cfg.WebchatHandler.HandleWidgetJS)
			public.Post("/webchat/answer", cfg.WebchatHandler.HandleAnswer)
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminDashboard != nil {
				admin.Get("/dashboard", cfg.AdminDashboard.GetDashboard)
			}
			if cfg.AdminSessions != nil {
				admin.Get("/sessions", cfg.AdminSessions.ListSessions)
				admin.Get("/sessions/{sessionID}", cfg.AdminSessions.GetSession)
			}
			if cfg.AdminCatalog != nil {
				admin.Get("/catalog", cfg.AdminCatalog.GetCatalog)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
