package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/cvforge/internal/config"
	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for cvforge.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *critique.LLMStats
	limiter      *RateLimiter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, stats *critique.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		limiter:      NewRateLimiter(cfg.RateLimitRPS),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.CvforgeAPIKey, s.log))

		r.Post("/api/documents/replace", s.handleReplace)
		r.Post("/api/documents/extract", s.handleExtract)

		r.Get("/api/tailor/{jobID}/status", s.handleTailorStatus)
		r.Get("/api/tailor/{jobID}/analysis", s.handleTailorAnalysis)
		r.Get("/api/tailor/{jobID}/document", s.handleTailorDocument)
		r.Post("/api/tailor/{jobID}/apply", s.handleTailorApply)

		r.Get("/api/stats/llm", s.handleLLMStats)

		// AI-backed endpoints.
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Limit)
			r.Post("/api/tailor", s.handleTailor)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
