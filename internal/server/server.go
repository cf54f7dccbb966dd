package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/periodize/internal/schedule"
	"github.com/meltforce/periodize/internal/seed"
	"github.com/meltforce/periodize/internal/session"
	"github.com/meltforce/periodize/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	schedule *schedule.Service
	sessions *session.Service
	catalog  catalogLoader
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured. The identity middleware
// resolves the caller to a user id; pass DevIdentity for local development or
// TailscaleIdentity behind tsnet.
func New(db *storage.DB, scheduleSvc *schedule.Service, sessionSvc *session.Service, apiKey string, identity func(http.Handler) http.Handler, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		schedule: scheduleSvc,
		sessions: sessionSvc,
		catalog:  seed.NewLoader(db, log),
		log:      log,
		apiKey:   apiKey,
		identity: identity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// MountMCP exposes an MCP transport handler at /mcp. The handler carries its
// own identity resolution, so it mounts outside the API identity middleware.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/me/program", s.handleMyProgram)
		r.Get("/categories", s.handleCategories)

		// Schedule reads
		r.Get("/schedule/today", s.handleTodayWorkout)
		r.Get("/schedule/week", s.handleWeekSchedule)
		r.Get("/schedule/phases/{phase}", s.handlePhaseOverview)
		r.Get("/schedule/overrides", s.handleOverrides)

		// Schedule mutations
		r.Post("/schedule/focus", s.handleSetFocus)
		r.Delete("/schedule/focus", s.handleClearFocus)
		r.Post("/schedule/swap", s.handleSwap)
		r.Post("/schedule/phases/{phase}/reset", s.handleResetPhase)

		// Sessions
		r.Get("/sessions", s.handleSessionHistory)
		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Put("/sessions/{id}/progress", s.handleUpdateProgress)
		r.Post("/sessions/{id}/complete", s.handleCompleteSession)
		r.Post("/sessions/{id}/abandon", s.handleAbandonSession)

		r.Get("/templates/completed", s.handleCompletedTemplates)
	})

	// Admin endpoints (API key required)
	s.router.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/catalog", s.handleCatalogUpsert)
	})
}
