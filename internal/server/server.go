// Package server exposes the session coordinator over a chi REST API.
// Mutating routes require an API key; read routes are open because access
// is expected to be gated by the tailnet.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironcoach/internal/archive"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/claude/ironcoach/internal/session"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	coord  *session.Coordinator
	store  repo.Store
	arch   *archive.Archive
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(coord *session.Coordinator, store repo.Store, arch *archive.Archive, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		coord:  coord,
		store:  store,
		arch:   arch,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount attaches an extra handler subtree, e.g. the MCP transport.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Session commands (API key required)
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/start", s.handleStartWorkout)
		r.Route("/{memberID}", func(r chi.Router) {
			r.Post("/log-set", s.handleLogSet)
			r.Post("/skip-set", s.handleSkipSet)
			r.Post("/skip-exercise", s.handleSkipExercise)
			r.Post("/substitute", s.handleSubstitute)
			r.Post("/reset-exercise", s.handleResetExercise)
			r.Post("/adjust-weight", s.handleAdjustWeight)
			r.Post("/adjust-reps", s.handleAdjustReps)
			r.Post("/skip-rest", s.handleSkipRest)
			r.Post("/adjust-rest", s.handleAdjustRest)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/complete-early", s.handleCompleteEarly)
		})
	})

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/sessions/{memberID}/state", s.handleSessionState)
	s.router.Get("/api/v1/members/{memberID}/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/members/{memberID}/history", s.handleHistory)
	s.router.Get("/api/v1/catalog/exercises", s.handleListExercises)
	s.router.Get("/api/v1/catalog/protocols", s.handleListProtocols)
}
