package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/forge/internal/metrics"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/workout"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	workout  *workout.Service
	engine   *progression.Engine
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey leaves
// write endpoints open, which is fine for a server bound to localhost.
func New(db *storage.DB, svc *workout.Service, engine *progression.Engine, m *metrics.Manager, gatherer prometheus.Gatherer, apiKey string, log *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}
	s := &Server{
		db:       db,
		workout:  svc,
		engine:   engine,
		metrics:  m,
		gatherer: gatherer,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestCounter(s.metrics))
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/templates", s.handleListTemplates)
		r.Get("/programs/active", s.handleActiveProgram)
		r.Get("/programs/{id}", s.handleGetProgram)
		r.Get("/programs/{id}/plan", s.handleDayPlan)
		r.Get("/exercises/{id}/wave", s.handleWaveSets)
		r.Get("/exercises/{id}/training-maxes", s.handleListTrainingMaxes)
		r.Get("/exercises/{id}/notes", s.handleExerciseNotes)

		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/templates/{id}/fork", s.handleForkTemplate)
			r.Post("/programs/{id}/advance", s.handleAdvance)
			r.Post("/programs/{id}/advance-week", s.handleAdvanceWeek)
			r.Post("/programs/{id}/advance-block", s.handleAdvanceBlock)
			r.Put("/programs/{id}/day", s.handleSetDay)
			r.Put("/programs/{id}/week", s.handleSetWeek)
			r.Put("/programs/{id}/sets", s.handleLogSet)
			r.Post("/programs/{id}/sets/toggle", s.handleToggleSet)
			r.Delete("/programs/{id}/sets", s.handleClearSet)
			r.Put("/programs/{id}/notes", s.handleSaveNote)
			r.Post("/exercises/{id}/training-maxes", s.handleSetTrainingMax)
			r.Post("/programs/{id}/import", s.handleImport)
		})
	})
}
