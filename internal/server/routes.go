package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/server/handlers"
	"github.com/hayeswinckle/appraisals/internal/site"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	if !s.opts.DisableHealth {
		health := s.opts.Health
		s.router.Get("/health", health.HealthHandler)
		s.router.Get("/health/live", health.LivenessHandler)
		s.router.Get("/health/ready", health.ReadinessHandler)
		s.router.Get("/health/startup", health.StartupHandler)
	}

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", s.metricsHandler)

	if s.opts.Appraisals != nil {
		s.registerAppraisalRoutes()
	}
}

func (s *Server) registerAppraisalRoutes() {
	h := s.opts.Appraisals

	s.router.Get(site.PathHome, h.Home)
	for _, kind := range lead.Kinds {
		path := site.PathFor(kind)
		s.router.Get(path, h.Page(kind))
		s.router.Post(path, h.SubmitForm(kind))
	}

	s.router.Route("/api/appraisals/{kind}", func(r chi.Router) {
		r.Post("/", h.SubmitAPI)
		r.Post("/validate", h.Validate)
	})
}
