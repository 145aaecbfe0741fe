package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/hayeswinckle/appraisals/internal/errors"
	"github.com/hayeswinckle/appraisals/internal/observability"
	"github.com/hayeswinckle/appraisals/internal/server/handlers"
	servermw "github.com/hayeswinckle/appraisals/internal/server/middleware"
)

// Options carries the handlers the router mounts.
type Options struct {
	Appraisals *handlers.AppraisalHandler
	Health     *handlers.HealthManager
	// DisableHealth leaves the /health routes unmounted.
	DisableHealth bool
	MetricsPort   int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	host   string
	port   int
	opts   Options
}

// New creates a new HTTP server instance
func New(host string, port int, opts Options) *Server {
	if opts.Health == nil {
		opts.Health = handlers.NewHealthManager(handlers.AppVersion)
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// two sequential EmailJS calls at up to 15s each
		opts.WriteTimeout = 45 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 120 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)

	// RequestID → Metrics → Recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		host:   host,
		port:   port,
		opts:   opts,
	}

	s.registerRoutes()

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       s.opts.IdleTimeout,
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.host),
			zap.Int("port", s.port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.port
}
