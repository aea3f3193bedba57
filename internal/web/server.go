package web

import (
	"context"
	"net/http"
	"time"

	"github.com/buemura/scamscan/internal/engine"
	"github.com/buemura/scamscan/internal/web/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the scamscan REST API.
type Server struct {
	router  chi.Router
	addr    string
	engine  *engine.Engine
	manager *jobs.Manager
	http    *http.Server
}

// NewServer builds a new Server with middleware and routes configured.
// jobTimeout bounds each background analysis.
func NewServer(addr string, eng *engine.Engine, jobTimeout time.Duration) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		addr:    addr,
		engine:  eng,
		manager: jobs.NewManager(eng, jobTimeout),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.registerRoutes()

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening on the configured address. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Router exposes the chi.Router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Manager exposes the job manager for testing.
func (s *Server) Manager() *jobs.Manager {
	return s.manager
}
