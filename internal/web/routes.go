package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/web/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// registerRoutes mounts all route groups on the server's router.
func (s *Server) registerRoutes() {
	h := api.NewHandlers(s.manager, s.engine)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", h.CreateAnalysis)
			r.Get("/", h.ListAnalyses)
			r.Get("/{id}", h.GetAnalysis)
			r.Delete("/{id}", h.DeleteAnalysis)
			r.Get("/{id}/report", h.GetAnalysisReport)
			r.Post("/{id}/resolve", h.ResolveAnalysis)
		})
		r.Post("/reports", h.CreateReport)
		r.Post("/urls/extract", h.ExtractURLs)
		r.Post("/urls/check", h.CheckURL)
		r.Post("/urls/scan", h.ScanURL)
		r.Get("/rules", h.ListRules)
	})
}

// handleHealth reports liveness and the reputation providers in use. An
// empty provider list means URLs are judged by the local heuristic alone.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := s.engine.URLScanner().Registry().Names()
	if providers == nil {
		providers = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "providers": providers})
}

// requestLogger logs every request through the shared zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logging.Logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
