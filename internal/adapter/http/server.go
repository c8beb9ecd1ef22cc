// Package adapthttp is the driving HTTP adapter that routes requests to
// application services.
package adapthttp

import (
	"net/http"

	"github.com/aidengindin/ownhealth/internal/app"
)

// Server routes metric read and sync requests to the application
// services.
type Server struct {
	metrics *app.MetricsService
	ingest  *app.IngestService
}

// New creates a Server wired to the given application services.
func New(ms *app.MetricsService, is *app.IngestService) *Server {
	return &Server{metrics: ms, ingest: is}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("GET /metric/{metric_name}", s.handleMetric)
	mux.HandleFunc("POST /sync/{user_id}", s.handleSync)

	return withLogging(mux)
}
