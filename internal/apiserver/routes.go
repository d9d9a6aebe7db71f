package apiserver

import (
	"fmt"
	"net/http"

	"github.com/moolen/casa/internal/api"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerHandlers() {
	h := s.handlers

	s.router.HandleFunc("GET /health", s.handleHealth)

	s.router.HandleFunc("GET /v1/status", h.Status)
	s.router.HandleFunc("GET /v1/periods", h.Periods)
	s.router.HandleFunc("GET /v1/analyze/{period}", h.Analyze)
	s.router.HandleFunc("GET /v1/historic", h.Historic)
	s.router.HandleFunc("GET /v1/systemic", h.Systemic)
	s.router.HandleFunc("GET /v1/config", h.GetConfig)
	s.router.HandleFunc("POST /v1/config", h.UpdateConfig)
	s.router.HandleFunc("POST /v1/datasets/reload", h.Reload)

	if s.gatherer != nil {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.HandleFunc("GET /", s.handleNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = api.WriteSuccess(w, map[string]string{"status": "healthy"})
}

// handleNotFound answers unmatched paths with a JSON body instead of the mux's plain text
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	api.WriteError(w, http.StatusNotFound, api.ErrorCodeNotFound, fmt.Sprintf("Endpoint not found: %s", r.URL.Path))
}
