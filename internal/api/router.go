package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component check in /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyMiddleware)

			r.Get("/metrics", s.handleMetrics)
			r.Get("/telemetry", s.handleTelemetry)

			r.Route("/commands", func(r chi.Router) {
				r.Get("/", s.handleListCommands)
				r.Post("/", s.handleExecuteCommand)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", s.handleListSettings)
				r.Get("/{key}", s.handleGetSetting)
				r.Put("/{key}", s.handlePutSetting)
			})

			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	DeviceID   string            `json:"device_id"`
	Halted     bool              `json:"halted"`
	Components map[string]string `json:"components,omitempty"`
}

// handleHealth reports node and component health. A failing component
// degrades the status but still returns 200; a halted node returns 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  s.version,
		DeviceID: s.telemetry.Identity().DeviceID,
		Halted:   s.executor.Halted(),
	}

	if len(s.components) > 0 {
		names := make([]string, 0, len(s.components))
		for name := range s.components {
			names = append(names, name)
		}
		sort.Strings(names)

		resp.Components = make(map[string]string, len(names))
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := s.components[name].HealthCheck(ctx)
			cancel()
			if err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Components[name] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Halted {
		resp.Status = "restarting"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
