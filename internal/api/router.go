package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Default CORS settings when the config leaves them empty. Devices and the
// dashboard call from arbitrary origins.
var (
	defaultAllowedOrigins = []string{"*"}
	defaultAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultAllowedHeaders = []string{"Accept", "Content-Type", "X-Request-ID"}
)

// corsMaxAge is how long browsers may cache a preflight result (seconds).
const corsMaxAge = 300

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(escapedPathMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(chimw.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: orDefault(s.cfg.CORS.AllowedOrigins, defaultAllowedOrigins),
		AllowedMethods: orDefault(s.cfg.CORS.AllowedMethods, defaultAllowedMethods),
		AllowedHeaders: orDefault(s.cfg.CORS.AllowedHeaders, defaultAllowedHeaders),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         corsMaxAge,
	}))
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/ws", s.handleWebSocket)

		// Device registry
		r.Post("/register-device", s.handleRegisterDevice)
		r.Get("/devices", s.handleListDevices)

		// Device logs
		r.Post("/send-log", s.handleSendLog)
		r.Get("/logs/{deviceId}", s.handleGetLogs)

		// Device configuration
		r.Post("/update-config", s.handleUpdateConfig)
		r.Get("/config/{deviceId}", s.handleGetConfig)
		r.Get("/configs/{deviceId}", s.handleGetConfigOrDefault)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"storage": s.storageBackend,
	}
	if s.publisher != nil {
		resp["mqtt"] = connState(s.publisher.IsConnected())
	}
	if s.activity != nil {
		resp["influxdb"] = connState(s.activity.IsConnected())
	}
	writeJSON(w, http.StatusOK, resp)
}

func connState(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}

func orDefault(values, def []string) []string {
	if len(values) == 0 {
		return def
	}
	return values
}
