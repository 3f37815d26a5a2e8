// Package api serves the store over HTTP: snapshots, device control, a
// server-sent sensor stream in the live payload format, health and metrics.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/luki/homedash/internal/metrics"
	"github.com/luki/homedash/internal/store"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Store     *store.Store
	Log       *slog.Logger
	Keepalive time.Duration
}

// NewRouter registers every route on a new router.
func NewRouter(s *Server) *mux.Router {
	if s.Log == nil {
		s.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.Keepalive <= 0 {
		s.Keepalive = 15 * time.Second
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/sensors", s.listSensors).Methods(http.MethodGet)
	v1.HandleFunc("/sensors/stream", s.streamSensors).Methods(http.MethodGet)
	v1.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	v1.HandleFunc("/devices/{id}/control", s.controlDevice).Methods(http.MethodPost)
	return r
}

// Handler wraps the router with access logging and permissive CORS for
// browser dashboards.
func Handler(s *Server, accessLog io.Writer) http.Handler {
	router := NewRouter(s)
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(accessLog, cors(router))
}
