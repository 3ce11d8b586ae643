// Package server provides the HTTP server for the MemeBooth overlay system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/renderix/memebooth/internal/engine"
	"github.com/renderix/memebooth/internal/server/api"
	"github.com/renderix/memebooth/internal/store"
)

// FrameSource supplies the most recent rendered frame as JPEG bytes. The
// second return is false until the pipeline has produced its first frame.
type FrameSource interface {
	LatestJPEG() ([]byte, bool)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    *engine.Engine
	Frames    FrameSource
	Reload    api.ReloadFunc
}

// Server represents the HTTP server for the MemeBooth application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	if s.config.Store != nil {
		memeHandler := api.NewMemeHandler(s.config.Store)
		s.mux.Handle("/api/memes", memeHandler)
		s.mux.Handle("/api/memes/", memeHandler)
	}

	if s.config.Reload != nil {
		s.mux.Handle("/api/reload", api.NewReloadHandler(s.config.Reload))
	}

	if s.config.Engine != nil {
		s.mux.Handle("/api/state", NewStateHandler(s.config.Engine))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
