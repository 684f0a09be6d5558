package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/planner"
	"github.com/entrepeneur4lyf/buildpilot/internal/plans"
	"github.com/gorilla/mux"
)

// Generator produces a plan from a project name and description
type Generator interface {
	Generate(ctx context.Context, projectName, projectDescription string) (*planner.Result, error)
}

// Options wires the server's collaborators
type Options struct {
	Generator Generator

	// CheckCredentials runs before every generation; a non-nil error is reported as a 500
	CheckCredentials func() error

	Store     *plans.Store
	SavePlans bool

	// GenerateTimeout bounds a single generation request; zero means no limit
	GenerateTimeout time.Duration

	AllowedOrigins []string

	// MetricsHandler is served on /metrics when set
	MetricsHandler http.Handler
}

// Server represents the API server
type Server struct {
	opts       Options
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.CheckCredentials == nil {
		opts.CheckCredentials = func() error { return nil }
	}
	if opts.Store == nil {
		opts.Store = plans.NewStore("")
	}
	return &Server{opts: opts}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start starts the API server and blocks until it stops
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Info("Starting API server", "addr", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	router.Use(s.loggingMiddleware)
	router.Use(s.corsMiddleware)

	// Routes hang off the root router with full paths. Subrouter routes share
	// the prefix matcher, which makes mux drop a method mismatch and answer 404.
	handle(router, "/api/health", s.handleHealth, http.MethodGet)
	handle(router, "/api/generate-plan", s.handleGeneratePlan, http.MethodPost, http.MethodOptions)
	handle(router, "/api/download-plan/{filename}", s.handleDownloadPlan, http.MethodGet)

	if s.opts.MetricsHandler != nil {
		router.Handle("/metrics", s.opts.MetricsHandler).Methods(http.MethodGet)
	}

	return router
}

// handle registers path with its canonical trailing slash and without it
func handle(router *mux.Router, path string, h http.HandlerFunc, methods ...string) {
	for _, p := range []string{path + "/", path} {
		router.HandleFunc(p, h).Methods(methods...)
	}
}

// corsMiddleware adds CORS headers for the configured origins
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allow := s.allowedOrigin(origin); allow != "" {
			w.Header().Set("Access-Control-Allow-Origin", allow)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if slices.Contains(s.opts.AllowedOrigins, "*") {
		return "*"
	}
	if slices.Contains(s.opts.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// Response helpers
func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Error("Failed to encode error response", "error", err)
	}
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, fmt.Sprintf("Method %q not allowed.", r.Method), http.StatusMethodNotAllowed)
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status":  "healthy",
		"message": "BuildPilot AI backend is running",
	})
}
