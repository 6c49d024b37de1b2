// Package api provides the HTTP API for observing and steering generation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/platesim/internal/engine"
	"github.com/talgya/platesim/internal/persistence"
)

// Server serves generation state over HTTP.
type Server struct {
	Ctrl     *engine.Controller
	Eng      *engine.Engine  // Optional; nil when ticks come from elsewhere
	DB       *persistence.DB // Optional; run endpoints return 503 without it
	Hub      *Hub            // Optional; created by Handler if nil
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Handler builds the API routes.
func (s *Server) Handler() http.Handler {
	if s.Hub == nil {
		s.Hub = NewHub(s.Ctrl)
	}
	signalLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/cells", s.handleCells)
	mux.HandleFunc("/api/v1/cell/", s.handleCell)
	mux.HandleFunc("/api/v1/plates", s.handlePlates)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/run/", s.handleRun)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/confirm", RateLimitMiddleware(signalLimiter, s.adminOnly(s.handleConfirm)))
	mux.HandleFunc("/api/v1/reset", RateLimitMiddleware(signalLimiter, s.adminOnly(s.handleReset)))

	return corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return s.AdminKey != "" && strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a POST-only handler with bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no PLATESIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	world := s.Ctrl.World()
	phase := s.Ctrl.Phase()
	assigned, total := world.Progress()
	cfg := world.Config()

	status := map[string]any{
		"phase":          phase,
		"prompt":         phase.Prompt(),
		"awaits_confirm": phase.AwaitsConfirm(),
		"ticks":          s.Ctrl.Ticks(),
		"version":        world.Version(),
		"assigned":       assigned,
		"cells":          total,
		"plates":         cfg.NumPlates,
		"seed":           cfg.Seed,
		"stats":          world.Stats(),
		"clients":        s.Hub.Len(),
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	snap := s.Ctrl.World().Snapshot()
	writeJSON(w, map[string]any{
		"version":  snap.Version,
		"assigned": snap.Assigned,
		"cells":    snap.Cells,
	})
}

// handleCell serves GET /api/v1/cell/{id}.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/v1/cell/"))
	if err != nil {
		http.Error(w, "invalid cell id", http.StatusBadRequest)
		return
	}
	world := s.Ctrl.World()
	cell, ok := world.Cell(id)
	if !ok {
		http.Error(w, "cell not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"id":        id,
		"center":    world.Graph().Center(id),
		"neighbors": world.Graph().Neighbors(id),
		"cell":      cell,
	})
}

func (s *Server) handlePlates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Ctrl.World().Plates())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no run store configured", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "limit must be 1-500", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.DB.ListRuns(limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		http.Error(w, "list runs failed", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

// handleRun serves GET /api/v1/run/{id}.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no run store configured", http.StatusServiceUnavailable)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/run/")
	run, err := s.DB.LoadRun(id)
	if errors.Is(err, persistence.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load run failed", "id", id, "error", err)
		http.Error(w, "load run failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, run)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	phase := s.Ctrl.Phase()
	s.Ctrl.Confirm()
	slog.Info("confirm requested", "phase", phase)
	writeJSON(w, map[string]any{"phase": phase, "accepted": phase.AwaitsConfirm()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	phase := s.Ctrl.Phase()
	s.Ctrl.Reset()
	slog.Info("reset requested", "phase", phase)
	writeJSON(w, map[string]any{"phase": phase, "accepted": phase.AcceptsReset()})
}

// handleStream upgrades to a websocket. Clients presenting the admin key,
// as a bearer token or a key query parameter, may send signals.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	control := s.checkBearerToken(r) || (s.AdminKey != "" && r.URL.Query().Get("key") == s.AdminKey)
	s.Hub.serve(w, r, control)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write json failed", "error", err)
	}
}
