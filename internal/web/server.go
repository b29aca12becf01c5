package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"roomproof/internal/imagestore"
	"roomproof/internal/service"
)

type Server struct {
	inventory *service.InventoryService
	audits    *service.AuditService
	images    imagestore.ImageStore
	mux       *http.ServeMux
	logger    *slog.Logger
}

func NewServer(inv *service.InventoryService, aud *service.AuditService, images imagestore.ImageStore, logger *slog.Logger) *Server {
	s := &Server{
		inventory: inv,
		audits:    aud,
		images:    images,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /rooms", s.handleListRooms)
	s.mux.HandleFunc("GET /reports/inventory", s.handleInventoryReport)

	s.mux.HandleFunc("POST /snapshots", s.handleCaptureSnapshot)
	s.mux.HandleFunc("GET /snapshots/{id}", s.handleGetSnapshot)
	s.mux.HandleFunc("PATCH /snapshots/{id}", s.handleUpdateSnapshot)
	s.mux.HandleFunc("DELETE /snapshots/{id}", s.handleDeleteSnapshot)
	s.mux.HandleFunc("GET /snapshots/{id}/image", s.handleGetSnapshotImage)

	s.mux.HandleFunc("POST /sessions", s.handleStartSession)
	s.mux.HandleFunc("GET /sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /sessions/{id}/complete", s.handleCompleteSession)
	s.mux.HandleFunc("POST /sessions/{id}/rescans", s.handleRecordRescan)
	s.mux.HandleFunc("GET /sessions/{id}/report", s.handleSessionReport)
	s.mux.HandleFunc("GET /sessions/{id}/document", s.handleSessionDocument)
	s.mux.HandleFunc("POST /records/{id}/adjust", s.handleAdjustOutcome)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
