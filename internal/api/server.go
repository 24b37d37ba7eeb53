package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/artifact"
	"github.com/JakeFAU/occ-vacantes/internal/config"
	"github.com/JakeFAU/occ-vacantes/internal/geocode"
	"github.com/JakeFAU/occ-vacantes/internal/metrics"
	"github.com/JakeFAU/occ-vacantes/internal/search"
)

const maxSearchBody = 64 << 10

// Searcher runs one orchestrated search.
type Searcher interface {
	Handle(ctx context.Context, req search.Request) search.Outcome
}

// Geocoder resolves a free-text location.
type Geocoder interface {
	Geocode(ctx context.Context, q string) (json.RawMessage, error)
}

// Server wires HTTP handlers to the orchestrator, artifacts, and geocoder.
type Server struct {
	router    chi.Router
	searcher  Searcher
	artifacts *artifact.Gateway
	geocoder  Geocoder
	cfg       config.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	searcher Searcher,
	artifacts *artifact.Gateway,
	geocoder Geocoder,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		searcher:  searcher,
		artifacts: artifacts,
		geocoder:  geocoder,
		cfg:       cfg,
		logger:    logger.Named("api"),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(corsMiddleware())
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// No timeout here: the governor bounds the search itself.
	r.Post("/search", s.search)
	for _, kind := range artifact.Kinds() {
		r.Get("/"+kind.Name, artifacts.Serve(kind, s.logger))
	}
	r.With(timeoutMiddleware(geocodeTimeout(cfg))).Get("/geocode", s.geocode)

	if dir := strings.TrimSpace(cfg.Server.StaticDir); dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func geocodeTimeout(cfg config.Config) time.Duration {
	if cfg.Geocode.TimeoutSeconds > 0 {
		// Leave room for the client's own timeout to surface first.
		return time.Duration(cfg.Geocode.TimeoutSeconds)*time.Second + 5*time.Second
	}
	return 15 * time.Second
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ready",
		"environment": s.cfg.ExecutionEnvironment().String(),
	})
}

type searchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&req); err != nil {
		// Unreadable bodies carry no term; the orchestrator rejects them.
		s.logger.Debug("search body not decoded", zap.Error(err))
		req = search.Request{}
	}

	outcome := s.searcher.Handle(r.Context(), req)
	if outcome.OK() {
		writeJSON(w, http.StatusOK, searchResponse{Success: true, Message: outcome.UserMessage()})
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Success: false, Error: outcome.UserMessage()})
}

func (s *Server) geocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		metrics.ObserveGeocode("missing_query")
		writeError(w, http.StatusBadRequest, "Falta el parámetro q")
		return
	}

	body, err := s.geocoder.Geocode(r.Context(), q)
	switch {
	case err == nil:
		metrics.ObserveGeocode("ok")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, werr := w.Write(body); werr != nil {
			s.logger.Warn("geocode write failed", zap.Error(werr))
		}
	case errors.Is(err, geocode.ErrQueryRequired):
		metrics.ObserveGeocode("missing_query")
		writeError(w, http.StatusBadRequest, "Falta el parámetro q")
	case errors.Is(err, geocode.ErrUpstreamStatus):
		metrics.ObserveGeocode("upstream_status")
		s.logger.Warn("locationiq rejected query", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al consultar LocationIQ")
	default:
		metrics.ObserveGeocode("error")
		s.logger.Error("geocode failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al buscar la ubicación")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
