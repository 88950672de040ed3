// Package api provides the HTTP API server for the solar return engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/tariff"
	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
	"github.com/sadeghmontazeri/solar/pkg/platform"
	"github.com/sadeghmontazeri/solar/report"
)

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	engine     *estimation.Engine
	runs       estimation.RunStore
	config     *Config
	logger     zerolog.Logger
	started    time.Time
}

// Config holds server configuration
type Config struct {
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	RequestTimeout   time.Duration
	MaxRequestSize   int64
	CORSOrigins      []string
	OperatorUser     string
	OperatorPassword string
	Version          string
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		RequestTimeout: 60 * time.Second,
		MaxRequestSize: 1 << 20,
		CORSOrigins:    []string{"*"},
		Version:        "dev",
	}
}

// NewServer creates a new API server. runs may be nil when no archive is configured.
func NewServer(engine *estimation.Engine, runs estimation.RunStore, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		engine:  engine,
		runs:    runs,
		config:  config,
		logger:  zerolog.Nop(),
		started: time.Now(),
	}
}

// WithLogger sets the request and lifecycle logger
func (s *Server) WithLogger(l zerolog.Logger) *Server {
	s.logger = l
	return s
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/panels", s.handlePanels)
		r.Get("/catalog/inverters", s.handleInverters)
		r.Get("/tariff", s.handleTariff)
		r.Post("/sizing", s.handleSizing)
		r.Post("/estimate", s.handleEstimate)

		r.Group(func(r chi.Router) {
			r.Use(platform.BasicAuth(s.config.OperatorUser, s.config.OperatorPassword))
			r.Get("/profile", s.handleProfile)
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}", s.handleGetRun)
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info().Int("port", s.config.Port).Str("version", s.config.Version).Msg("solar API server starting")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts server with graceful shutdown handling
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.config.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "solar-api",
		"version": s.config.Version,
		"uptime":  time.Since(s.started).Truncate(time.Second).String(),
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if p, ok := s.runs.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "run archive not ready")
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"version": s.config.Version,
		"service": "solar-api",
		"profile": s.engine.Settings().ProfileName,
	})
}

// =============================================================================
// CATALOG AND TARIFF
// =============================================================================

func (s *Server) handlePanels(w http.ResponseWriter, r *http.Request) {
	origin := catalog.Origin(r.URL.Query().Get("origin"))
	if !origin.Valid() {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("unknown origin %q (want foreign or domestic)", origin))
		return
	}
	s.jsonResponse(w, http.StatusOK, s.engine.Catalog().Panels(origin))
}

func (s *Server) handleInverters(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.Catalog().Inverters())
}

// TariffResponse is the purchase schedule and its first months
type TariffResponse struct {
	Schedule      tariff.Schedule    `json:"schedule"`
	Rates         []tariff.MonthRate `json:"rates"`
	YearlyAverage []float64          `json:"yearly_average"`
}

func (s *Server) handleTariff(w http.ResponseWriter, r *http.Request) {
	sched := s.engine.Schedule()
	months := 12
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > sched.ContractMonths {
			s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("months must be between 1 and %d", sched.ContractMonths))
			return
		}
		months = n
	}

	s.jsonResponse(w, http.StatusOK, TariffResponse{
		Schedule:      sched,
		Rates:         sched.Table(months),
		YearlyAverage: sched.YearlyAverage(),
	})
}

// =============================================================================
// SIZING AND ESTIMATE
// =============================================================================

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (estimation.Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req estimation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return req, false
	}
	return req, true
}

func (s *Server) handleSizing(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	preview, err := s.engine.Size(req)
	if err != nil {
		s.engineError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, preview)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil || format == report.FormatTable {
		format = report.FormatJSON
	}
	opts := report.Options{PersianDigits: r.URL.Query().Get("digits") == "persian"}

	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	rep, err := s.engine.Estimate(r.Context(), req)
	if err != nil {
		s.engineError(w, err)
		return
	}

	if format == report.FormatJSON {
		s.jsonResponse(w, http.StatusOK, rep)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, format, rep, opts); err != nil {
		s.logger.Error().Err(err).Str("run_id", rep.ID.String()).Msg("failed to render report")
	}
}

// =============================================================================
// OPERATOR ENDPOINTS
// =============================================================================

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.Settings())
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			s.jsonError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list runs")
		s.jsonError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	rep, err := s.runs.GetRun(r.Context(), id)
	switch {
	case errors.Is(err, estimation.ErrRunNotFound):
		s.jsonError(w, http.StatusNotFound, "run not found")
	case err != nil:
		s.logger.Error().Err(err).Str("run_id", id.String()).Msg("failed to load run")
		s.jsonError(w, http.StatusInternalServerError, "failed to load run")
	default:
		s.jsonResponse(w, http.StatusOK, rep)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

// engineError maps domain errors onto HTTP statuses. Input errors carry the
// offending field back to the caller; anything else is logged and hidden.
func (s *Server) engineError(w http.ResponseWriter, err error) {
	var se *solarerrors.SolarError
	if errors.Is(err, solarerrors.ErrInputOutOfRange) {
		body := map[string]string{"error": err.Error()}
		if errors.As(err, &se) && se.Field != "" {
			body["field"] = se.Field
		}
		s.jsonResponse(w, http.StatusBadRequest, body)
		return
	}
	s.logger.Error().Err(err).Msg("estimation failed")
	s.jsonError(w, http.StatusInternalServerError, "estimation failed")
}
