// Package api provides the HTTP REST API server for seriesbr.
//
// It exposes the registered sources over JSON: series tables, metadata,
// free-text search, news feeds and connectivity checks.
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
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/phelipetls/seriesbr-sub000/internal/config"
	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Version is reported by the health route.
var Version = "dev"

const defaultNewsLimit = 10

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	registry *provider.Registry
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, reg *provider.Registry) *Server {
	srv := &Server{cfg: cfg, registry: reg}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT/SIGTERM or when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}
	logger.Infof(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/config", s.handleGetConfig)
		r.Get("/sources", s.handleSources)

		r.Route("/{source}", func(r chi.Router) {
			r.Get("/series", s.handleSeries)
			r.Get("/metadata/{code}", s.handleMetadata)
			r.Get("/search", s.handleSearch)
			r.Get("/news", s.handleNews)
		})
	})

	return r
}

// requestLogger logs each request through the context logger, tagged with
// the chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.With(r.Context(), zap.String("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))
		logger.Infof(ctx, "%s %s -> %d (%d bytes) in %s", r.Method, r.URL.RequestURI(), ww.Status(), ww.BytesWritten(), time.Since(start).Round(time.Millisecond))
	})
}

// ============================================================
// Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SeriesResponse is the payload of GET /api/v1/{source}/series.
type SeriesResponse struct {
	Source  string                 `json:"source"`
	Codes   models.Codes           `json:"codes"`
	Options provider.SeriesOptions `json:"options"`
	Columns []string               `json:"columns"`
	Rows    *models.Table          `json:"rows"`
}

// RecordsResponse is the payload of the search and news routes.
type RecordsResponse struct {
	Source  string          `json:"source"`
	Columns []string        `json:"columns"`
	Rows    *models.Records `json:"rows"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":   "ok",
			"version":  Version,
			"sources":  len(s.registry.List()),
			"time_brt": utils.NowBRT().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	results := s.registry.PingAll(r.Context())
	status := http.StatusOK
	for _, res := range results {
		if !res.OK {
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, APIResponse{Success: status == http.StatusOK, Data: results})
}

// handleSources lists the registered sources. With ?capability= it keeps
// the sources supporting it, in registration order.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("capability")
	if name == "" {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.registry.List()})
		return
	}
	c, err := provider.ParseCapability(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	infos := []provider.SourceInfo{}
	for _, n := range s.registry.SourcesFor(c) {
		src, err := s.registry.Get(n)
		if err != nil {
			continue
		}
		infos = append(infos, src.Info())
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: infos})
}

// handleSeries serves GET /api/v1/{source}/series. Codes come from repeated
// or comma-separated code parameters, each optionally written label=code.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "source")
	src, err := s.registry.Series(name)
	if err != nil {
		writeFailure(w, err)
		return
	}

	q := r.URL.Query()
	var args []string
	for _, v := range q["code"] {
		args = append(args, strings.Split(v, ",")...)
	}
	inputs := models.ParseCodeInputs(args)
	if len(inputs) == 0 {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	opts := provider.SeriesOptions{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Join:  models.JoinKind(q.Get("join")),
	}
	if last := q.Get("last"); last != "" {
		n, err := strconv.Atoi(last)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "last must be a positive integer")
			return
		}
		opts.LastN = n
	}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := logger.With(r.Context(), zap.String("source", name))
	tbl, err := src.GetSeries(ctx, opts, inputs...)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: SeriesResponse{
			Source:  name,
			Codes:   models.Collect(inputs...),
			Options: opts,
			Columns: tbl.Records().Columns,
			Rows:    tbl,
		},
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	src, err := s.registry.Get(chi.URLParam(r, "source"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	meta, err := src.GetMetadata(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: meta})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "source")
	src, err := s.registry.Searcher(name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	terms := strings.Fields(r.URL.Query().Get("q"))
	if len(terms) == 0 {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	recs, err := src.SearchText(r.Context(), terms...)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    RecordsResponse{Source: name, Columns: recs.Columns, Rows: recs},
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "source")
	src, err := s.registry.News(name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	limit := defaultNewsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	recs, err := src.News(r.Context(), limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    RecordsResponse{Source: name, Columns: recs.Columns, Rows: recs},
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf(context.Background(), "failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeFailure maps err onto an HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var notFound *provider.ErrSourceNotFound
	var notSupported *provider.ErrNotSupported
	switch {
	case errors.As(err, &notFound), errors.Is(err, models.ErrNoResults):
		return http.StatusNotFound
	case errors.As(err, &notSupported):
		return http.StatusNotImplemented
	case errors.Is(err, models.ErrOversizedQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidCode),
		errors.Is(err, models.ErrUnknownMetadataField),
		errors.Is(err, models.ErrDisallowedLocation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTransport), errors.Is(err, models.ErrInvalidPayload):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
