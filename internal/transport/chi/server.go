package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/debounce"
	"github.com/kailas-cloud/intentsearch/internal/domain"
	logpkg "github.com/kailas-cloud/intentsearch/internal/logger"
	healthuc "github.com/kailas-cloud/intentsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/intentsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/intentsearch/internal/usecase/suggest"
)

const maxBodySize = 16 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// RecentStore reads and clears a device's recent queries.
type RecentStore interface {
	Get(ctx context.Context, device string) ([]string, error)
	Clear(ctx context.Context, device string) error
}

// Options tunes the live suggestion socket.
type Options struct {
	LiveDebounce   time.Duration
	Scheduler      debounce.Scheduler // nil uses real timers
	AllowedOrigins []string           // empty allows same-origin only
}

// Server serves the session-facing search API.
type Server struct {
	suggest       *suggestuc.Provider
	search        *searchuc.Service
	recent        RecentStore
	health        *healthuc.Service
	opts          Options
	upgrader      websocket.Upgrader
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	suggest *suggestuc.Provider,
	search *searchuc.Service,
	recent RecentStore,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		suggest: suggest,
		search:  search,
		recent:  recent,
		health:  health,
		opts:    opts,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrStaleResponse, http.StatusConflict, ErrorCodeStaleResponse),
		sourceUnavailableHandler,
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware)
		r.Get("/suggest", s.Suggest)
		r.Get("/suggest/live", s.SuggestLive)
		r.Post("/search", s.Search)
		r.Get("/search/latest", s.LatestSearch)
		r.Get("/recent", s.ListRecent)
		r.Delete("/recent", s.ClearRecent)
	})
}

// Suggest handles GET /v1/suggest?q=. Undebounced; the live socket debounces.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	suggestions := s.suggest.Suggest(r.Context(), id.Device, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: suggestionsToDTO(suggestions)})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	out, err := s.search.Submit(r.Context(), id.Session, id.Device, req.Query, req.AcceptCorrection)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToDTO(out))
}

// LatestSearch handles GET /v1/search/latest.
func (s *Server) LatestSearch(w http.ResponseWriter, r *http.Request) {
	out, err := s.search.Latest(IdentityFrom(r.Context()).Session)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToDTO(out))
}

// ListRecent handles GET /v1/recent.
func (s *Server) ListRecent(w http.ResponseWriter, r *http.Request) {
	queries, err := s.recent.Get(r.Context(), IdentityFrom(r.Context()).Device)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecentResponse{Queries: queries})
}

// ClearRecent handles DELETE /v1/recent.
func (s *Server) ClearRecent(w http.ResponseWriter, r *http.Request) {
	if err := s.recent.Clear(r.Context(), IdentityFrom(r.Context()).Device); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrQueryTooLong,
		domain.ErrNotFound,
		domain.ErrStaleResponse,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// sourceUnavailableHandler reports a failed aggregation as retryable and names the source.
func sourceUnavailableHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		return false
	}
	var se *domain.SourceError
	if errors.As(err, &se) {
		msg += ": " + se.Source
	}
	writeJSON(w, http.StatusBadGateway, ErrorResponse{
		Code:      ErrorCodeSourceUnavailable,
		Message:   msg,
		Retryable: true,
	})
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := s.log(ctx)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// log prefers the request-scoped logger placed in ctx by the request log middleware.
func (s *Server) log(ctx context.Context) *zap.Logger {
	if l := logpkg.FromContext(ctx); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}
