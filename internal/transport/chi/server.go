// Package chi is the inbound HTTP surface of the usage relay.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/keymeter/internal/domain"
	healthuc "github.com/kailas-cloud/keymeter/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/keymeter/internal/usecase/lookup"
)

// ErrorKind is the machine-readable failure classification in error responses.
type ErrorKind string

// Error kinds surfaced to the caller.
const (
	KindMissingCredential     ErrorKind = "MissingCredential"
	KindInvalidCredential     ErrorKind = "InvalidCredential"
	KindUpstreamRateLimited   ErrorKind = "UpstreamRateLimited"
	KindUpstreamError         ErrorKind = "UpstreamError"
	KindUpstreamUnreachable   ErrorKind = "UpstreamUnreachable"
	KindUpstreamProtocolError ErrorKind = "UpstreamProtocolError"
	KindInternal              ErrorKind = "Internal"
)

// UsageResponse is the success payload. Limit and Used are the upstream's
// numbers passed through unchanged; the caller does its own percentage math.
type UsageResponse struct {
	OK    bool    `json:"ok"`
	Limit float64 `json:"limit"`
	Used  float64 `json:"used"`
}

// ErrorResponse is the failure payload. OK is the discriminator: callers
// branch on it rather than on free-form text.
type ErrorResponse struct {
	OK      bool      `json:"ok"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the usage relay over HTTP.
type Server struct {
	lookup        *lookupuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(lookup *lookupuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		lookup: lookup,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMissingCredential, http.StatusBadRequest, KindMissingCredential),
		sentinelHandler(domain.ErrInvalidCredential, http.StatusUnauthorized, KindInvalidCredential),
		sentinelHandler(domain.ErrUpstreamRateLimited, http.StatusTooManyRequests, KindUpstreamRateLimited),
		sentinelHandler(domain.ErrUpstreamUnreachable, http.StatusGatewayTimeout, KindUpstreamUnreachable),
		sentinelHandler(domain.ErrUpstreamProtocolError, http.StatusBadGateway, KindUpstreamProtocolError),
		sentinelHandler(domain.ErrUpstreamError, http.StatusBadGateway, KindUpstreamError),
	}
	return s
}

// Routes registers the relay's routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/usage", s.GetUsage)
	r.Get("/health", s.GetHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", http.FileServer(staticFiles()))
}

// GetUsage handles GET /api/usage. The credential travels in the
// Authorization header as a Bearer token; that is the only channel.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	q, err := s.lookup.Lookup(r.Context(), bearerCredential(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UsageResponse{OK: true, Limit: q.Limit, Used: q.Used})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// bearerCredential extracts the Bearer token from the Authorization header.
// Anything else — absent header, another scheme — reads as no credential.
func bearerCredential(r *http.Request) string {
	const bearerPrefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return ""
	}
	return auth[len(bearerPrefix):]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind ErrorKind, message string) {
	writeJSON(w, status, ErrorResponse{
		OK:      false,
		Kind:    kind,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals. Upstream-provided detail is appended when present.
func safeDomainMessage(err error) string {
	var se *domain.UpstreamStatusError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Unwrap().Error() + ": " + se.Detail
	}

	sentinels := []error{
		domain.ErrMissingCredential,
		domain.ErrInvalidCredential,
		domain.ErrUpstreamRateLimited,
		domain.ErrUpstreamUnreachable,
		domain.ErrUpstreamProtocolError,
		domain.ErrUpstreamError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, kind ErrorKind) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, kind, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, KindInternal, "internal error")
}
