package apihttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"iptvstream/catalogservice/internal/catalog"
	"iptvstream/catalogservice/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type CatalogService interface {
	Catalog(ctx context.Context, request domain.CatalogRequest) (domain.CatalogResponse, error)
	Refresh(ctx context.Context) (catalog.Snapshot, error)
	SourceInfos() []domain.SourceInfo
	SourceDiagnostics() []domain.SourceDiagnostics
	LastMetrics() (domain.MetricsSnapshot, string)
}

type Server struct {
	catalog CatalogService
	logger  *slog.Logger
}

const maxQueryLength = 200

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(catalogService CatalogService, options ...ServerOption) *Server {
	server := &Server{
		catalog: catalogService,
		logger:  slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/catalog/channels", s.handleChannels)
	mux.HandleFunc("/catalog/sources", s.handleSources)
	mux.HandleFunc("/catalog/sources/health", s.handleSourcesHealth)
	mux.HandleFunc("/catalog/refresh", s.handleRefresh)
	mux.HandleFunc("/catalog/metrics", s.handleDedupMetrics)
	mux.HandleFunc("/catalog/logo", s.handleLogoProxy)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "iptv-catalog",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/catalog/channels" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "query too long (max 200 characters)")
		return
	}
	limit, err := parsePositiveInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseNonNegativeInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	request := domain.CatalogRequest{
		Source:   strings.ToLower(strings.TrimSpace(r.URL.Query().Get("source"))),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Quality:  strings.TrimSpace(r.URL.Query().Get("quality")),
		Query:    query,
		Limit:    limit,
		Offset:   offset,
		NoCache:  parseOptionalBool(r.URL.Query().Get("nocache")) || parseOptionalBool(r.URL.Query().Get("noCache")),
	}

	response, err := s.catalog.Catalog(r.Context(), request)
	if err != nil {
		s.logger.Warn("catalog request failed",
			slog.String("source", request.Source),
			slog.String("query", truncate(query, 80)),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, catalog.ErrInvalidOffset):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, catalog.ErrUnknownSource):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, catalog.ErrNoSources):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		case errors.Is(err, catalog.ErrAllSourcesFailed):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "catalog load failed")
		}
		return
	}

	failedSources := make([]string, 0, len(response.Sources))
	for _, sourceStatus := range response.Sources {
		if !sourceStatus.OK {
			failedSources = append(failedSources, sourceStatus.Name)
		}
	}
	s.logger.Info("catalog request completed",
		slog.String("runId", response.RunID),
		slog.Int("totalItems", response.TotalItems),
		slog.Int64("elapsedMs", response.ElapsedMS),
		slog.Int("failedSources", len(failedSources)),
	)
	if len(failedSources) > 0 {
		s.logger.Warn("catalog sources partially failed",
			slog.Any("failedSources", failedSources),
		)
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/catalog/sources" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.catalog.SourceInfos(),
	})
}

func (s *Server) handleSourcesHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/catalog/sources/health" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"checkedAt": time.Now().UTC(),
		"items":     s.catalog.SourceDiagnostics(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/catalog/refresh" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	snapshot, err := s.catalog.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("catalog refresh failed", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, catalog.ErrNoSources):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		case errors.Is(err, catalog.ErrAllSourcesFailed):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "catalog refresh failed")
		}
		return
	}

	s.logger.Info("catalog refresh completed",
		slog.String("runId", snapshot.RunID),
		slog.Int("channels", len(snapshot.Channels)),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"runId":       snapshot.RunID,
		"channels":    len(snapshot.Channels),
		"filtered":    snapshot.Filtered,
		"sources":     snapshot.Sources,
		"metrics":     snapshot.Metrics,
		"refreshedAt": snapshot.RefreshedAt,
	})
}

func (s *Server) handleDedupMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/catalog/metrics" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	metricsSnapshot, runID := s.catalog.LastMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"runId":   runID,
		"metrics": metricsSnapshot,
	})
}

func parsePositiveInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid value")
	}
	return parsed, nil
}

func parseNonNegativeInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, errors.New("invalid value")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func parseOptionalBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
