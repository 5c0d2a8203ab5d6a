package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iptvstream/catalogservice/internal/catalog"
	"iptvstream/catalogservice/internal/domain"
)

type fakeCatalogService struct {
	lastRequest  domain.CatalogRequest
	catalogErr   error
	refreshErr   error
	callCount    int
	refreshCount int
}

func (f *fakeCatalogService) channels() []domain.Channel {
	return []domain.Channel{
		{
			Name:      "Caracol HD",
			StreamURL: "http://caracol.example.com/hd",
			Quality:   domain.QualityHD,
			Category:  "News",
			Metadata:  domain.ChannelMetadata{Source: "csv"},
		},
		{
			Name:      "Discovery",
			StreamURL: "http://discovery.example.com/live",
			Category:  "Documentary",
			Metadata:  domain.ChannelMetadata{Source: "m3u"},
		},
	}
}

func (f *fakeCatalogService) Catalog(ctx context.Context, request domain.CatalogRequest) (domain.CatalogResponse, error) {
	_ = ctx
	f.callCount++
	f.lastRequest = request
	if f.catalogErr != nil {
		return domain.CatalogResponse{}, f.catalogErr
	}
	items := f.channels()
	return domain.CatalogResponse{
		RunID:    "run-1",
		Channels: items,
		Sources: []domain.SourceStatus{
			{Name: "csv", OK: true, Count: 1},
			{Name: "m3u", OK: true, Count: 1},
		},
		ElapsedMS:  3,
		TotalItems: len(items),
		Limit:      request.Limit,
		Offset:     request.Offset,
	}, nil
}

func (f *fakeCatalogService) Refresh(ctx context.Context) (catalog.Snapshot, error) {
	_ = ctx
	f.refreshCount++
	if f.refreshErr != nil {
		return catalog.Snapshot{}, f.refreshErr
	}
	return catalog.Snapshot{
		RunID:    "run-2",
		Channels: f.channels(),
		Sources: []domain.SourceStatus{
			{Name: "csv", OK: true, Count: 1},
			{Name: "m3u", OK: true, Count: 1},
		},
		RefreshedAt: time.Now().UTC(),
	}, nil
}

func (f *fakeCatalogService) SourceInfos() []domain.SourceInfo {
	return []domain.SourceInfo{
		{Name: "csv", Label: "CSV Export", Kind: "file", Enabled: true},
		{Name: "m3u", Label: "M3U Playlist", Kind: "http", Enabled: true},
	}
}

func (f *fakeCatalogService) SourceDiagnostics() []domain.SourceDiagnostics {
	return []domain.SourceDiagnostics{
		{Name: "csv", Enabled: true, LastLatencyMS: 12},
		{Name: "m3u", Enabled: true, LastLatencyMS: 80},
	}
}

func (f *fakeCatalogService) LastMetrics() (domain.MetricsSnapshot, string) {
	return domain.MetricsSnapshot{
		TotalChannels:     2,
		DuplicatesRemoved: 1,
		DeduplicationRate: "33.33%",
	}, "run-1"
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestChannelsWithoutService(t *testing.T) {
	server := NewServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/catalog/channels", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestChannelsParsesRequest(t *testing.T) {
	fake := &fakeCatalogService{}
	server := NewServer(fake)
	req := httptest.NewRequest(http.MethodGet, "/catalog/channels?source=CSV&category=News&quality=hd&q=caracol&limit=10&offset=5&nocache=1", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if fake.lastRequest.Source != "csv" {
		t.Fatalf("unexpected source: %q", fake.lastRequest.Source)
	}
	if fake.lastRequest.Category != "News" || fake.lastRequest.Quality != "hd" {
		t.Fatalf("unexpected filters: %#v", fake.lastRequest)
	}
	if fake.lastRequest.Query != "caracol" {
		t.Fatalf("unexpected query: %q", fake.lastRequest.Query)
	}
	if fake.lastRequest.Limit != 10 || fake.lastRequest.Offset != 5 {
		t.Fatalf("unexpected paging: limit=%d offset=%d", fake.lastRequest.Limit, fake.lastRequest.Offset)
	}
	if !fake.lastRequest.NoCache {
		t.Fatalf("expected nocache to be set")
	}

	var payload domain.CatalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.TotalItems != 2 {
		t.Fatalf("unexpected total items: %d", payload.TotalItems)
	}
	if payload.RunID != "run-1" {
		t.Fatalf("unexpected run id: %q", payload.RunID)
	}
}

func TestChannelsDefaultPaging(t *testing.T) {
	fake := &fakeCatalogService{}
	server := NewServer(fake)
	req := httptest.NewRequest(http.MethodGet, "/catalog/channels", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.lastRequest.Limit != 100 || fake.lastRequest.Offset != 0 {
		t.Fatalf("unexpected defaults: limit=%d offset=%d", fake.lastRequest.Limit, fake.lastRequest.Offset)
	}
}

func TestChannelsInvalidPaging(t *testing.T) {
	fake := &fakeCatalogService{}
	server := NewServer(fake)

	for _, target := range []string{
		"/catalog/channels?limit=0",
		"/catalog/channels?limit=abc",
		"/catalog/channels?offset=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
	if fake.callCount != 0 {
		t.Fatalf("service should not be called on invalid input, got %d calls", fake.callCount)
	}
}

func TestChannelsErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{catalog.ErrUnknownSource, http.StatusBadRequest},
		{catalog.ErrInvalidOffset, http.StatusBadRequest},
		{catalog.ErrNoSources, http.StatusServiceUnavailable},
		{catalog.ErrAllSourcesFailed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		server := NewServer(&fakeCatalogService{catalogErr: tc.err})
		req := httptest.NewRequest(http.MethodGet, "/catalog/channels", nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != tc.expected {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.expected, rec.Code)
		}
	}
}

func TestSourcesEndpoint(t *testing.T) {
	server := NewServer(&fakeCatalogService{})
	req := httptest.NewRequest(http.MethodGet, "/catalog/sources", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Items []domain.SourceInfo `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("unexpected items count: %d", len(payload.Items))
	}
	if payload.Items[0].Name != "csv" {
		t.Fatalf("unexpected first source: %q", payload.Items[0].Name)
	}
}

func TestSourcesHealthEndpoint(t *testing.T) {
	server := NewServer(&fakeCatalogService{})
	req := httptest.NewRequest(http.MethodGet, "/catalog/sources/health", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Items []domain.SourceDiagnostics `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("unexpected items count: %d", len(payload.Items))
	}
}

func TestRefreshRequiresPost(t *testing.T) {
	fake := &fakeCatalogService{}
	server := NewServer(fake)
	req := httptest.NewRequest(http.MethodGet, "/catalog/refresh", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if fake.refreshCount != 0 {
		t.Fatalf("refresh should not run on GET")
	}
}

func TestRefreshEndpoint(t *testing.T) {
	fake := &fakeCatalogService{}
	server := NewServer(fake)
	req := httptest.NewRequest(http.MethodPost, "/catalog/refresh", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.refreshCount != 1 {
		t.Fatalf("expected one refresh, got %d", fake.refreshCount)
	}

	var payload struct {
		RunID    string `json:"runId"`
		Channels int    `json:"channels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.RunID != "run-2" {
		t.Fatalf("unexpected run id: %q", payload.RunID)
	}
	if payload.Channels != 2 {
		t.Fatalf("unexpected channel count: %d", payload.Channels)
	}
}

func TestRefreshAllSourcesFailed(t *testing.T) {
	server := NewServer(&fakeCatalogService{refreshErr: catalog.ErrAllSourcesFailed})
	req := httptest.NewRequest(http.MethodPost, "/catalog/refresh", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestDedupMetricsEndpoint(t *testing.T) {
	server := NewServer(&fakeCatalogService{})
	req := httptest.NewRequest(http.MethodGet, "/catalog/metrics", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		RunID   string                 `json:"runId"`
		Metrics domain.MetricsSnapshot `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.RunID != "run-1" {
		t.Fatalf("unexpected run id: %q", payload.RunID)
	}
	if payload.Metrics.DuplicatesRemoved != 1 {
		t.Fatalf("unexpected duplicates removed: %d", payload.Metrics.DuplicatesRemoved)
	}
	if payload.Metrics.DeduplicationRate != "33.33%" {
		t.Fatalf("unexpected rate: %q", payload.Metrics.DeduplicationRate)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := NewServer(&fakeCatalogService{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected status: %q", payload.Status)
	}
}

func TestLogoProxyRejectsBadURLs(t *testing.T) {
	server := NewServer(&fakeCatalogService{})
	for _, target := range []string{
		"/catalog/logo",
		"/catalog/logo?url=ftp://example.com/logo.png",
		"/catalog/logo?url=http://localhost/logo.png",
		"/catalog/logo?url=http://127.0.0.1/logo.png",
		"/catalog/logo?url=http://redis/logo.png",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestRecoveryMiddlewareReturns500(t *testing.T) {
	handler := recoveryMiddleware(testLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	req := httptest.NewRequest(http.MethodGet, "/catalog/channels", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewareRejectsBurst(t *testing.T) {
	handler := rateLimitMiddleware(1, 1, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/catalog/channels", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/catalog/channels", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", second.Code)
	}

	// Health stays reachable even when the limiter is exhausted.
	health := httptest.NewRecorder()
	handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("health request: expected 200, got %d", health.Code)
	}
}
