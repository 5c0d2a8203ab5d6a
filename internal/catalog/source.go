package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"iptvstream/catalogservice/internal/dedup"
	"iptvstream/catalogservice/internal/domain"
	"iptvstream/catalogservice/internal/filter"
)

var (
	ErrNoSources     = errors.New("no channel sources configured")
	ErrUnknownSource = errors.New("unknown source")
	ErrInvalidOffset = errors.New("offset must be >= 0")
)

// Source supplies channel records from one upstream playlist or export.
type Source interface {
	Name() string
	Info() domain.SourceInfo
	Load(ctx context.Context) ([]domain.Channel, error)
}

// Service owns the deduplicated channel catalog: it loads all registered
// sources, filters and deduplicates the merged result, and serves views of
// the resulting snapshot.
type Service struct {
	sources []Source
	byName  map[string]Source
	timeout time.Duration

	engine        *dedup.Engine
	contentFilter *filter.Filter
	logger        *slog.Logger

	cacheDisabled bool
	cacheTTL      time.Duration
	cacheMu       sync.RWMutex
	cached        *cachedCatalog
	snapshotCache SnapshotCache

	healthMu sync.Mutex
	health   map[string]*sourceHealth

	snapshotMu  sync.RWMutex
	lastMetrics domain.MetricsSnapshot
	lastRunID   string
}

type ServiceOption func(*Service)

func WithSnapshotCache(backend SnapshotCache) ServiceOption {
	return func(s *Service) {
		s.snapshotCache = backend
	}
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithCacheDisabled(disabled bool) ServiceOption {
	return func(s *Service) {
		s.cacheDisabled = disabled
	}
}

func WithContentFilter(f *filter.Filter) ServiceOption {
	return func(s *Service) {
		s.contentFilter = f
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService registers the given sources in order; registration order is the
// merge order, which keeps deduplication deterministic across refreshes.
func NewService(sources []Source, engine *dedup.Engine, timeout time.Duration, opts ...ServiceOption) *Service {
	registry := make(map[string]Source, len(sources))
	ordered := make([]Source, 0, len(sources))
	for _, source := range sources {
		if source == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(source.Name()))
		if name == "" {
			continue
		}
		if _, exists := registry[name]; exists {
			continue
		}
		registry[name] = source
		ordered = append(ordered, source)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	svc := &Service{
		sources:  ordered,
		byName:   registry,
		timeout:  timeout,
		engine:   engine,
		logger:   slog.Default(),
		cacheTTL: defaultCatalogCacheTTL,
		health:   make(map[string]*sourceHealth),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.contentFilter == nil {
		svc.contentFilter = filter.New(nil)
	}
	return svc
}

// SourceInfos lists the registered sources in merge order.
func (s *Service) SourceInfos() []domain.SourceInfo {
	infos := make([]domain.SourceInfo, 0, len(s.sources))
	for _, source := range s.sources {
		infos = append(infos, source.Info())
	}
	return infos
}
