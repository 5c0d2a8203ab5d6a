package catalog

import (
	"context"
	"time"

	"iptvstream/catalogservice/internal/domain"
	"iptvstream/catalogservice/internal/metrics"
)

const (
	defaultCatalogCacheTTL = 15 * time.Minute
	staleTTLFactor         = 3
)

// Snapshot is one fully refreshed catalog: the deduplicated channel list
// plus everything the refresh learned along the way.
type Snapshot struct {
	RunID       string                 `json:"runId"`
	Channels    []domain.Channel       `json:"channels"`
	Sources     []domain.SourceStatus  `json:"sources"`
	Metrics     domain.MetricsSnapshot `json:"metrics"`
	Filtered    int                    `json:"filtered"`
	RefreshedAt time.Time              `json:"refreshedAt"`
}

// SnapshotCache stores the latest snapshot outside the process so a
// restart (or a sibling instance) can pick it up. RedisCacheBackend is the
// production implementation.
type SnapshotCache interface {
	Get(ctx context.Context) (Snapshot, bool, error)
	Set(ctx context.Context, snapshot Snapshot, ttl time.Duration) error
	Delete(ctx context.Context) error
}

type cachedCatalog struct {
	snapshot   Snapshot
	expiresAt  time.Time
	staleUntil time.Time
	refreshing bool
}

// cacheLookup returns the cached snapshot when present. Within the TTL the
// snapshot is fresh; within the stale window it is still served but the
// second return value asks the caller to refresh in the background.
func (s *Service) cacheLookup(now time.Time) (Snapshot, bool, bool) {
	if s.cacheDisabled {
		return Snapshot{}, false, false
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry := s.cached
	if entry == nil || now.After(entry.staleUntil) {
		metrics.CacheMissesTotal.Inc()
		return Snapshot{}, false, false
	}

	metrics.CacheHitsTotal.Inc()
	if now.Before(entry.expiresAt) {
		return entry.snapshot, true, false
	}

	// Stale but servable. Claim the refresh slot under the lock so only one
	// caller triggers it.
	needsRefresh := !entry.refreshing
	if needsRefresh {
		entry.refreshing = true
	}
	return entry.snapshot, true, needsRefresh
}

func (s *Service) cacheStore(snapshot Snapshot, now time.Time) {
	if s.cacheDisabled {
		return
	}

	s.cacheMu.Lock()
	s.cached = &cachedCatalog{
		snapshot:   snapshot,
		expiresAt:  now.Add(s.cacheTTL),
		staleUntil: now.Add(s.cacheTTL * staleTTLFactor),
	}
	s.cacheMu.Unlock()

	if s.snapshotCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.snapshotCache.Set(ctx, snapshot, s.cacheTTL*staleTTLFactor); err != nil {
			s.logger.Warn("snapshot cache store failed", "error", err)
		}
	}
}

func (s *Service) cacheClearRefreshing() {
	s.cacheMu.Lock()
	if s.cached != nil {
		s.cached.refreshing = false
	}
	s.cacheMu.Unlock()
}

// backendLookup restores a snapshot written by a previous process. Only
// consulted when the in-memory cache is cold.
func (s *Service) backendLookup(ctx context.Context, now time.Time) (Snapshot, bool) {
	if s.cacheDisabled || s.snapshotCache == nil {
		return Snapshot{}, false
	}
	snapshot, ok, err := s.snapshotCache.Get(ctx)
	if err != nil {
		s.logger.Warn("snapshot cache lookup failed", "error", err)
		return Snapshot{}, false
	}
	if !ok || now.Sub(snapshot.RefreshedAt) > s.cacheTTL*staleTTLFactor {
		return Snapshot{}, false
	}

	s.cacheMu.Lock()
	s.cached = &cachedCatalog{
		snapshot:   snapshot,
		expiresAt:  snapshot.RefreshedAt.Add(s.cacheTTL),
		staleUntil: snapshot.RefreshedAt.Add(s.cacheTTL * staleTTLFactor),
	}
	s.cacheMu.Unlock()
	return snapshot, true
}

// invalidateCache drops the cached snapshot from memory and from the
// shared backend, so a forced refresh cannot be answered by either.
func (s *Service) invalidateCache(ctx context.Context) {
	s.cacheMu.Lock()
	s.cached = nil
	s.cacheMu.Unlock()

	if s.snapshotCache != nil {
		if err := s.snapshotCache.Delete(ctx); err != nil {
			s.logger.Warn("snapshot cache invalidation failed", "error", err)
		}
	}
}
