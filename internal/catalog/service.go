package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"iptvstream/catalogservice/internal/dedup"
	"iptvstream/catalogservice/internal/domain"
	"iptvstream/catalogservice/internal/filter"
	"iptvstream/catalogservice/internal/metrics"
)

// maxConcurrentSources bounds parallel source loads so a refresh with many
// configured playlists does not hammer upstreams or local disk at once.
const maxConcurrentSources = 4

// ErrAllSourcesFailed is returned when a refresh produced no channels and
// every source load errored.
var ErrAllSourcesFailed = errors.New("all channel sources failed")

// Catalog serves a view of the deduplicated catalog, refreshing it first
// when no usable snapshot is cached.
func (s *Service) Catalog(ctx context.Context, request domain.CatalogRequest) (domain.CatalogResponse, error) {
	if len(s.sources) == 0 {
		return domain.CatalogResponse{}, ErrNoSources
	}
	if request.Offset < 0 {
		return domain.CatalogResponse{}, ErrInvalidOffset
	}
	if request.Source != "" {
		if _, ok := s.byName[strings.ToLower(strings.TrimSpace(request.Source))]; !ok {
			return domain.CatalogResponse{}, ErrUnknownSource
		}
	}

	startedAt := time.Now()

	if request.NoCache {
		s.invalidateCache(ctx)
	}

	if !request.NoCache && !s.cacheDisabled {
		snapshot, ok, needsRefresh := s.cacheLookup(startedAt)
		if !ok {
			snapshot, ok = s.backendLookup(ctx, startedAt)
		}
		if ok {
			if needsRefresh {
				s.refreshAsync()
			}
			return s.view(snapshot, request, startedAt), nil
		}
	}

	snapshot, err := s.Refresh(ctx)
	if err != nil {
		return domain.CatalogResponse{}, err
	}
	return s.view(snapshot, request, startedAt), nil
}

// Refresh loads every registered source, filters and deduplicates the merged
// channel list, and caches the resulting snapshot. Sources are loaded
// concurrently but merged in registration order, so identical inputs always
// produce the identical catalog.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	if len(s.sources) == 0 {
		return Snapshot{}, ErrNoSources
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	statuses := make([]domain.SourceStatus, len(s.sources))
	loaded := make([][]domain.Channel, len(s.sources))

	sem := semaphore.NewWeighted(maxConcurrentSources)
	var wg sync.WaitGroup
	for i, source := range s.sources {
		wg.Add(1)
		go func(index int, current Source) {
			defer wg.Done()

			name := strings.ToLower(strings.TrimSpace(current.Name()))

			if err := sem.Acquire(runCtx, 1); err != nil {
				statuses[index] = domain.SourceStatus{Name: name, OK: false, Error: "context cancelled"}
				return
			}
			defer sem.Release(1)

			now := time.Now()
			if blocked, until, lastErr := s.isSourceBlocked(name, now); blocked {
				statuses[index] = domain.SourceStatus{
					Name:  name,
					OK:    false,
					Error: "source temporarily unhealthy until " + until.UTC().Format(time.RFC3339) + ": " + lastErr,
				}
				return
			}

			loadStartedAt := time.Now()
			var channels []domain.Channel
			loadErr := RetryWithBackoff(runCtx, DefaultRetryConfig(), func() error {
				var err error
				channels, err = current.Load(runCtx)
				return err
			})
			s.recordSourceResult(name, loadErr, time.Since(loadStartedAt), time.Now())

			status := domain.SourceStatus{Name: name, OK: loadErr == nil, Count: len(channels)}
			if loadErr != nil {
				status.Error = loadErr.Error()
				s.logger.Warn("source load failed", "source", name, "error", loadErr)
			}
			statuses[index] = status

			for j := range channels {
				if channels[j].Metadata.Source == "" {
					channels[j].Metadata.Source = name
				}
			}
			loaded[index] = channels
		}(i, source)
	}
	wg.Wait()

	merged := make([]domain.Channel, 0, 256)
	anyOK := false
	for i := range loaded {
		merged = append(merged, loaded[i]...)
		if statuses[i].OK {
			anyOK = true
		}
	}
	if !anyOK && len(merged) == 0 {
		return Snapshot{}, ErrAllSourcesFailed
	}

	merged, filtered := s.applyContentFilter(merged)

	dedupStartedAt := time.Now()
	channels, dedupMetrics := s.engine.Deduplicate(merged)
	metrics.DedupDuration.Observe(time.Since(dedupStartedAt).Seconds())
	metrics.ChannelsTotal.Set(float64(len(channels)))
	metrics.DuplicatesRemovedTotal.Add(float64(dedupMetrics.DuplicatesRemoved))
	metrics.HDUpgradesTotal.Add(float64(dedupMetrics.HDUpgrades))

	snapshot := Snapshot{
		RunID:       uuid.NewString(),
		Channels:    channels,
		Sources:     statuses,
		Metrics:     dedupMetrics,
		Filtered:    filtered,
		RefreshedAt: time.Now(),
	}

	s.snapshotMu.Lock()
	s.lastMetrics = dedupMetrics
	s.lastRunID = snapshot.RunID
	s.snapshotMu.Unlock()

	s.cacheStore(snapshot, time.Now())

	s.logger.Info("catalog refreshed",
		"run_id", snapshot.RunID,
		"channels", len(channels),
		"duplicates_removed", dedupMetrics.DuplicatesRemoved,
		"hd_upgrades", dedupMetrics.HDUpgrades,
		"filtered", filtered,
	)
	return snapshot, nil
}

func (s *Service) refreshAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout+2*time.Second)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.cacheClearRefreshing()
			s.logger.Warn("background catalog refresh failed", "error", err)
		}
	}()
}

func (s *Service) applyContentFilter(channels []domain.Channel) ([]domain.Channel, int) {
	if !s.contentFilter.Enabled() {
		return channels, 0
	}

	kept := channels[:0]
	filtered := 0
	for _, c := range channels {
		decision := s.contentFilter.Evaluate(filter.Subject{
			Name:      c.Name,
			Category:  c.Category,
			StreamURL: c.StreamURL,
		})
		if decision.Blocked {
			filtered++
			metrics.ChannelsFilteredTotal.WithLabelValues(string(decision.Category)).Inc()
			s.logger.Debug("channel filtered",
				"channel", c.Name,
				"category", decision.Category,
				"confidence", decision.Confidence,
			)
			continue
		}
		kept = append(kept, c)
	}
	return kept, filtered
}

// LastMetrics returns the dedup metrics of the most recent refresh and its
// run ID. Zero values before the first refresh.
func (s *Service) LastMetrics() (domain.MetricsSnapshot, string) {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	return s.lastMetrics, s.lastRunID
}

func (s *Service) view(snapshot Snapshot, request domain.CatalogRequest, startedAt time.Time) domain.CatalogResponse {
	matched := filterView(snapshot.Channels, request)

	limit := request.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := request.Offset

	total := len(matched)
	page := []domain.Channel{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = matched[offset:end]
	}

	return domain.CatalogResponse{
		RunID:      snapshot.RunID,
		Channels:   page,
		Sources:    snapshot.Sources,
		Metrics:    snapshot.Metrics,
		Filtered:   snapshot.Filtered,
		ElapsedMS:  time.Since(startedAt).Milliseconds(),
		TotalItems: total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    offset+len(page) < total,
	}
}

func filterView(channels []domain.Channel, request domain.CatalogRequest) []domain.Channel {
	source := strings.ToLower(strings.TrimSpace(request.Source))
	category := strings.TrimSpace(request.Category)
	quality := strings.ToUpper(strings.TrimSpace(request.Quality))
	query := dedup.Normalize(request.Query)

	if source == "" && category == "" && quality == "" && query == "" {
		return channels
	}

	matched := make([]domain.Channel, 0, len(channels))
	for _, c := range channels {
		if source != "" && strings.ToLower(c.Metadata.Source) != source {
			continue
		}
		if category != "" && !strings.EqualFold(c.Category, category) {
			continue
		}
		if quality != "" && !matchesQuality(c, quality) {
			continue
		}
		if query != "" && !strings.Contains(dedup.Normalize(c.Name), query) {
			continue
		}
		matched = append(matched, c)
	}
	return matched
}

// matchesQuality accepts both the coarse quality field and the lexical
// pattern in the name, so "HD" finds "Caracol HD" even when the record's
// quality field was never set.
func matchesQuality(c domain.Channel, quality string) bool {
	switch quality {
	case "HD":
		return c.Quality.IsHigh() || dedup.IsHighQuality(c.Name)
	case "SD":
		return c.Quality == domain.QualitySD || dedup.IsLowQuality(c.Name)
	default:
		return strings.EqualFold(string(c.Quality), quality)
	}
}
