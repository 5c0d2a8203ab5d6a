package dedup

import (
	"log/slog"
	"strings"

	"iptvstream/catalogservice/internal/domain"
)

// Match type labels reported in metrics breakdowns.
const (
	matchTypeID             = "id"
	matchTypeStreamURL      = "stream_url"
	matchTypeURLSimilarity  = "url_similarity"
	matchTypeNameSimilarity = "name_similarity"
)

// Engine removes duplicate channels from a catalog run. An Engine is
// stateless between runs; per-run counters live in a fresh Metrics value,
// so a single Engine is safe for concurrent Deduplicate calls.
type Engine struct {
	cfg      domain.DeduplicationConfig
	resolver *Resolver
	logger   *slog.Logger
}

// NewEngine builds an engine from a run configuration. A nil logger
// disables per-conflict debug logging.
func NewEngine(cfg domain.DeduplicationConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.Criteria = domain.NormalizeMatchCriteria(string(cfg.Criteria))
	cfg.Strategy = domain.NormalizeResolveStrategy(string(cfg.Strategy))
	return &Engine{
		cfg:      cfg,
		resolver: NewResolver(cfg),
		logger:   logger,
	}
}

// Deduplicate returns the surviving channels in first-seen order along with
// the run's metrics. When deduplication is disabled the input is returned
// unchanged with zeroed counters.
func (e *Engine) Deduplicate(channels []domain.Channel) ([]domain.Channel, domain.MetricsSnapshot) {
	metrics := newMetrics()
	metrics.start(len(channels))

	if !e.cfg.Enabled || len(channels) == 0 {
		metrics.finish()
		out := make([]domain.Channel, len(channels))
		copy(out, channels)
		return out, metrics.Snapshot()
	}

	var survivors []domain.Channel
	if e.cfg.Criteria == domain.MatchIDExact {
		survivors = e.deduplicateByID(channels, metrics)
	} else {
		survivors = e.deduplicatePairwise(channels, metrics)
	}

	metrics.finish()
	return survivors, metrics.Snapshot()
}

// deduplicateByID is the O(n) fast path keyed on channel ID. Channels with
// an empty ID never collide.
func (e *Engine) deduplicateByID(channels []domain.Channel, metrics *Metrics) []domain.Channel {
	survivors := make([]domain.Channel, 0, len(channels))
	index := make(map[string]int, len(channels))

	for _, incoming := range channels {
		if e.ignored(incoming) || incoming.ID == "" {
			survivors = append(survivors, incoming)
			continue
		}
		at, seen := index[incoming.ID]
		if !seen {
			index[incoming.ID] = len(survivors)
			survivors = append(survivors, incoming)
			continue
		}
		e.resolveInto(survivors, at, incoming, matchTypeID, metrics)
	}
	return survivors
}

// deduplicatePairwise is the O(n²) scan: each incoming channel is compared
// against every survivor so far using the full predicate.
func (e *Engine) deduplicatePairwise(channels []domain.Channel, metrics *Metrics) []domain.Channel {
	survivors := make([]domain.Channel, 0, len(channels))

	for _, incoming := range channels {
		if e.ignored(incoming) {
			survivors = append(survivors, incoming)
			continue
		}
		matched := false
		for at := range survivors {
			if e.ignored(survivors[at]) {
				continue
			}
			duplicate, matchType := IsDuplicate(survivors[at], incoming, e.cfg)
			if !duplicate {
				continue
			}
			e.resolveInto(survivors, at, incoming, matchType, metrics)
			matched = true
			break
		}
		if !matched {
			survivors = append(survivors, incoming)
		}
	}
	return survivors
}

func (e *Engine) resolveInto(survivors []domain.Channel, at int, incoming domain.Channel, matchType string, metrics *Metrics) {
	existing := survivors[at]
	resolution := e.resolver.Resolve(existing, incoming)
	metrics.recordDuplicate(incoming, matchType, resolution)
	if resolution.ShouldReplace {
		survivors[at] = resolution.Selected
	}
	e.logger.Debug("duplicate resolved",
		"existing", existing.Name,
		"incoming", incoming.Name,
		"match_type", matchType,
		"strategy", resolution.Strategy,
		"replaced", resolution.ShouldReplace,
	)
}

// ignored reports whether the channel's source file matches a configured
// ignore substring, exempting it from deduplication entirely.
func (e *Engine) ignored(c domain.Channel) bool {
	if len(e.cfg.IgnoreFiles) == 0 || c.Metadata.SourceFile == "" {
		return false
	}
	for _, fragment := range e.cfg.IgnoreFiles {
		if fragment != "" && strings.Contains(c.Metadata.SourceFile, fragment) {
			return true
		}
	}
	return false
}

// IsDuplicate is the shared duplicate predicate. Checks run cheapest first:
// exact ID, exact stream URL, URL similarity, then name similarity. The
// match type of the first satisfied check is returned.
func IsDuplicate(a, b domain.Channel, cfg domain.DeduplicationConfig) (bool, string) {
	if a.ID != "" && a.ID == b.ID {
		return true, matchTypeID
	}
	if cfg.Criteria == domain.MatchIDExact {
		return false, ""
	}

	if a.StreamURL != "" && a.StreamURL == b.StreamURL {
		return true, matchTypeStreamURL
	}

	if cfg.Criteria == domain.MatchCombined || cfg.Criteria == domain.MatchURLSimilarity {
		if a.StreamURL != "" && b.StreamURL != "" &&
			URLSimilarity(a.StreamURL, b.StreamURL) >= cfg.URLSimilarityThreshold {
			return true, matchTypeURLSimilarity
		}
	}

	if cfg.Criteria == domain.MatchCombined || cfg.Criteria == domain.MatchNameSimilarity {
		if namesSimilar(a.Name, b.Name, cfg.NameSimilarityThreshold) {
			return true, matchTypeNameSimilarity
		}
	}
	return false, ""
}

// namesSimilar compares normalized names. When both names carry a quality
// pattern the comparison is quality-aware: the patterns are stripped so
// "CNN HD" and "CNN SD" compare as the same underlying channel, while
// identity digits like "105 CNN" survive normalization.
func namesSimilar(a, b string, threshold float64) bool {
	if a == "" || b == "" {
		return false
	}
	var na, nb string
	if HasQualityPattern(a) && HasQualityPattern(b) {
		na = NormalizeForQualityPatterns(a)
		nb = NormalizeForQualityPatterns(b)
	} else {
		na = Normalize(a)
		nb = Normalize(b)
	}
	if na == "" || nb == "" {
		return false
	}
	return Similarity(na, nb) >= threshold
}
