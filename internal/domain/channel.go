package domain

import "time"

// Quality is the coarse grade carried by a channel record. It is a fallback
// signal: lexical quality patterns in the channel name always take precedence.
type Quality string

const (
	QualityAuto Quality = "AUTO"
	QualitySD   Quality = "SD"
	QualityHD   Quality = "HD"
	QualityFHD  Quality = "FHD"
	Quality4K   Quality = "4K"
)

// IsHigh reports whether the coarse grade counts as high quality.
func (q Quality) IsHigh() bool {
	switch q {
	case QualityHD, QualityFHD, Quality4K:
		return true
	default:
		return false
	}
}

// ChannelMetadata carries provenance for a channel record.
type ChannelMetadata struct {
	Source     string `json:"source,omitempty"`
	SourceFile string `json:"sourceFile,omitempty"`
}

// SourceTag returns the provenance tag, falling back to "unknown" so that
// records without metadata still participate in source-priority resolution.
func (m ChannelMetadata) SourceTag() string {
	if m.Source == "" {
		return "unknown"
	}
	return m.Source
}

// Channel is a single already-parsed channel record. The dedup core treats
// channels as read-only values; the winning record of a conflict is returned
// unchanged.
type Channel struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	StreamURL string          `json:"streamUrl,omitempty"`
	LogoURL   string          `json:"logoUrl,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quality   Quality         `json:"quality,omitempty"`
	Metadata  ChannelMetadata `json:"metadata,omitempty"`
}

type MatchCriteria string

const (
	MatchIDExact        MatchCriteria = "id_exact"
	MatchNameSimilarity MatchCriteria = "name_similarity"
	MatchURLSimilarity  MatchCriteria = "url_similarity"
	MatchCombined       MatchCriteria = "combined"
)

type ResolveStrategy string

const (
	StrategyKeepFirst        ResolveStrategy = "keep_first"
	StrategyKeepLast         ResolveStrategy = "keep_last"
	StrategyPrioritizeHD     ResolveStrategy = "prioritize_hd"
	StrategyPrioritizeSource ResolveStrategy = "prioritize_source"
	StrategyCustom           ResolveStrategy = "custom"
)

// DeduplicationConfig is immutable for the duration of a run. Thresholds
// outside [0,1] are accepted but degenerate to always-match / never-match.
type DeduplicationConfig struct {
	Enabled                 bool            `json:"enabled"`
	Criteria                MatchCriteria   `json:"criteria"`
	Strategy                ResolveStrategy `json:"strategy"`
	NameSimilarityThreshold float64         `json:"nameSimilarityThreshold"`
	URLSimilarityThreshold  float64         `json:"urlSimilarityThreshold"`
	EnableHDUpgrade         bool            `json:"enableHdUpgrade"`
	SourcePriority          []string        `json:"sourcePriority,omitempty"`
	IgnoreFiles             []string        `json:"ignoreFiles,omitempty"`
}

// DefaultDeduplicationConfig mirrors the documented environment defaults.
func DefaultDeduplicationConfig() DeduplicationConfig {
	return DeduplicationConfig{
		Enabled:                 true,
		Criteria:                MatchCombined,
		Strategy:                StrategyPrioritizeHD,
		NameSimilarityThreshold: 0.85,
		URLSimilarityThreshold:  0.90,
		EnableHDUpgrade:         true,
		SourcePriority:          []string{"csv", "m3u"},
	}
}

// NormalizeMatchCriteria maps raw input to a known criteria value.
func NormalizeMatchCriteria(raw string) MatchCriteria {
	switch MatchCriteria(raw) {
	case MatchIDExact:
		return MatchIDExact
	case MatchNameSimilarity:
		return MatchNameSimilarity
	case MatchURLSimilarity:
		return MatchURLSimilarity
	default:
		return MatchCombined
	}
}

// NormalizeResolveStrategy maps raw input to a known strategy value.
func NormalizeResolveStrategy(raw string) ResolveStrategy {
	switch ResolveStrategy(raw) {
	case StrategyKeepFirst:
		return StrategyKeepFirst
	case StrategyKeepLast:
		return StrategyKeepLast
	case StrategyPrioritizeSource:
		return StrategyPrioritizeSource
	case StrategyCustom:
		return StrategyCustom
	default:
		return StrategyPrioritizeHD
	}
}

// ConflictResolution is the outcome of comparing two records already flagged
// as duplicates. Strategy is an audit label; callers never branch on it.
type ConflictResolution struct {
	ShouldReplace bool    `json:"shouldReplace"`
	Selected      Channel `json:"selected"`
	Strategy      string  `json:"strategy"`
}

// MetricsSnapshot is the finalized view of one deduplication run.
type MetricsSnapshot struct {
	TotalChannels       int            `json:"totalChannels"`
	DuplicatesFound     int            `json:"duplicatesFound"`
	DuplicatesRemoved   int            `json:"duplicatesRemoved"`
	HDUpgrades          int            `json:"hdUpgrades"`
	SourceConflicts     int            `json:"sourceConflicts"`
	ProcessingTimeMS    int64          `json:"processingTimeMs"`
	DeduplicationRate   string         `json:"deduplicationRate"`
	DuplicatesBySource  map[string]int `json:"duplicatesBySource"`
	DuplicatesByType    map[string]int `json:"duplicatesByType"`
	ConflictResolutions map[string]int `json:"conflictResolutions"`
}

// SourceStatus reports the outcome of loading one source during a refresh.
type SourceStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// SourceInfo describes a registered channel source.
type SourceInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

// SourceDiagnostics exposes per-source health counters.
type SourceDiagnostics struct {
	Name                string     `json:"name"`
	Label               string     `json:"label"`
	Kind                string     `json:"kind"`
	Enabled             bool       `json:"enabled"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	BlockedUntil        *time.Time `json:"blockedUntil,omitempty"`
	LastError           string     `json:"lastError,omitempty"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *time.Time `json:"lastFailureAt,omitempty"`
	LastLatencyMS       int64      `json:"lastLatencyMs,omitempty"`
	TotalRequests       int64      `json:"totalRequests,omitempty"`
	TotalFailures       int64      `json:"totalFailures,omitempty"`
}

// CatalogRequest narrows the served catalog view. Filters are conjunctive.
type CatalogRequest struct {
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Query    string `json:"q,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	NoCache  bool   `json:"noCache,omitempty"`
}

// CatalogResponse is the result of serving (and possibly refreshing) the
// deduplicated catalog.
type CatalogResponse struct {
	RunID      string          `json:"runId,omitempty"`
	Channels   []Channel       `json:"channels"`
	Sources    []SourceStatus  `json:"sources,omitempty"`
	Metrics    MetricsSnapshot `json:"metrics"`
	Filtered   int             `json:"filtered,omitempty"`
	ElapsedMS  int64           `json:"elapsedMs"`
	TotalItems int             `json:"totalItems"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
	HasMore    bool            `json:"hasMore"`
}
