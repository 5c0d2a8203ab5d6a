package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"iptvstream/catalogservice/internal/domain"
)

type SourceSpec struct {
	Name string
	Path string
}

type Config struct {
	HTTPAddr       string
	RefreshTimeout time.Duration
	LogLevel       string
	LogFormat      string
	UserAgent      string
	Sources        []SourceSpec

	DedupEnabled     bool
	HDUpgradeEnabled bool
	NameThreshold    float64
	URLThreshold     float64
	DedupCriteria    string
	DedupStrategy    string
	SourcePriority   []string
	IgnoreFiles      []string

	FilterCategories []string

	RedisURL      string
	CacheTTL      time.Duration
	CacheDisabled bool
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8085"),
		RefreshTimeout: time.Duration(getEnvInt("REFRESH_TIMEOUT_SECONDS", 30)) * time.Second,
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UserAgent:      getEnv("SOURCE_USER_AGENT", "iptv-catalog-service/1.0"),
		Sources:        parseSourceSpecs(getEnv("CATALOG_SOURCES", "")),

		DedupEnabled:     getEnvBool("ENABLE_INTELLIGENT_DEDUPLICATION", true),
		HDUpgradeEnabled: getEnvBool("ENABLE_HD_UPGRADE", true),
		NameThreshold:    getEnvThreshold("NAME_SIMILARITY_THRESHOLD", 0.85),
		URLThreshold:     getEnvThreshold("URL_SIMILARITY_THRESHOLD", 0.90),
		DedupCriteria:    strings.ToLower(getEnv("DEDUPLICATION_CRITERIA", "combined")),
		DedupStrategy:    strings.ToLower(getEnv("DEDUPLICATION_STRATEGY", "prioritize_hd")),
		SourcePriority:   parseCSV(getEnv("SOURCE_PRIORITY", "csv,m3u")),
		IgnoreFiles:      parseCSV(getEnv("DEDUPLICATION_IGNORE_FILES", "")),

		FilterCategories: parseCSV(getEnv("CONTENT_FILTER_CATEGORIES", "")),

		RedisURL:      getEnv("REDIS_URL", ""),
		CacheTTL:      time.Duration(getEnvInt("CATALOG_CACHE_TTL_MINUTES", 15)) * time.Minute,
		CacheDisabled: getEnvBool("CATALOG_CACHE_DISABLED", false),
	}
}

// DeduplicationConfig maps the environment surface onto the engine
// configuration, normalizing criteria and strategy values.
func (c Config) DeduplicationConfig() domain.DeduplicationConfig {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Enabled = c.DedupEnabled
	cfg.EnableHDUpgrade = c.HDUpgradeEnabled
	cfg.NameSimilarityThreshold = c.NameThreshold
	cfg.URLSimilarityThreshold = c.URLThreshold
	cfg.Criteria = domain.NormalizeMatchCriteria(c.DedupCriteria)
	cfg.Strategy = domain.NormalizeResolveStrategy(c.DedupStrategy)
	if len(c.SourcePriority) > 0 {
		cfg.SourcePriority = append([]string(nil), c.SourcePriority...)
	}
	cfg.IgnoreFiles = append([]string(nil), c.IgnoreFiles...)
	return cfg
}

// parseSourceSpecs reads "name=path" pairs separated by commas, e.g.
// "csv=/data/channels.json,m3u=https://host/playlist.json".
func parseSourceSpecs(raw string) []SourceSpec {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	specs := make([]SourceSpec, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		name, path, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		path = strings.TrimSpace(path)
		if name == "" || path == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		specs = append(specs, SourceSpec{Name: name, Path: path})
	}
	return specs
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.ToLower(strings.TrimSpace(part))
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// getEnvThreshold parses a similarity threshold and rejects values
// outside (0, 1].
func getEnvThreshold(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 || parsed > 1 {
		return fallback
	}
	return parsed
}
