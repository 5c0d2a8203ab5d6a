package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "iptvstream/catalogservice/internal/api/http"
	"iptvstream/catalogservice/internal/app"
	"iptvstream/catalogservice/internal/catalog"
	"iptvstream/catalogservice/internal/dedup"
	"iptvstream/catalogservice/internal/filter"
	"iptvstream/catalogservice/internal/metrics"
	"iptvstream/catalogservice/internal/sources/jsonfile"
	"iptvstream/catalogservice/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "iptv-catalog")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "iptv-catalog"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("refreshTimeout", cfg.RefreshTimeout),
		slog.Int("sources", len(cfg.Sources)),
		slog.Bool("dedupEnabled", cfg.DedupEnabled),
		slog.Bool("hdUpgradeEnabled", cfg.HDUpgradeEnabled),
		slog.String("dedupStrategy", cfg.DedupStrategy),
		slog.Any("filterCategories", cfg.FilterCategories),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
		slog.Duration("cacheTTL", cfg.CacheTTL),
	)

	if len(cfg.Sources) == 0 {
		logger.Warn("no catalog sources configured, set CATALOG_SOURCES to name=path pairs")
	}

	engine := dedup.NewEngine(cfg.DeduplicationConfig(), logger)
	catalogService := catalog.NewService(
		buildSources(cfg),
		engine,
		cfg.RefreshTimeout,
		buildServiceOptions(cfg, logger)...,
	)

	handler := apihttp.NewServer(catalogService, apihttp.WithLogger(logger)).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("iptv catalog service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Duration("refreshTimeout", cfg.RefreshTimeout),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("iptv catalog service stopped")
}

func buildSources(cfg app.Config) []catalog.Source {
	httpClient := &http.Client{
		Timeout:   cfg.RefreshTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	sources := make([]catalog.Source, 0, len(cfg.Sources))
	for _, spec := range cfg.Sources {
		sources = append(sources, jsonfile.New(jsonfile.Config{
			Name:      spec.Name,
			Label:     spec.Name,
			Path:      spec.Path,
			UserAgent: cfg.UserAgent,
			Client:    httpClient,
		}))
	}
	return sources
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildServiceOptions(cfg app.Config, logger *slog.Logger) []catalog.ServiceOption {
	opts := []catalog.ServiceOption{
		catalog.WithLogger(logger),
	}

	if categories := filter.ParseCategories(strings.Join(cfg.FilterCategories, ",")); len(categories) > 0 {
		opts = append(opts, catalog.WithContentFilter(filter.New(categories)))
	}

	if cfg.CacheDisabled {
		opts = append(opts, catalog.WithCacheDisabled(true))
		return opts
	}

	if cfg.CacheTTL > 0 {
		opts = append(opts, catalog.WithCacheTTL(cfg.CacheTTL))
	}

	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL != "" {
		redisOpts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("invalid redis url, using in-memory cache only", slog.String("error", err.Error()))
			return opts
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable, using in-memory cache only", slog.String("error", err.Error()))
			return opts
		}
		logger.Info("redis connected", slog.String("addr", redisOpts.Addr))
		opts = append(opts, catalog.WithSnapshotCache(catalog.NewRedisCacheBackend(redisClient)))
	}

	return opts
}
