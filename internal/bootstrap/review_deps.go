package bootstrap

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/bravo6co-debug/ai-riview/adapter/out/cache"
	"github.com/bravo6co-debug/ai-riview/adapter/out/persistence"
	"github.com/bravo6co-debug/ai-riview/config"
	"github.com/bravo6co-debug/ai-riview/core/agent/llm"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/core/service/reply"
	"github.com/bravo6co-debug/ai-riview/core/service/sentiment"
	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/infra/database"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
	"github.com/bravo6co-debug/ai-riview/pkg/metrics"
	"github.com/bravo6co-debug/ai-riview/pkg/ratelimit"
)

// Dependencies is the wired object graph shared by the API server and the CLI.
type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client

	// Adapters
	Store        out.FingerprintStore
	CacheBackend string
	History      out.HistoryRepository
	UsageRepo    out.UsageRepository
	Model        out.ModelClient
	Breaker      *llm.BreakerClient

	// Metrics
	Registry *prometheus.Registry
	Metrics  *metrics.AnalysisMetrics
	Latency  *metrics.LatencyRegistry

	// Services
	Usage     *usage.Tracker
	Analyzer  *sentiment.Analyzer
	Generator *reply.Generator
	Reply     *reply.Service
	Limiter   *ratelimit.Limiter
}

// NewDependencies connects the configured stores and builds the services.
// Postgres and Redis are optional; without them the service runs on the
// in-memory store with no history or usage logging.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	log := logger.Default()

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool + sqlx)
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig())
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.DB = db
		cleanups = append(cleanups, db.Close)

		sqlDB, err := database.NewSQLX(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig())
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.SQLDB = sqlDB
		cleanups = append(cleanups, func() { sqlDB.Close() })

		deps.History = persistence.NewHistoryAdapter(sqlDB)
		deps.UsageRepo = persistence.NewUsageAdapter(db)
	}

	// Redis
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(ctx, cfg.RedisURL, database.DefaultRedisConfig())
		if err != nil {
			log.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
		}
	}

	deps.Store, deps.CacheBackend = newFingerprintStore(cfg, deps)
	log.Info("fingerprint cache backend: %s", deps.CacheBackend)

	// Model
	deps.Model, deps.Breaker = newModelClient(cfg, log)

	// Metrics
	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.NewAnalysisMetrics(deps.Registry)
	deps.Latency = metrics.GlobalRegistry()

	// Services
	deps.Usage = usage.NewTracker(deps.UsageRepo, log)

	analyzerCfg := sentiment.DefaultAnalyzerConfig()
	analyzerCfg.Escalation = sentiment.EscalationPolicy{
		MaxQuickLength: cfg.EscalateMaxLength,
		MaxTopics:      cfg.EscalateMaxTopics,
		MinConfidence:  cfg.EscalateMinConfidence,
	}
	if cfg.LLMTimeoutSec > 0 {
		analyzerCfg.ModelTimeout = cfg.LLMTimeout()
	}
	if cfg.BatchConcurrency > 0 {
		analyzerCfg.BatchConcurrency = cfg.BatchConcurrency
	}

	deps.Analyzer = sentiment.NewAnalyzer(&sentiment.AnalyzerDeps{
		Store:   deps.Store,
		Model:   deps.Model,
		Usage:   deps.Usage,
		Metrics: deps.Metrics,
		Latency: deps.Latency,
		Logger:  log,
	}, analyzerCfg)
	cleanups = append(cleanups, deps.Analyzer.Drain)

	var genOpts []reply.GeneratorOption
	if cfg.LLMTimeoutSec > 0 {
		genOpts = append(genOpts, reply.WithTimeout(cfg.LLMTimeout()))
	}
	deps.Generator = reply.NewGenerator(deps.Model, deps.Usage, log, genOpts...)
	deps.Reply = reply.NewService(deps.Analyzer, deps.Generator, deps.History, deps.Usage, cfg.DefaultBrandContext, log)

	deps.Limiter = ratelimit.New(deps.Redis, cfg.RateLimitPerMinute, time.Minute)

	return deps, cleanup, nil
}

// newFingerprintStore picks the cache backend. A backend whose connection
// is missing degrades to the in-memory store.
func newFingerprintStore(cfg *config.Config, deps *Dependencies) (out.FingerprintStore, string) {
	memory := func() (out.FingerprintStore, string) {
		return cache.NewMemoryStore(cfg.CacheMemoryMaxItems, cfg.CacheTTL()), config.CacheBackendMemory
	}

	switch cfg.ResolvedCacheBackend() {
	case config.CacheBackendNone:
		return nil, config.CacheBackendNone
	case config.CacheBackendPostgres:
		if deps.SQLDB != nil {
			return persistence.NewSentimentCacheAdapter(deps.SQLDB), config.CacheBackendPostgres
		}
	case config.CacheBackendRedis:
		if deps.Redis != nil {
			return cache.NewRedisStore(deps.Redis, cfg.CacheTTL()), config.CacheBackendRedis
		}
	}
	return memory()
}

// newModelClient builds the provider client behind a circuit breaker.
// Without an API key the service runs rule-based only.
func newModelClient(cfg *config.Config, log *logger.Logger) (out.ModelClient, *llm.BreakerClient) {
	apiKey := cfg.ModelAPIKey()
	if apiKey == "" {
		log.Warn("no API key for provider %s, deep analysis and model replies disabled", cfg.LLMProvider)
		return nil, nil
	}

	var client out.ModelClient
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		client = llm.NewClaudeClient(apiKey, cfg.LLMModel)
	default:
		client = llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:  apiKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}

	breaker := llm.NewBreakerClient(client, llm.DefaultBreakerConfig(cfg.LLMProvider), log)
	log.Info("model client: %s (%s)", cfg.LLMProvider, breaker.Model())
	return breaker, breaker
}
