package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bravo6co-debug/ai-riview/core/agent/llm"
	"github.com/bravo6co-debug/ai-riview/infra/database"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/metrics"
)

// HealthDeps collaborators of the health endpoints. Every field is optional.
type HealthDeps struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Latency  *metrics.LatencyRegistry
	Costs    func() llm.CostStats
	Breaker  interface{ State() string }
	Gatherer prometheus.Gatherer
	Cache    string // resolved fingerprint cache backend

	// CacheStats reports entries and hits when the backend can count them.
	CacheStats func(ctx context.Context) (entries int64, hits int64, err error)
}

type HealthHandler struct {
	deps HealthDeps
}

func NewHealthHandler(deps HealthDeps) *HealthHandler {
	if deps.Latency == nil {
		deps.Latency = metrics.GlobalRegistry()
	}
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/health/metrics", h.Metrics)
	if h.deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.deps.Gatherer, promhttp.HandlerOpts{})))
	}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.deps.DB != nil {
		if err := h.deps.DB.Ping(ctx); err != nil {
			checks["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["postgres"] = "healthy"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	if h.deps.Redis != nil {
		if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Metrics reports in-process latency percentiles, model spend and pool state.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	latency := make(map[string]any)
	for path, stats := range h.deps.Latency.AllStats() {
		latency[path] = stats.ToMap()
	}

	body := fiber.Map{
		"latency":       latency,
		"cache_backend": h.deps.Cache,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
	if h.deps.CacheStats != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		entries, hits, err := h.deps.CacheStats(ctx)
		cancel()
		if err != nil {
			body["cache"] = fiber.Map{"error": apperr.CacheError("stats", err)}
		} else {
			body["cache"] = fiber.Map{"entries": entries, "hits": hits}
		}
	}
	if h.deps.Costs != nil {
		body["costs"] = h.deps.Costs()
	}
	if h.deps.Breaker != nil {
		body["model_breaker"] = h.deps.Breaker.State()
	}
	if h.deps.DB != nil {
		body["postgres_pool"] = database.GetPoolStats(h.deps.DB)
	}
	if h.deps.Redis != nil {
		body["redis_pool"] = database.GetRedisStats(h.deps.Redis)
	}
	return c.JSON(body)
}
