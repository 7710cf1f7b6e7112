package bootstrap

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/bravo6co-debug/ai-riview/adapter/in/http"
	"github.com/bravo6co-debug/ai-riview/config"
	"github.com/bravo6co-debug/ai-riview/infra/middleware"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

// NewAPI builds the HTTP server and returns it with its cleanup.
func NewAPI(ctx context.Context, cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}
	return NewApp(deps), cleanup, nil
}

type cacheCounter interface {
	Stats(ctx context.Context) (entries int64, hits int64, err error)
}

// NewApp mounts middleware and routes on a new fiber app.
func NewApp(deps *Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		// go-json: faster than encoding/json for the analysis payloads
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// reviews are short; batches stay well under this
		BodyLimit: 1 * 1024 * 1024,

		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())         // 1. Panic recovery
	app.Use(middleware.RequestID())       // 2. Request ID
	app.Use(middleware.SecurityHeaders()) // 3. Security headers
	app.Use(middleware.RequestLogger())   // 4. Request logging

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// AllowCredentials:true requires explicit origins (not "*")
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,Retry-After",
		AllowCredentials: allowCredentials,
	}))

	// Health and metrics (public)
	health := http.HealthDeps{
		DB:       deps.DB,
		Redis:    deps.Redis,
		Latency:  deps.Latency,
		Costs:    deps.Usage.Costs,
		Gatherer: deps.Registry,
		Cache:    deps.CacheBackend,
	}
	if deps.Breaker != nil {
		health.Breaker = deps.Breaker
	}
	if counter, ok := deps.Store.(cacheCounter); ok {
		health.CacheStats = counter.Stats
	}
	http.NewHealthHandler(health).Register(app)

	// API v1 (authenticated)
	api := app.Group("/api/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RateLimit(deps.Limiter),
	)
	http.NewSentimentHandler(deps.Analyzer, cfg.BatchMaxItems).Register(api)
	http.NewReplyHandler(deps.Reply).Register(api)
	http.NewUsageHandler(deps.Usage).Register(api)

	return app
}
