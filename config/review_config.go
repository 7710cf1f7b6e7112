package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends
const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
	CacheBackendMemory   = "memory"
	CacheBackendNone     = "none"
)

// Model providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage
	DatabaseURL string
	RedisURL    string

	// JWT
	JWTSecret string

	// Model
	LLMProvider     string
	LLMModel        string
	LLMTimeoutSec   int
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string

	// Fingerprint cache
	CacheBackend        string // empty picks from the configured stores
	CacheTTLHours       int
	CacheMemoryMaxItems int

	// Escalation thresholds
	EscalateMaxLength     int
	EscalateMaxTopics     int
	EscalateMinConfidence float64

	// Batch
	BatchConcurrency int
	BatchMaxItems    int

	// HTTP
	RateLimitPerMinute  int
	AllowedOrigins      []string
	ShutdownTimeoutSec  int
	DefaultBrandContext string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMTimeoutSec:   getEnvInt("LLM_TIMEOUT_SEC", 20),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		CacheBackend:        strings.ToLower(getEnv("CACHE_BACKEND", "")),
		CacheTTLHours:       getEnvInt("CACHE_TTL_HOURS", 720),
		CacheMemoryMaxItems: getEnvInt("CACHE_MEMORY_MAX_ITEMS", 10000),

		EscalateMaxLength:     getEnvInt("ESCALATE_MAX_LENGTH", 100),
		EscalateMaxTopics:     getEnvInt("ESCALATE_MAX_TOPICS", 2),
		EscalateMinConfidence: getEnvFloat("ESCALATE_MIN_CONFIDENCE", 0.7),

		BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 4),
		BatchMaxItems:    getEnvInt("BATCH_MAX_ITEMS", 50),

		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:      getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		ShutdownTimeoutSec:  getEnvInt("SHUTDOWN_TIMEOUT_SEC", 15),
		DefaultBrandContext: getEnv("DEFAULT_BRAND_CONTEXT", "카페"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.CacheBackend {
	case "", CacheBackendMemory, CacheBackendNone:
	case CacheBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
	case CacheBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.EscalateMinConfidence < 0 || c.EscalateMinConfidence > 1 {
		return fmt.Errorf("ESCALATE_MIN_CONFIDENCE must be within [0,1], got %v", c.EscalateMinConfidence)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// ResolvedCacheBackend returns the explicit backend, otherwise postgres when
// a database is configured, then redis, then memory.
func (c *Config) ResolvedCacheBackend() string {
	switch {
	case c.CacheBackend != "":
		return c.CacheBackend
	case c.DatabaseURL != "":
		return CacheBackendPostgres
	case c.RedisURL != "":
		return CacheBackendRedis
	default:
		return CacheBackendMemory
	}
}

// ModelAPIKey returns the key of the selected provider.
func (c *Config) ModelAPIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
