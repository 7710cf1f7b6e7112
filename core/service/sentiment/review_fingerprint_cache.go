package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
	"github.com/bravo6co-debug/ai-riview/pkg/metrics"
)

// =============================================================================
// Fingerprint Cache
// =============================================================================

const previewRunes = 100

// Fingerprint is the hex SHA-256 of the exact review bytes. No normalization.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FingerprintCache memoizes analyses in a FingerprintStore. Store errors are
// logged and swallowed; a nil store disables caching.
type FingerprintCache struct {
	store        out.FingerprintStore
	storeTimeout time.Duration
	metrics      *metrics.AnalysisMetrics
	log          *logger.Logger

	pending sync.WaitGroup
}

// NewFingerprintCache creates a cache over store.
func NewFingerprintCache(store out.FingerprintStore, storeTimeout time.Duration, m *metrics.AnalysisMetrics, log *logger.Logger) *FingerprintCache {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	return &FingerprintCache{
		store:        store,
		storeTimeout: storeTimeout,
		metrics:      m,
		log:          log.WithField("component", "fingerprint_cache"),
	}
}

// Enabled reports whether a backing store is configured.
func (c *FingerprintCache) Enabled() bool {
	return c != nil && c.store != nil
}

// Lookup returns the cached result tagged as a cache hit.
func (c *FingerprintCache) Lookup(ctx context.Context, text string) (*domain.AnalysisResult, bool) {
	if !c.Enabled() {
		return nil, false
	}

	hash := Fingerprint(text)
	entry, err := c.store.Hit(ctx, hash)
	if err != nil {
		c.metrics.CacheEvent("error")
		c.log.WithContext(ctx).WithError(err).WithField("content_hash", hash).Warn("cache lookup failed")
		return nil, false
	}
	if entry == nil {
		c.metrics.CacheEvent("miss")
		return nil, false
	}
	c.metrics.CacheEvent("hit")

	result := entry.Result.Clone()
	result.Success = true
	result.AnalysisDepth = domain.DepthCache
	result.AnalysisSource = domain.SourceCache
	result.AnalysisTimeMs = nil
	result.Details = nil
	if result.ModelUsed == "" {
		result.ModelUsed = string(domain.SourceCache)
	}
	if result.Intent == "" {
		result.Intent = domain.IntentGeneral
	}
	if result.Topics == nil {
		result.Topics = []string{}
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}
	return result, true
}

// Store upserts result in the background. The write outlives ctx
// cancellation but not storeTimeout.
func (c *FingerprintCache) Store(ctx context.Context, text string, result *domain.AnalysisResult) {
	if !c.Enabled() || result == nil {
		return
	}

	entry := newCacheEntry(text, result)
	storeCtx := context.WithoutCancel(ctx)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		ctx, cancel := context.WithTimeout(storeCtx, c.storeTimeout)
		defer cancel()

		if err := c.store.Upsert(ctx, entry); err != nil {
			c.metrics.CacheEvent("error")
			c.log.WithContext(ctx).WithError(err).WithField("content_hash", entry.ContentHash).Warn("cache store failed")
			return
		}
		c.metrics.CacheEvent("store")
	}()
}

// Drain waits for in-flight stores.
func (c *FingerprintCache) Drain() {
	if c == nil {
		return
	}
	c.pending.Wait()
}

func newCacheEntry(text string, result *domain.AnalysisResult) *domain.CacheEntry {
	stored := result.Clone()
	stored.AnalysisTimeMs = nil
	stored.Details = nil

	now := time.Now()
	return &domain.CacheEntry{
		ContentHash:    Fingerprint(text),
		ContentPreview: preview(text),
		Result:         *stored,
		HitCount:       0,
		LastUsedAt:     now,
		CreatedAt:      now,
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
