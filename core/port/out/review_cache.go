package out

import (
	"context"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

// FingerprintStore persists analysis results keyed by content hash.
type FingerprintStore interface {
	// Hit returns the entry for hash after atomically incrementing its hit
	// count and refreshing last_used_at. A miss returns (nil, nil).
	Hit(ctx context.Context, hash string) (*domain.CacheEntry, error)

	// Upsert inserts or replaces the entry for entry.ContentHash and resets
	// its hit count to zero.
	Upsert(ctx context.Context, entry *domain.CacheEntry) error
}
