package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

func entry(hash string, sentiment domain.Sentiment) *domain.CacheEntry {
	return &domain.CacheEntry{
		ContentHash:    hash,
		ContentPreview: "preview " + hash,
		Result: domain.AnalysisResult{
			Success:   true,
			Sentiment: sentiment,
			Topics:    []string{"서비스"},
		},
	}
}

func TestMemoryStore_HitCounting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, 0)

	if got, err := s.Hit(ctx, "missing"); got != nil || err != nil {
		t.Fatalf("miss = %v, %v; want nil, nil", got, err)
	}

	if err := s.Upsert(ctx, entry("a", domain.SentimentPositive)); err != nil {
		t.Fatal(err)
	}
	for want := int64(1); want <= 3; want++ {
		got, err := s.Hit(ctx, "a")
		if err != nil {
			t.Fatal(err)
		}
		if got.HitCount != want {
			t.Errorf("hit %d: HitCount = %d", want, got.HitCount)
		}
	}

	// upsert resets the counter and replaces the result
	if err := s.Upsert(ctx, entry("a", domain.SentimentNegative)); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Hit(ctx, "a")
	if got.HitCount != 1 || got.Result.Sentiment != domain.SentimentNegative {
		t.Errorf("after upsert: hits=%d sentiment=%s", got.HitCount, got.Result.Sentiment)
	}

	entries, hits, err := s.Stats(ctx)
	if err != nil || entries != 1 || hits != 1 {
		t.Errorf("Stats = %d, %d, %v; want 1, 1, nil", entries, hits, err)
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, 0)

	_ = s.Upsert(ctx, entry("a", domain.SentimentPositive))
	_ = s.Upsert(ctx, entry("b", domain.SentimentPositive))
	_, _ = s.Hit(ctx, "a") // b becomes the eviction candidate
	_ = s.Upsert(ctx, entry("c", domain.SentimentPositive))

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if got, _ := s.Hit(ctx, "b"); got != nil {
		t.Error("b should have been evicted")
	}
	for _, hash := range []string{"a", "c"} {
		if got, _ := s.Hit(ctx, hash); got == nil {
			t.Errorf("%s should still be cached", hash)
		}
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(10, time.Minute)
	s.now = func() time.Time { return now }

	_ = s.Upsert(ctx, entry("a", domain.SentimentNeutral))

	now = now.Add(50 * time.Second)
	if got, _ := s.Hit(ctx, "a"); got == nil {
		t.Fatal("entry expired too early")
	}

	// the hit above slid the expiry forward
	now = now.Add(50 * time.Second)
	if got, _ := s.Hit(ctx, "a"); got == nil {
		t.Fatal("hit should refresh the ttl")
	}

	now = now.Add(2 * time.Minute)
	if got, _ := s.Hit(ctx, "a"); got != nil {
		t.Error("entry should have expired")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", s.Len())
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, 0)

	in := entry("a", domain.SentimentPositive)
	_ = s.Upsert(ctx, in)
	in.Result.Topics[0] = "mutated"

	got, _ := s.Hit(ctx, "a")
	got.Result.Topics[0] = "mutated again"

	again, _ := s.Hit(ctx, "a")
	if again.Result.Topics[0] != "서비스" {
		t.Errorf("store shares memory with callers: %q", again.Result.Topics[0])
	}
}

func TestDecodeEntry(t *testing.T) {
	fields := map[string]string{
		fieldPayload:  `{"success":true,"sentiment":"negative","sentiment_strength":0.8,"topics":["청결"],"keywords":["더러"],"intent":"불만","analysis_depth":"deep","model_used":"gpt-4o-mini"}`,
		fieldPreview:  "테이블이 더러웠어요",
		fieldHits:     "4",
		fieldLastUsed: "2025-03-01T12:00:00Z",
		fieldCreated:  "2025-02-01T09:30:00Z",
	}

	got, err := decodeEntry("abc", fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ContentHash != "abc" || got.HitCount != 4 || got.ContentPreview != "테이블이 더러웠어요" {
		t.Errorf("entry = %+v", got)
	}
	if got.Result.Sentiment != domain.SentimentNegative || got.Result.Intent != domain.IntentComplaint {
		t.Errorf("result = %+v", got.Result)
	}
	if !got.CreatedAt.Equal(time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}

	if _, err := decodeEntry("abc", map[string]string{fieldPayload: "{broken"}); err == nil {
		t.Error("expected error for corrupt payload")
	}
}
