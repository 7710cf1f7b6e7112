// Package cache provides FingerprintStore implementations outside Postgres.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

// =============================================================================
// Redis Fingerprint Store
// =============================================================================

const redisKeyPrefix = "review:sentiment:"

// Fields of the per-fingerprint hash.
const (
	fieldPayload  = "payload"
	fieldPreview  = "preview"
	fieldHits     = "hit_count"
	fieldLastUsed = "last_used_at"
	fieldCreated  = "created_at"
)

// hitScript increments the hit count, stamps last use and refreshes the TTL
// in one round trip. Returns nil for a missing key.
var hitScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return false
	end
	redis.call('HINCRBY', KEYS[1], 'hit_count', 1)
	redis.call('HSET', KEYS[1], 'last_used_at', ARGV[1])
	local ttl = tonumber(ARGV[2])
	if ttl > 0 then
		redis.call('EXPIRE', KEYS[1], ttl)
	end
	return redis.call('HGETALL', KEYS[1])
`)

// RedisStore keeps one hash per fingerprint. A zero TTL keeps entries forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

var _ out.FingerprintStore = (*RedisStore)(nil)

func redisKey(hash string) string {
	return redisKeyPrefix + hash
}

// Hit implements out.FingerprintStore.
func (s *RedisStore) Hit(ctx context.Context, hash string) (*domain.CacheEntry, error) {
	now := time.Now().UTC()
	raw, err := hitScript.Run(ctx, s.client, []string{redisKey(hash)},
		now.Format(time.RFC3339Nano),
		int64(s.ttl.Seconds()),
	).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis cache hit: %w", err)
	}

	fields := make(map[string]string, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		k, _ := raw[i].(string)
		v, _ := raw[i+1].(string)
		fields[k] = v
	}
	return decodeEntry(hash, fields)
}

// Upsert implements out.FingerprintStore.
func (s *RedisStore) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	key := redisKey(entry.ContentHash)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldPayload, payload,
			fieldPreview, entry.ContentPreview,
			fieldHits, 0,
			fieldLastUsed, entry.LastUsedAt.UTC().Format(time.RFC3339Nano),
			fieldCreated, entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cache upsert: %w", err)
	}
	return nil
}

func decodeEntry(hash string, fields map[string]string) (*domain.CacheEntry, error) {
	entry := &domain.CacheEntry{
		ContentHash:    hash,
		ContentPreview: fields[fieldPreview],
	}
	if err := json.Unmarshal([]byte(fields[fieldPayload]), &entry.Result); err != nil {
		return nil, fmt.Errorf("decode cache payload: %w", err)
	}
	entry.HitCount, _ = strconv.ParseInt(fields[fieldHits], 10, 64)
	entry.LastUsedAt, _ = time.Parse(time.RFC3339Nano, fields[fieldLastUsed])
	entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields[fieldCreated])
	return entry, nil
}
