package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

// =============================================================================
// In-Memory Fingerprint Store (LRU + TTL)
// =============================================================================

// DefaultMemoryItems bounds the in-memory store when no size is given.
const DefaultMemoryItems = 10000

// MemoryStore is a process-local store with LRU eviction. Entries are copied
// on the way in and out.
type MemoryStore struct {
	mu       sync.Mutex
	maxItems int
	ttl      time.Duration
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	now      func() time.Time
}

type memoryItem struct {
	entry     domain.CacheEntry
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates a store holding at most maxItems entries. A zero
// TTL keeps entries until evicted.
func NewMemoryStore(maxItems int, ttl time.Duration) *MemoryStore {
	if maxItems <= 0 {
		maxItems = DefaultMemoryItems
	}
	return &MemoryStore{
		maxItems: maxItems,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

var _ out.FingerprintStore = (*MemoryStore)(nil)

// Hit implements out.FingerprintStore.
func (s *MemoryStore) Hit(_ context.Context, hash string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[hash]
	if !ok {
		return nil, nil
	}
	item := elem.Value.(*memoryItem)

	now := s.now()
	if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
		s.remove(elem)
		return nil, nil
	}

	item.entry.HitCount++
	item.entry.LastUsedAt = now
	if s.ttl > 0 {
		item.expiresAt = now.Add(s.ttl)
	}
	s.order.MoveToFront(elem)

	return copyEntry(&item.entry), nil
}

// Upsert implements out.FingerprintStore.
func (s *MemoryStore) Upsert(_ context.Context, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &memoryItem{entry: *copyEntry(entry)}
	item.entry.HitCount = 0
	if s.ttl > 0 {
		item.expiresAt = s.now().Add(s.ttl)
	}

	if elem, ok := s.items[entry.ContentHash]; ok {
		elem.Value = item
		s.order.MoveToFront(elem)
		return nil
	}

	s.items[entry.ContentHash] = s.order.PushFront(item)
	for s.order.Len() > s.maxItems {
		s.remove(s.order.Back())
	}
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Stats returns the entry count and the hits recorded on those entries.
func (s *MemoryStore) Stats(_ context.Context) (entries int64, hits int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		hits += elem.Value.(*memoryItem).entry.HitCount
	}
	return int64(s.order.Len()), hits, nil
}

func (s *MemoryStore) remove(elem *list.Element) {
	item := s.order.Remove(elem).(*memoryItem)
	delete(s.items, item.entry.ContentHash)
}

func copyEntry(e *domain.CacheEntry) *domain.CacheEntry {
	cp := *e
	cp.Result = *e.Result.Clone()
	return &cp
}
