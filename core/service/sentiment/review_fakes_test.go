package sentiment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

// memoryStore is a FingerprintStore for tests.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	hitErr  error
	putErr  error
	panics  bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]*domain.CacheEntry)}
}

func (s *memoryStore) Hit(ctx context.Context, hash string) (*domain.CacheEntry, error) {
	if s.panics {
		panic("store exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hitErr != nil {
		return nil, s.hitErr
	}
	e, ok := s.entries[hash]
	if !ok {
		return nil, nil
	}
	e.HitCount++
	e.LastUsedAt = time.Now()
	cp := *e
	cp.Result = *e.Result.Clone()
	return &cp, nil
}

func (s *memoryStore) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	cp := *entry
	cp.HitCount = 0
	s.entries[entry.ContentHash] = &cp
	return nil
}

func (s *memoryStore) hitCount(text string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[Fingerprint(text)]; ok {
		return e.HitCount
	}
	return -1
}

// fakeModel returns a canned reply or error.
type fakeModel struct {
	mu      sync.Mutex
	content string
	err     error
	block   bool          // wait for ctx cancellation
	release chan struct{} // when set, wait for close or ctx cancellation
	calls   int
	lastReq *out.CompletionRequest
}

func (m *fakeModel) Model() string { return "gpt-4o-mini" }

func (m *fakeModel) Complete(ctx context.Context, req *out.CompletionRequest) (*out.Completion, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &out.Completion{Content: m.content, Model: "gpt-4o-mini", PromptTokens: 300, CompletionTokens: 120}, nil
}

func (m *fakeModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var errProvider = errors.New("provider returned 500")
