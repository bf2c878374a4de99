package cache

import (
	"context"
	"sync"

	"candle_gateway/internal/feature/candles/domain/entity"
	"candle_gateway/internal/feature/candles/usecase"
)

// MemoryStore is an in-process candle series store shared by every caller of
// a session. Entries live until process exit: no TTL, no eviction and no
// delete operation, so the store only grows. Acceptable for a bounded
// interactive session; a long-running deployment should use RedisStore or an
// explicit bound instead.
type MemoryStore struct {
	namespace string

	mu      sync.RWMutex
	entries map[string]entity.Series
}

// MemoryStore implements the usecase cache contract.
var _ usecase.CandleCache = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. If namespace is empty, it uses
// "candles".
func NewMemoryStore(namespace string) *MemoryStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &MemoryStore{
		namespace: namespace,
		entries:   make(map[string]entity.Series),
	}
}

// Get looks up the series stored under the exact key. It has no side effects
// and never fails.
func (s *MemoryStore) Get(_ context.Context, key entity.SeriesKey) (entity.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.entries[KeyString(s.namespace, key)]
	return series, ok
}

// Put overwrites the series stored under the key unconditionally. Storing an
// identical series twice leaves subsequent Get results unchanged.
func (s *MemoryStore) Put(_ context.Context, key entity.SeriesKey, series entity.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[KeyString(s.namespace, key)] = series
}

// Len reports the number of stored series. Used by tests and diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
