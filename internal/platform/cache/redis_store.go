package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"candle_gateway/internal/feature/candles/domain/entity"
	"candle_gateway/internal/feature/candles/usecase"
)

// RedisStore keeps the session cache in Redis so that several dashboard
// processes can share one logical cache. Entries are stored without
// expiration, matching the session-lifetime contract; only a flush of the
// Redis database drops them. Redis failures degrade to cache misses — the
// store never turns a lookup problem into a caller-visible error.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// RedisStore implements the usecase cache contract.
var _ usecase.CandleCache = (*RedisStore)(nil)

// NewRedisStore creates a store backed by the given client. If namespace is
// empty, it uses "candles".
func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{rdb: rdb, namespace: namespace}
}

// Get looks up the series stored under the exact key. Transport errors and
// corrupted entries are reported as a miss.
func (s *RedisStore) Get(ctx context.Context, key entity.SeriesKey) (entity.Series, bool) {
	k := KeyString(s.namespace, key)

	b, err := s.rdb.Get(ctx, k).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}

	var series entity.Series
	if err := json.Unmarshal(b, &series); err != nil {
		// Delete corrupted cache entry
		_ = s.rdb.Del(ctx, k).Err()
		return nil, false
	}
	return series, true
}

// Put overwrites the series stored under the key. Best effort: a failed write
// only costs a refetch later.
func (s *RedisStore) Put(ctx context.Context, key entity.SeriesKey, series entity.Series) {
	b, err := json.Marshal(series)
	if err != nil {
		return
	}
	_ = s.rdb.Set(ctx, KeyString(s.namespace, key), b, 0).Err()
}
