package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"candle_gateway/internal/platform/config"
)

// NewRedisClient は設定されたアドレスへ接続し、疎通確認済みのクライアントを返します。
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	// 接続確認
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.RedisAddr, "error", err)
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.RedisAddr)
	return rdb, nil
}
