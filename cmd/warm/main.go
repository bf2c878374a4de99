package main

import (
	"context"
	"log"
	"time"

	"candle_gateway/internal/feature/candles/adapters"
	"candle_gateway/internal/feature/candles/domain/entity"
	candlesusecase "candle_gateway/internal/feature/candles/usecase"
	"candle_gateway/internal/platform/cache"
	"candle_gateway/internal/platform/config"
	"candle_gateway/internal/platform/db"
	"candle_gateway/internal/platform/externalapi/engine"
	platformhttp "candle_gateway/internal/platform/http"
	"candle_gateway/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		log.Fatal("failed to open archive db:", err)
	}

	engineClient := engine.NewClient(
		engine.Config{BaseURL: cfg.Engine.BaseURL, Timeout: cfg.Engine.Timeout},
		platformhttp.NewHTTPClient(cfg.Engine.Timeout),
	)

	store := cache.NewMemoryStore(cache.DefaultNamespace)
	resolver := candlesusecase.NewResolveUsecase(store, engineClient)
	archive := adapters.NewCandleArchive(gdb)
	limiter := ratelimiter.NewRateLimiter(cfg.Warm.RateLimit, time.Minute)

	uc := candlesusecase.NewWarmUsecase(resolver, archive, limiter)

	// 設定されたシンボル×時間間隔の組をクエリ群に展開
	queries := make([]entity.Query, 0, len(cfg.Warm.Intervals))
	for _, interval := range cfg.Warm.Intervals {
		queries = append(queries, entity.Query{
			Exchange: cfg.Warm.Exchange,
			Interval: interval,
			Start:    cfg.Warm.Start,
			End:      cfg.Warm.End,
			Symbols:  cfg.Warm.Symbols,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := uc.WarmAll(ctx, queries); err != nil {
		log.Fatal(err)
	}
	log.Println("warm ok")
}
