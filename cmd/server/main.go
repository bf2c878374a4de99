package main

import (
	"fmt"
	"log"

	"candle_gateway/internal/app/router"
	candleshandler "candle_gateway/internal/feature/candles/transport/handler"
	candlesusecase "candle_gateway/internal/feature/candles/usecase"
	cataloghandler "candle_gateway/internal/feature/catalog/transport/handler"
	catalogusecase "candle_gateway/internal/feature/catalog/usecase"
	"candle_gateway/internal/platform/cache"
	"candle_gateway/internal/platform/config"
	"candle_gateway/internal/platform/externalapi/engine"
	platformhttp "candle_gateway/internal/platform/http"
	platformredis "candle_gateway/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// キャッシュ。Redisが使えない場合はインメモリへフォールバック
	var candleCache candlesusecase.CandleCache = cache.NewMemoryStore(cache.DefaultNamespace)
	if cfg.Cache.Backend == "redis" {
		if rdb, err := platformredis.NewRedisClient(cfg.Cache); err != nil {
			log.Println("[WARN] Redis unavailable. Falling back to in-memory cache.")
		} else {
			candleCache = cache.NewRedisStore(rdb, cache.DefaultNamespace)
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// エンジンAPIクライアント
	engineClient := engine.NewClient(
		engine.Config{BaseURL: cfg.Engine.BaseURL, Timeout: cfg.Engine.Timeout},
		platformhttp.NewHTTPClient(cfg.Engine.Timeout),
	)

	// Usecase
	resolveUC := candlesusecase.NewResolveUsecase(candleCache, engineClient)
	catalogUC := catalogusecase.NewCatalogUsecase(engineClient)

	// Handler
	candlesH := candleshandler.NewCandlesHandler(resolveUC)
	catalogH := cataloghandler.NewCatalogHandler(catalogUC)

	// ルータ生成
	r := router.NewRouter(candlesH, catalogH)

	if err := r.Run(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
		log.Fatal(err)
	}
}
