package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	candleshandler "candle_gateway/internal/feature/candles/transport/handler"
	cataloghandler "candle_gateway/internal/feature/catalog/transport/handler"
	"candle_gateway/internal/platform/http/handler"
)

func NewRouter(candles *candleshandler.CandlesHandler, catalog *cataloghandler.CatalogHandler) *gin.Engine {
	r := gin.Default()
	// CORS のデフォルト設定を有効
	r.Use(cors.Default())

	// 導通確認用
	r.GET("/healthz", handler.Health)

	// ローソク足の解決（キャッシュ確認＋不足分のバッチフェッチ）
	r.POST("/candles", candles.PostCandles)

	// エクスチェンジカタログ
	r.POST("/exchange_info", catalog.PostExchangeInfo)
	r.POST("/candle_intervals", catalog.PostCandleIntervals)

	return r
}
