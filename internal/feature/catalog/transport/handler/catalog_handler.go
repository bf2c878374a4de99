// Package handler はcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"candle_gateway/internal/feature/candles/transport/http/dto"
	"candle_gateway/internal/feature/catalog/domain/entity"
)

// CatalogUsecase はエクスチェンジカタログ取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CatalogUsecase interface {
	GetExchangeInfo(ctx context.Context, exchange string) (entity.ExchangeInfo, error)
	GetCandleIntervals(ctx context.Context, exchange string) ([]string, error)
}

// exchangeRequest はエクスチェンジ指定のリクエストDTOです。
type exchangeRequest struct {
	Exchange string `json:"exchange" binding:"required"`
}

// CatalogHandler はエクスチェンジカタログのHTTPリクエストを処理します。
type CatalogHandler struct {
	uc CatalogUsecase
}

// NewCatalogHandler は指定されたusecaseでCatalogHandlerの新しいインスタンスを生成します。
func NewCatalogHandler(uc CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// PostExchangeInfo はエクスチェンジの手数料とフィルタ情報をJSONで返します。
//
// エンドポイント例:
// POST /exchange_info {"exchange":"binance"}
func (h *CatalogHandler) PostExchangeInfo(c *gin.Context) {
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	info, err := h.uc.GetExchangeInfo(c.Request.Context(), req.Exchange)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

// PostCandleIntervals はエクスチェンジが提供する時間間隔の一覧をJSONで返します。
//
// エンドポイント例:
// POST /candle_intervals {"exchange":"binance"}
func (h *CatalogHandler) PostCandleIntervals(c *gin.Context) {
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	intervals, err := h.uc.GetCandleIntervals(c.Request.Context(), req.Exchange)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"intervals": intervals})
}
