// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"candle_gateway/internal/feature/candles/domain/entity"
	"candle_gateway/internal/feature/candles/transport/http/dto"
	"candle_gateway/internal/feature/candles/usecase"
)

// CandleResolver はローソク足解決のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandleResolver interface {
	Resolve(ctx context.Context, q entity.Query) (entity.Result, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	resolver CandleResolver
}

// NewCandlesHandler は指定されたresolverでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(resolver CandleResolver) *CandlesHandler {
	return &CandlesHandler{resolver: resolver}
}

// PostCandles はクエリを受け取り、シンボルごとのローソク足データをJSONで返します。
//
// エンドポイント例:
// POST /candles {"exchange":"binance","interval":"1d","start":"2021-01-01","end":"2021-02-01","symbols":["eth-btc"]}
func (h *CandlesHandler) PostCandles(c *gin.Context) {
	var q entity.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), q)
	if err != nil {
		// 入力不備は400、取得失敗は上流起因として502を返します
		if errors.Is(err, usecase.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
