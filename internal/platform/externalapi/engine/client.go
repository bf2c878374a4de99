package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	candlesentity "candle_gateway/internal/feature/candles/domain/entity"
	candlesusecase "candle_gateway/internal/feature/candles/usecase"
	catalogentity "candle_gateway/internal/feature/catalog/domain/entity"
	catalogusecase "candle_gateway/internal/feature/catalog/usecase"
	"candle_gateway/internal/platform/externalapi/engine/dto"
	"candle_gateway/internal/platform/keycase"
)

// Client はバックテストエンジンAPIからローソク足データを取得する
// CandleProvider実装です。リクエスト/レスポンスのボディは境界で
// camelCase ⇔ snake_case のキー書き換えを通過します。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがProviderの各インターフェースを実装していることをコンパイル時に検証します。
var (
	_ candlesusecase.CandleProvider  = (*Client)(nil)
	_ catalogusecase.CatalogProvider = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// BatchCandles は不足シンボル全体を1回のリクエストで取得し、
// シンボル→シリーズのマッピングを返します。レスポンスに含まれなかった
// シンボルはマッピングに現れません（欠落の扱いは呼び出し側が決めます）。
func (c *Client) BatchCandles(ctx context.Context, q candlesentity.Query) (map[string]candlesentity.Series, error) {
	reqBody := dto.BatchCandlesRequest{
		Exchange:   q.Exchange,
		Interval:   q.Interval,
		Start:      q.Start,
		End:        q.End,
		CandleType: q.Type,
		Symbols:    q.Symbols,
	}

	var body dto.BatchCandlesResponse
	if err := c.post(ctx, "/candles", reqBody, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("engine: %s", body.Message)
	}

	out := make(map[string]candlesentity.Series, len(body.Candles))
	for symbol, values := range body.Candles {
		series := make(candlesentity.Series, 0, len(values))
		for _, v := range values {
			// ドメインエンティティに変換
			series = append(series, candlesentity.Candle{
				Time:   v.Time,
				Open:   v.Open,
				High:   v.High,
				Low:    v.Low,
				Close:  v.Close,
				Volume: v.Volume,
			})
		}
		out[symbol] = series
	}
	return out, nil
}

// ExchangeInfo は指定されたエクスチェンジの手数料とフィルタ情報を取得します。
func (c *Client) ExchangeInfo(ctx context.Context, exchange string) (catalogentity.ExchangeInfo, error) {
	var body dto.ExchangeInfoResponse
	if err := c.post(ctx, "/exchange_info", exchangeRequest{Exchange: exchange}, &body); err != nil {
		return catalogentity.ExchangeInfo{}, err
	}
	if body.Status == "error" {
		return catalogentity.ExchangeInfo{}, fmt.Errorf("engine: %s", body.Message)
	}

	info := catalogentity.ExchangeInfo{
		Fees:    make(map[string]catalogentity.Fees, len(body.Fees)),
		Filters: make(map[string]catalogentity.Filters, len(body.Filters)),
	}
	for symbol, f := range body.Fees {
		info.Fees[symbol] = catalogentity.Fees{Maker: f.Maker, Taker: f.Taker}
	}
	for symbol, f := range body.Filters {
		info.Filters[symbol] = catalogentity.Filters{
			BasePrecision:  f.BasePrecision,
			QuotePrecision: f.QuotePrecision,
			MinNotional:    f.MinNotional,
			Price:          catalogentity.NumberFilter{Min: f.Price.Min, Max: f.Price.Max, Step: f.Price.Step},
			Size:           catalogentity.NumberFilter{Min: f.Size.Min, Max: f.Size.Max, Step: f.Size.Step},
		}
	}
	return info, nil
}

// CandleIntervals は指定されたエクスチェンジが提供するローソク足の
// 時間間隔の一覧を取得します。
func (c *Client) CandleIntervals(ctx context.Context, exchange string) ([]string, error) {
	var body dto.CandleIntervalsResponse
	if err := c.post(ctx, "/candle_intervals", exchangeRequest{Exchange: exchange}, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("engine: %s", body.Message)
	}
	return body.Intervals, nil
}

type exchangeRequest struct {
	Exchange string `json:"exchange"`
}

// post は内部表現のボディをワイヤ規約(snake_case)へ書き換えて送信し、
// レスポンスを内部規約(camelCase)へ書き戻してからoutへデコードします。
// 配列要素は再帰的に処理され、プリミティブ値は変更されません。
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	// 内部表現 → 汎用ツリー → ワイヤ規約
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return err
	}
	payload, err := json.Marshal(keycase.SnakeKeys(tree))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("engine http %d", res.StatusCode)
	}

	// ワイヤ規約 → 内部規約 → 型付きDTO
	var wire any
	if err := json.NewDecoder(res.Body).Decode(&wire); err != nil {
		return err
	}
	normalized, err := json.Marshal(keycase.CamelKeys(wire))
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, out)
}
