package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"candle_gateway/internal/feature/candles/domain/entity"
	"candle_gateway/internal/shared/ratelimiter"
)

// warmConcurrency はウォームアップ時のエンジンAPIへの同時クエリ数です。
const warmConcurrency = 2

// CandleResolver はクエリ解決層を抽象化します。
type CandleResolver interface {
	Resolve(ctx context.Context, q entity.Query) (entity.Result, error)
}

// CandleArchive は解決済みシリーズの永続化層を抽象化します。
type CandleArchive interface {
	UpsertBatch(ctx context.Context, exchange, interval string, result entity.Result) error
}

// WarmUsecase は設定されたクエリ群を事前に解決し、結果をアーカイブへ
// 永続化するユースケースです。セッションキャッシュはこの過程で温まりますが、
// アーカイブはキャッシュ契約から独立した別の永続化レイヤーです。
type WarmUsecase struct {
	resolver    CandleResolver
	archive     CandleArchive // nilの場合はキャッシュウォームのみ行う
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewWarmUsecase は新しい WarmUsecase を作成します。
func NewWarmUsecase(resolver CandleResolver, archive CandleArchive, rateLimiter ratelimiter.RateLimiterInterface) *WarmUsecase {
	return &WarmUsecase{resolver: resolver, archive: archive, rateLimiter: rateLimiter}
}

// WarmAll は全クエリを解決してアーカイブへ永続化します。エンジンAPIの
// レートリミットを考慮してリクエスト間の待機を挟みます。1つのクエリで
// エラーが発生しても処理を止めずにログへ出力し、残りを続行します。
func (wu *WarmUsecase) WarmAll(ctx context.Context, queries []entity.Query) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for _, q := range queries {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			wu.rateLimiter.WaitIfNeeded()

			result, err := wu.resolver.Resolve(ctx, q)
			if err != nil {
				// 次のクエリへ進む
				slog.Error("failed to warm candle query",
					"exchange", q.Exchange, "interval", q.Interval, "symbols", q.Symbols, "error", err)
				return nil
			}
			if wu.archive == nil {
				return nil
			}
			if err := wu.archive.UpsertBatch(ctx, q.Exchange, q.Interval, result); err != nil {
				slog.Error("failed to archive candles",
					"exchange", q.Exchange, "interval", q.Interval, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
