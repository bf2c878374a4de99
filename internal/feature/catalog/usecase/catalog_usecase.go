// Package usecase はエクスチェンジカタログ取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"sync"

	"candle_gateway/internal/feature/catalog/domain/entity"
)

// CatalogProvider はエクスチェンジ情報を提供する外部APIを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CatalogProvider interface {
	ExchangeInfo(ctx context.Context, exchange string) (entity.ExchangeInfo, error)
	CandleIntervals(ctx context.Context, exchange string) ([]string, error)
}

// CatalogUsecase はエクスチェンジごとの情報をセッション中キャッシュ付きで
// 返します。手数料・フィルタ・時間間隔の一覧はセッション内で変化しない
// 前提のため、エクスチェンジごとに最初の1回だけ取得します。
type CatalogUsecase struct {
	provider CatalogProvider

	mu        sync.Mutex
	info      map[string]entity.ExchangeInfo
	intervals map[string][]string
}

// NewCatalogUsecase はCatalogUsecaseの新しいインスタンスを生成します。
func NewCatalogUsecase(provider CatalogProvider) *CatalogUsecase {
	return &CatalogUsecase{
		provider:  provider,
		info:      make(map[string]entity.ExchangeInfo),
		intervals: make(map[string][]string),
	}
}

// GetExchangeInfo は指定されたエクスチェンジの手数料とフィルタ情報を返します。
func (cu *CatalogUsecase) GetExchangeInfo(ctx context.Context, exchange string) (entity.ExchangeInfo, error) {
	cu.mu.Lock()
	cached, ok := cu.info[exchange]
	cu.mu.Unlock()
	if ok {
		return cached, nil
	}

	info, err := cu.provider.ExchangeInfo(ctx, exchange)
	if err != nil {
		return entity.ExchangeInfo{}, err
	}

	cu.mu.Lock()
	cu.info[exchange] = info
	cu.mu.Unlock()
	return info, nil
}

// GetCandleIntervals は指定されたエクスチェンジが提供する時間間隔の一覧を返します。
func (cu *CatalogUsecase) GetCandleIntervals(ctx context.Context, exchange string) ([]string, error) {
	cu.mu.Lock()
	cached, ok := cu.intervals[exchange]
	cu.mu.Unlock()
	if ok {
		return cached, nil
	}

	intervals, err := cu.provider.CandleIntervals(ctx, exchange)
	if err != nil {
		return nil, err
	}

	cu.mu.Lock()
	cu.intervals[exchange] = intervals
	cu.mu.Unlock()
	return intervals, nil
}
