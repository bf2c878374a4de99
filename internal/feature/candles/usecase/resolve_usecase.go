// Package usecase はローソク足データ取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"candle_gateway/internal/feature/candles/domain/entity"
)

// DefaultCandleType はクエリで未指定の場合に使用するローソク足種別です。
const DefaultCandleType = "regular"

// CandleCache はセッション中のキー→シリーズ検索を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleCache interface {
	// Get は完全一致キーの純粋な検索です。副作用を持たず、失敗しません。
	Get(ctx context.Context, key entity.SeriesKey) (entity.Series, bool)
	// Put は無条件の上書きです。同一キー・同一シリーズで2回呼んでも
	// 以降のGetの結果は変わりません。
	Put(ctx context.Context, key entity.SeriesKey, series entity.Series)
}

// CandleProvider は外部データプロバイダ（バックテストエンジンAPI）を抽象化します。
type CandleProvider interface {
	// BatchCandles は1回のバッチリクエストでクエリ内の全シンボルの
	// シリーズを取得し、シンボル→シリーズのマッピングを返します。
	BatchCandles(ctx context.Context, q entity.Query) (map[string]entity.Series, error)
}

// flight は進行中のフェッチ1件を表します。done のクローズ後に
// series / err のどちらかが確定しています。
type flight struct {
	done   chan struct{}
	series entity.Series
	err    error
}

// ResolveUsecase は論理クエリを最小限のネットワーク呼び出しで解決します。
// シンボルごとにキャッシュを確認し、不足分のみを1回のバッチリクエストで
// 取得してキャッシュへ書き戻します。同一キーのフェッチが既に進行中の場合は
// 重複リクエストを発行せず、その完了を待ちます。
type ResolveUsecase struct {
	cache    CandleCache
	provider CandleProvider

	mu       sync.Mutex
	inflight map[entity.SeriesKey]*flight
}

// NewResolveUsecase はResolveUsecaseの新しいインスタンスを生成します。
// キャッシュは明示的な依存として注入します。セッションにつき1つの論理
// キャッシュを全呼び出し元で共有する構成を想定しています。
func NewResolveUsecase(cache CandleCache, provider CandleProvider) *ResolveUsecase {
	return &ResolveUsecase{
		cache:    cache,
		provider: provider,
		inflight: make(map[entity.SeriesKey]*flight),
	}
}

// Resolve はクエリ内の全シンボルのシリーズを返します。返されるResultの
// キー集合は要求したシンボル集合と正確に一致します。一部のシンボルの
// 取得に失敗した場合、成功したシンボルのキャッシュ書き込みは行った上で
// 呼び出し全体のエラーを返します。
func (u *ResolveUsecase) Resolve(ctx context.Context, q entity.Query) (entity.Result, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	if q.Type == "" {
		q.Type = DefaultCandleType
	}

	result := make(entity.Result, len(q.Symbols))

	// キャッシュヒットの判定。ヒットしたシリーズはそのまま返却に使います。
	seen := make(map[string]struct{}, len(q.Symbols))
	var misses []string
	for _, sym := range q.Symbols {
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		if series, ok := u.cache.Get(ctx, q.Key(sym)); ok {
			result[sym] = series
			continue
		}
		misses = append(misses, sym)
	}

	if len(misses) == 0 {
		return result, nil
	}

	// ミス分を「このコールがフェッチする分」と「他のコールのフェッチを
	// 待つ分」に振り分けます。進行中テーブルはキー単位です。
	owned := make(map[string]*flight)
	waits := make(map[string]*flight)
	u.mu.Lock()
	for _, sym := range misses {
		key := q.Key(sym)
		if f, ok := u.inflight[key]; ok {
			waits[sym] = f
			continue
		}
		f := &flight{done: make(chan struct{})}
		u.inflight[key] = f
		owned[sym] = f
	}
	u.mu.Unlock()

	var failures []error

	if len(owned) > 0 {
		sub := q
		sub.Symbols = make([]string, 0, len(owned))
		for _, sym := range misses {
			if _, ok := owned[sym]; ok {
				sub.Symbols = append(sub.Symbols, sym)
			}
		}

		fetched, err := u.provider.BatchCandles(ctx, sub)
		if err != nil {
			// トランスポート失敗はコール全体の失敗です。キャッシュには
			// 何も書き込まず、待機中のコールにもエラーを伝播します。
			for sym, f := range owned {
				u.finish(q.Key(sym), f, nil, err)
			}
			return nil, fmt.Errorf("batch candles fetch: %w", err)
		}

		for _, sym := range sub.Symbols {
			f := owned[sym]
			series, ok := fetched[sym]
			if !ok {
				ferr := fmt.Errorf("%w: %s", ErrSymbolMissing, sym)
				u.finish(q.Key(sym), f, nil, ferr)
				failures = append(failures, ferr)
				continue
			}
			if verr := series.Validate(); verr != nil {
				ferr := fmt.Errorf("%w: %s: %v", ErrMalformedSeries, sym, verr)
				u.finish(q.Key(sym), f, nil, ferr)
				failures = append(failures, ferr)
				continue
			}
			// プロバイダが確定した完全なシリーズのみ書き込みます。
			u.cache.Put(ctx, q.Key(sym), series)
			u.finish(q.Key(sym), f, series, nil)
			result[sym] = series
		}
	}

	for sym, f := range waits {
		select {
		case <-f.done:
			if f.err != nil {
				failures = append(failures, fmt.Errorf("%s: %w", sym, f.err))
				continue
			}
			result[sym] = f.series
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(failures) > 0 {
		slog.Warn("candle query partially failed",
			"exchange", q.Exchange, "interval", q.Interval, "failed", len(failures))
		return nil, errors.Join(failures...)
	}
	return result, nil
}

// finish はフェッチ結果を確定し、進行中テーブルからキーを取り除きます。
// done のクローズは必ずテーブルからの削除後に行います。
func (u *ResolveUsecase) finish(key entity.SeriesKey, f *flight, series entity.Series, err error) {
	f.series, f.err = series, err
	u.mu.Lock()
	delete(u.inflight, key)
	u.mu.Unlock()
	close(f.done)
}

// validateQuery は必須フィールドの存在を確認します。
func validateQuery(q entity.Query) error {
	switch {
	case q.Exchange == "":
		return fmt.Errorf("%w: exchange is required", ErrInvalidQuery)
	case q.Interval == "":
		return fmt.Errorf("%w: interval is required", ErrInvalidQuery)
	case q.Start == "" || q.End == "":
		return fmt.Errorf("%w: start and end are required", ErrInvalidQuery)
	case len(q.Symbols) == 0:
		return fmt.Errorf("%w: at least one symbol is required", ErrInvalidQuery)
	}
	return nil
}
