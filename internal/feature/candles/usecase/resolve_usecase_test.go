package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candle_gateway/internal/feature/candles/domain/entity"
	"candle_gateway/internal/feature/candles/usecase"
)

// stubCache はCandleCacheインターフェースのインメモリ実装です。
type stubCache struct {
	mu      sync.Mutex
	entries map[entity.SeriesKey]entity.Series
	puts    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[entity.SeriesKey]entity.Series)}
}

func (c *stubCache) Get(_ context.Context, key entity.SeriesKey) (entity.Series, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	return s, ok
}

func (c *stubCache) Put(_ context.Context, key entity.SeriesKey, series entity.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = series
	c.puts++
}

// stubProvider はCandleProviderインターフェースのモック実装です。
// 呼び出し回数と受け取ったクエリを記録します。
type stubProvider struct {
	mu      sync.Mutex
	calls   int
	queries []entity.Query
	fn      func(q entity.Query) (map[string]entity.Series, error)
}

func (p *stubProvider) BatchCandles(_ context.Context, q entity.Query) (map[string]entity.Series, error) {
	p.mu.Lock()
	p.calls++
	p.queries = append(p.queries, q)
	fn := p.fn
	p.mu.Unlock()
	return fn(q)
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// seriesOf は指定されたタイムスタンプ列からテスト用シリーズを生成します。
func seriesOf(times ...int64) entity.Series {
	s := make(entity.Series, 0, len(times))
	for _, tm := range times {
		s = append(s, entity.Candle{
			Time:   tm,
			Open:   decimal.RequireFromString("0.026"),
			High:   decimal.RequireFromString("0.027"),
			Low:    decimal.RequireFromString("0.025"),
			Close:  decimal.RequireFromString("0.0265"),
			Volume: decimal.RequireFromString("1200"),
		})
	}
	return s
}

// allSymbolsProvider は要求された全シンボルに同一のシリーズを返すプロバイダです。
func allSymbolsProvider(series entity.Series) *stubProvider {
	return &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		out := make(map[string]entity.Series, len(q.Symbols))
		for _, sym := range q.Symbols {
			out[sym] = series
		}
		return out, nil
	}}
}

func testQuery(symbols ...string) entity.Query {
	return entity.Query{
		Exchange: "binance",
		Interval: "1d",
		Start:    "2020-01-01",
		End:      "2020-02-01",
		Symbols:  symbols,
	}
}

// TestResolveUsecase_CacheHitElidesFetch は同一クエリの2回目の解決が
// プロバイダを呼び出さないことを検証します。
func TestResolveUsecase_CacheHitElidesFetch(t *testing.T) {
	t.Parallel()

	provider := allSymbolsProvider(seriesOf(1, 2, 3))
	u := usecase.NewResolveUsecase(newStubCache(), provider)
	q := testQuery("eth-btc", "ltc-btc")

	first, err := u.Resolve(context.Background(), q)
	require.NoError(t, err)
	second, err := u.Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
}

// TestResolveUsecase_PartialMissFetchesOnlyMisses は一部キャッシュ済みの
// クエリでミス分のみが1回のバッチで取得されることを検証します。
func TestResolveUsecase_PartialMissFetchesOnlyMisses(t *testing.T) {
	t.Parallel()

	provider := allSymbolsProvider(seriesOf(1, 2))
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	_, err := u.Resolve(context.Background(), testQuery("eth-btc"))
	require.NoError(t, err)

	result, err := u.Resolve(context.Background(), testQuery("eth-btc", "ltc-btc", "xmr-btc"))
	require.NoError(t, err)

	// 2回目のバッチにはミスした2シンボルのみが含まれます
	require.Equal(t, 2, provider.callCount())
	provider.mu.Lock()
	secondBatch := provider.queries[1].Symbols
	provider.mu.Unlock()
	assert.Equal(t, []string{"ltc-btc", "xmr-btc"}, secondBatch)

	// 結果のキー集合は要求したシンボル集合と一致します
	assert.Len(t, result, 3)
	for _, sym := range []string{"eth-btc", "ltc-btc", "xmr-btc"} {
		assert.Contains(t, result, sym)
	}
}

// TestResolveUsecase_KeyExactness は時間範囲の一部でも異なるクエリが
// キャッシュを共有しないことを検証します。
func TestResolveUsecase_KeyExactness(t *testing.T) {
	t.Parallel()

	provider := allSymbolsProvider(seriesOf(1))
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	q1 := testQuery("eth-btc")
	q2 := testQuery("eth-btc")
	q2.End = "2020-02-02" // 1日だけ広い範囲

	_, err := u.Resolve(context.Background(), q1)
	require.NoError(t, err)
	_, err = u.Resolve(context.Background(), q2)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.callCount())
}

// TestResolveUsecase_TypeDistinctCache はローソク足種別のみ異なるクエリが
// キャッシュを共有せず、それぞれの種別のシリーズを返すことを検証します。
// 同一範囲でもheikin-ashiはregularとは別のOHLC値を持ちます。
func TestResolveUsecase_TypeDistinctCache(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		series := seriesOf(1)
		if q.Type == "heikin-ashi" {
			series[0].Open = decimal.RequireFromString("0.0255")
		}
		return map[string]entity.Series{"eth-btc": series}, nil
	}}
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	regular := testQuery("eth-btc")
	regular.Type = "regular"
	ha := testQuery("eth-btc")
	ha.Type = "heikin-ashi"

	first, err := u.Resolve(context.Background(), regular)
	require.NoError(t, err)
	second, err := u.Resolve(context.Background(), ha)
	require.NoError(t, err)

	// 種別ごとに1回ずつフェッチされ、結果は混ざりません
	assert.Equal(t, 2, provider.callCount())
	assert.True(t, first["eth-btc"][0].Open.Equal(decimal.RequireFromString("0.026")))
	assert.True(t, second["eth-btc"][0].Open.Equal(decimal.RequireFromString("0.0255")))

	// 種別未指定はデフォルト種別のキャッシュを共有します
	untyped := testQuery("eth-btc")
	third, err := u.Resolve(context.Background(), untyped)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount())
	assert.Equal(t, first, third)
}

// TestResolveUsecase_DuplicateSymbols は重複シンボルが1回だけ
// フェッチされ、結果に1エントリだけ現れることを検証します。
func TestResolveUsecase_DuplicateSymbols(t *testing.T) {
	t.Parallel()

	provider := allSymbolsProvider(seriesOf(1))
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	result, err := u.Resolve(context.Background(), testQuery("eth-btc", "eth-btc"))
	require.NoError(t, err)

	require.Equal(t, 1, provider.callCount())
	provider.mu.Lock()
	batch := provider.queries[0].Symbols
	provider.mu.Unlock()
	assert.Equal(t, []string{"eth-btc"}, batch)
	assert.Len(t, result, 1)
}

// TestResolveUsecase_DefaultCandleType は種別未指定のクエリにデフォルト値が
// 補完されてプロバイダへ渡ることを検証します。
func TestResolveUsecase_DefaultCandleType(t *testing.T) {
	t.Parallel()

	provider := allSymbolsProvider(seriesOf(1))
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	_, err := u.Resolve(context.Background(), testQuery("eth-btc"))
	require.NoError(t, err)

	provider.mu.Lock()
	got := provider.queries[0].Type
	provider.mu.Unlock()
	assert.Equal(t, usecase.DefaultCandleType, got)
}

// TestResolveUsecase_InvalidQuery は必須フィールド欠落のクエリが
// ErrInvalidQueryで拒否され、プロバイダが呼ばれないことを検証します。
func TestResolveUsecase_InvalidQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(q *entity.Query)
	}{
		{"missing exchange", func(q *entity.Query) { q.Exchange = "" }},
		{"missing interval", func(q *entity.Query) { q.Interval = "" }},
		{"missing start", func(q *entity.Query) { q.Start = "" }},
		{"missing end", func(q *entity.Query) { q.End = "" }},
		{"empty symbols", func(q *entity.Query) { q.Symbols = nil }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
				t.Error("provider should not be called")
				return nil, nil
			}}
			u := usecase.NewResolveUsecase(newStubCache(), provider)

			q := testQuery("eth-btc")
			tt.mutate(&q)

			_, err := u.Resolve(context.Background(), q)
			assert.ErrorIs(t, err, usecase.ErrInvalidQuery)
		})
	}
}

// TestResolveUsecase_TransportFailure は取得失敗時に何もキャッシュされず、
// 次回の解決で再度フェッチされることを検証します。
func TestResolveUsecase_TransportFailure(t *testing.T) {
	t.Parallel()

	cache := newStubCache()
	provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		return nil, errors.New("connection refused")
	}}
	u := usecase.NewResolveUsecase(cache, provider)

	_, err := u.Resolve(context.Background(), testQuery("eth-btc"))
	require.Error(t, err)
	assert.Equal(t, 0, cache.puts)

	// 失敗は記憶されず、次の解決は再度フェッチします
	provider.mu.Lock()
	provider.fn = func(q entity.Query) (map[string]entity.Series, error) {
		out := map[string]entity.Series{"eth-btc": seriesOf(1)}
		return out, nil
	}
	provider.mu.Unlock()

	result, err := u.Resolve(context.Background(), testQuery("eth-btc"))
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 2, provider.callCount())
}

// TestResolveUsecase_PartialResponse はレスポンスに欠けたシンボルが
// ErrSymbolMissingになり、成功分はキャッシュされることを検証します。
func TestResolveUsecase_PartialResponse(t *testing.T) {
	t.Parallel()

	cache := newStubCache()
	provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		// ltc-btcを黙って省略したレスポンス
		return map[string]entity.Series{"eth-btc": seriesOf(1, 2)}, nil
	}}
	u := usecase.NewResolveUsecase(cache, provider)

	_, err := u.Resolve(context.Background(), testQuery("eth-btc", "ltc-btc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrSymbolMissing)

	// 成功したeth-btcはキャッシュ済みのため、単独クエリはフェッチ不要です
	result, err := u.Resolve(context.Background(), testQuery("eth-btc"))
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 1, provider.callCount())
}

// TestResolveUsecase_MalformedSeries はタイムスタンプが昇順でない
// シリーズがErrMalformedSeriesで拒否され、キャッシュされないことを検証します。
func TestResolveUsecase_MalformedSeries(t *testing.T) {
	t.Parallel()

	cache := newStubCache()
	provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		return map[string]entity.Series{"eth-btc": seriesOf(2, 1)}, nil
	}}
	u := usecase.NewResolveUsecase(cache, provider)

	_, err := u.Resolve(context.Background(), testQuery("eth-btc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrMalformedSeries)
	assert.Equal(t, 0, cache.puts)
}

// TestResolveUsecase_InflightDedup は同一キーの並行解決が
// プロバイダへの重複リクエストを発行しないことを検証します。
func TestResolveUsecase_InflightDedup(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		close(started)
		<-release
		out := make(map[string]entity.Series, len(q.Symbols))
		for _, sym := range q.Symbols {
			out[sym] = seriesOf(1, 2)
		}
		return out, nil
	}}
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	var wg sync.WaitGroup
	results := make([]entity.Result, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = u.Resolve(context.Background(), testQuery("eth-btc"))
	}()

	// 1本目のフェッチ開始を待ってから2本目を発行します
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = u.Resolve(context.Background(), testQuery("eth-btc"))
	}()

	// 2本目が進行中テーブルに登録されるまで少し待ってから解放します
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, results[0], results[1])
}

// TestResolveUsecase_WaiterCancellation は進行中フェッチを待つ側が
// コンテキストキャンセルで抜けられることを検証します。
func TestResolveUsecase_WaiterCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	provider := &stubProvider{fn: func(q entity.Query) (map[string]entity.Series, error) {
		close(started)
		<-release
		return map[string]entity.Series{"eth-btc": seriesOf(1)}, nil
	}}
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = u.Resolve(context.Background(), testQuery("eth-btc"))
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	waiterErr := make(chan error, 1)
	go func() {
		_, err := u.Resolve(ctx, testQuery("eth-btc"))
		waiterErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-waiterErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return after cancellation")
	}

	close(release)
	<-done
}

// TestResolveUsecase_EndToEnd はバックテストセッションの典型的な流れを
// まとめて検証します。
func TestResolveUsecase_EndToEnd(t *testing.T) {
	t.Parallel()

	provider := allSymbolsProvider(seriesOf(1577836800000, 1577923200000))
	u := usecase.NewResolveUsecase(newStubCache(), provider)

	q := entity.Query{
		Exchange: "binance",
		Interval: "1d",
		Start:    "2020-01-01",
		End:      "2020-02-01",
		Symbols:  []string{"eth-btc", "ltc-btc"},
	}

	// 初回は1回のバッチで両シンボルを取得します
	result, err := u.Resolve(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 1, provider.callCount())

	// 同一クエリの再実行はネットワークに触れません
	again, err := u.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, result, again)
	assert.Equal(t, 1, provider.callCount())

	// シンボルを1つ追加すると追加分のみフェッチされます
	q.Symbols = append(q.Symbols, "xmr-btc")
	widened, err := u.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, widened, 3)
	require.Equal(t, 2, provider.callCount())
	provider.mu.Lock()
	lastBatch := provider.queries[1].Symbols
	provider.mu.Unlock()
	assert.Equal(t, []string{"xmr-btc"}, lastBatch)
}
