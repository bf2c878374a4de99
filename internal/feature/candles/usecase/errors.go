package usecase

import "errors"

// クエリ解決で発生するエラー値です。呼び出し側は errors.Is で判別します。
var (
	// ErrInvalidQuery はクエリの必須フィールドが欠けている場合に返されます。
	ErrInvalidQuery = errors.New("invalid candle query")
	// ErrSymbolMissing はプロバイダのレスポンスに要求したシンボルが
	// 含まれていなかった場合に返されます（明示的なエラーなしの欠落）。
	ErrSymbolMissing = errors.New("symbol absent from provider response")
	// ErrMalformedSeries はタイムスタンプの順序違反や重複を含むシリーズを
	// プロバイダが返した場合に返されます。該当シリーズはキャッシュされません。
	ErrMalformedSeries = errors.New("malformed candle series")
)
