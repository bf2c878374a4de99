// Package dto defines data transfer objects for the engine API. Field names
// follow the internal camelCase convention; the client rewrites keys to the
// wire's snake_case on the way out and back on the way in.
package dto

import "github.com/shopspring/decimal"

// BatchCandlesRequest is the body of the /candles endpoint: one batched
// request for every symbol that has to be fetched.
type BatchCandlesRequest struct {
	Exchange   string   `json:"exchange"`
	Interval   string   `json:"interval"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	CandleType string   `json:"candleType"`
	Symbols    []string `json:"symbols"`
}

// CandleValue is one OHLCV row as the engine serializes it.
type CandleValue struct {
	Time   int64           `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// BatchCandlesResponse maps each requested symbol to its ordered series.
// Symbols the engine could not serve are simply absent from the map.
type BatchCandlesResponse struct {
	Status  string                   `json:"status"`
	Message string                   `json:"message,omitempty"`
	Candles map[string][]CandleValue `json:"candles"`
}
