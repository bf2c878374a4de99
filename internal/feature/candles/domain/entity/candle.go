// Package entity defines the domain models for the candles feature.
package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Candle represents one OHLCV (Open, High, Low, Close, Volume) observation
// for a symbol at a specific time interval. Immutable once received.
type Candle struct {
	Time   int64           `json:"time"` // Interval start, exchange-native epoch milliseconds
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"` // Within interval
}

// Series is a sequence of candles for one symbol, ordered by ascending
// timestamp with no duplicates. The engine produces a series wholesale for a
// given (exchange, interval, symbol, start, end); it is never mutated in place.
type Series []Candle

// Validate reports the first ordering violation in the series. A series with
// out-of-order or duplicate timestamps must not enter the cache.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].Time <= s[i-1].Time {
			return fmt.Errorf("candle %d: time %d not after previous %d", i, s[i].Time, s[i-1].Time)
		}
	}
	return nil
}

// SeriesKey identifies one cached series. Equality is exact match on all six
// fields; ranges that overlap without being identical are distinct keys, and
// so are queries that differ only in candle type (heikin-ashi candles carry
// different OHLC values than regular ones over the same range).
type SeriesKey struct {
	Exchange string
	Interval string
	Type     string
	Symbol   string
	Start    string
	End      string
}

// Query is a logical candle request for a set of symbols over one
// (exchange, interval, start, end) range. Start and end are ISO-8601 dates or
// integer epoch values, passed through to the engine verbatim.
type Query struct {
	Exchange string   `json:"exchange"`
	Interval string   `json:"interval"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Type     string   `json:"type"` // Candle type, e.g. "regular" (engine default)
	Symbols  []string `json:"symbols"`
}

// Key derives the cache key for one symbol of the query. Callers must
// normalize an empty Type to its default first so that an omitted type and
// an explicit default share one key.
func (q Query) Key(symbol string) SeriesKey {
	return SeriesKey{
		Exchange: q.Exchange,
		Interval: q.Interval,
		Type:     q.Type,
		Symbol:   symbol,
		Start:    q.Start,
		End:      q.End,
	}
}

// Result maps each requested symbol to its series. A complete result covers
// exactly the symbols of the originating query.
type Result map[string]Series
