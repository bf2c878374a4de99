package dto

import "github.com/shopspring/decimal"

// FeesValue holds maker/taker commission rates for one symbol. The "__all__"
// key carries the exchange-wide default.
type FeesValue struct {
	Maker decimal.Decimal `json:"maker"`
	Taker decimal.Decimal `json:"taker"`
}

// NumberFilterValue is a min/max/step constraint on prices or sizes.
type NumberFilterValue struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Step decimal.Decimal `json:"step"`
}

// FiltersValue holds per-symbol order constraints.
type FiltersValue struct {
	BasePrecision  int               `json:"basePrecision"`
	QuotePrecision int               `json:"quotePrecision"`
	MinNotional    decimal.Decimal   `json:"minNotional"`
	Price          NumberFilterValue `json:"price"`
	Size           NumberFilterValue `json:"size"`
}

// ExchangeInfoResponse is the body of the /exchange_info endpoint.
type ExchangeInfoResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message,omitempty"`
	Fees    map[string]FeesValue    `json:"fees"`
	Filters map[string]FiltersValue `json:"filters"`
}

// CandleIntervalsResponse is the body of the /candle_intervals endpoint.
type CandleIntervalsResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message,omitempty"`
	Intervals []string `json:"intervals"`
}
