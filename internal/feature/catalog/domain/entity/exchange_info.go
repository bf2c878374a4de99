// Package entity defines the domain models for the catalog feature.
package entity

import "github.com/shopspring/decimal"

// AllKey indexes the exchange-wide default entry in fee and filter maps.
const AllKey = "__all__"

// Fees holds maker/taker commission rates for one symbol.
type Fees struct {
	Maker decimal.Decimal `json:"maker"`
	Taker decimal.Decimal `json:"taker"`
}

// NumberFilter is a min/max/step constraint on order prices or sizes.
type NumberFilter struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Step decimal.Decimal `json:"step"`
}

// Filters holds the order constraints for one symbol.
type Filters struct {
	BasePrecision  int             `json:"basePrecision"`
	QuotePrecision int             `json:"quotePrecision"`
	MinNotional    decimal.Decimal `json:"minNotional"`
	Price          NumberFilter    `json:"price"`
	Size           NumberFilter    `json:"size"`
}

// ExchangeInfo describes the tradable surface of one exchange: fees and
// filters keyed by symbol, with AllKey carrying the default.
type ExchangeInfo struct {
	Fees    map[string]Fees    `json:"fees"`
	Filters map[string]Filters `json:"filters"`
}
