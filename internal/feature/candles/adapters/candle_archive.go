package adapters

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"candle_gateway/internal/feature/candles/domain/entity"
	"candle_gateway/internal/feature/candles/usecase"
)

type candleArchive struct {
	db *gorm.DB
}

var _ usecase.CandleArchive = (*candleArchive)(nil)

func NewCandleArchive(db *gorm.DB) *candleArchive {
	return &candleArchive{db: db}
}

type CandleModel struct {
	ID       uint   `gorm:"primaryKey"`
	Exchange string `gorm:"size:32;not null;uniqueIndex:candle_exc_sym_int_time,priority:1"`
	Symbol   string `gorm:"size:32;not null;uniqueIndex:candle_exc_sym_int_time,priority:2"`
	Interval string `gorm:"size:16;not null;uniqueIndex:candle_exc_sym_int_time,priority:3"`
	Time     int64  `gorm:"not null;uniqueIndex:candle_exc_sym_int_time,priority:4"`

	Open   decimal.Decimal `gorm:"type:decimal(32,8);not null"`
	High   decimal.Decimal `gorm:"type:decimal(32,8);not null"`
	Low    decimal.Decimal `gorm:"type:decimal(32,8);not null"`
	Close  decimal.Decimal `gorm:"type:decimal(32,8);not null"`
	Volume decimal.Decimal `gorm:"type:decimal(32,8);not null"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(exchange, symbol, interval string, c entity.Candle) CandleModel {
	return CandleModel{
		Exchange: exchange,
		Symbol:   symbol,
		Interval: interval,
		Time:     c.Time,
		Open:     c.Open,
		High:     c.High,
		Low:      c.Low,
		Close:    c.Close,
		Volume:   c.Volume,
	}
}

func (r *candleArchive) UpsertBatch(ctx context.Context, exchange, interval string, result entity.Result) error {
	ms := make([]CandleModel, 0)
	for symbol, series := range result {
		for _, c := range series {
			ms = append(ms, toModel(exchange, symbol, interval, c))
		}
	}
	if len(ms) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exchange"}, {Name: "symbol"}, {Name: "interval"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

func (r *candleArchive) Find(ctx context.Context, exchange, symbol, interval string) (entity.Series, error) {
	var rows []CandleModel
	err := r.db.WithContext(ctx).
		Where(`exchange = ? AND symbol = ? AND "interval" = ?`, exchange, symbol, interval).
		Order(`"time" ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(entity.Series, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Candle{
			Time:   m.Time,
			Open:   m.Open,
			High:   m.High,
			Low:    m.Low,
			Close:  m.Close,
			Volume: m.Volume,
		})
	}
	return out, nil
}
