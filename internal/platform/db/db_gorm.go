// Package db はローソク足アーカイブ用のデータベース接続を管理します。
package db

import (
	"fmt"
	"log/slog"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"candle_gateway/internal/feature/candles/adapters"
	"candle_gateway/internal/platform/config"
)

// Opener はDSNからgormコネクションを開く関数です。テストで差し替えられる
// ようにOpenDBから分離しています。
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor は設定されたドライバに対応するOpenerを返します。
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case "sqlite":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gsqlite.Open(dsn), &gorm.Config{})
		}, nil
	case "postgres":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", driver)
	}
}

// ConnectWithRetry はタイムアウトまで接続を再試行します。
// コンテナ起動直後などDBの準備が整っていない状況を吸収します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(3 * time.Second)
	}
}

// OpenDB は設定に従ってアーカイブDBを開き、必要であればマイグレーションを
// 実行します。
func OpenDB(cfg config.DBConfig) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(cfg.DSN, 60*time.Second, opener)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.AutoMigrate(&adapters.CandleModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return db, nil
}
