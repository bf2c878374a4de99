package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults は環境変数未設定時のデフォルト値を検証します。
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "candle-gateway", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "http://localhost:3030", cfg.Engine.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"1d"}, cfg.Warm.Intervals)
}

// TestLoad_Environment は環境変数による上書きを検証します。
func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ENGINE_BASE_URL", "http://engine:3030")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("WARM_SYMBOLS", "eth-btc,xmr-btc,ada-btc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "http://engine:3030", cfg.Engine.BaseURL)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, []string{"eth-btc", "xmr-btc", "ada-btc"}, cfg.Warm.Symbols)
}
