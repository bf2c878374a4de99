// Package engine provides a client for the backtest engine HTTP API.
package engine

import "time"

// Config holds configuration for the engine API client.
type Config struct {
	BaseURL string        // Base URL for the API (e.g., "http://localhost:3030")
	Timeout time.Duration // HTTP request timeout
}
