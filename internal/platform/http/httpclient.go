package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はエンジンAPI呼び出し用に設定されたHTTPクライアントを作成します。
//
// バッチフェッチは1リクエストで複数シンボル分のシリーズを運ぶため、接続の
// 確立失敗は早めに諦め（Dialer.Timeout）、確立済みの接続はキープアライブで
// 再利用します。リクエスト全体のタイムアウトは設定値（ENGINE_TIMEOUT）を
// そのまま使います。
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
