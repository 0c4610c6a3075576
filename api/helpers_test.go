package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workdash/config"
	"workdash/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:       2 * time.Second,
		MaxRetries:           0,
		RetryInitialInterval: time.Millisecond,
		RequireSessionCookie: true,
	}
}

func newTestClient(cfg *config.Config) *SessionClient {
	return NewSessionClient(cfg, WithLogger(utils.NewLogger("error", "text", io.Discard)))
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// hijackAndWrite は接続を乗っ取って生のバイト列を書き込み、切断します
func hijackAndWrite(w http.ResponseWriter, raw string) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("hijacking not supported")
	}
	conn, buf, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	if raw != "" {
		_, _ = buf.WriteString(raw)
		_ = buf.Flush()
	}
	_ = conn.Close()
}
