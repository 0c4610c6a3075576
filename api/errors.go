package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

// NetworkErrorKind は通信エラーの種別です
type NetworkErrorKind int

const (
	// ConnectionFailed は接続拒否・名前解決失敗・TLS失敗など
	ConnectionFailed NetworkErrorKind = iota
	// Timeout はリクエストのタイムアウト
	Timeout
	// InvalidResponse は応答が読み取れない・不正な形式
	InvalidResponse
)

func (k NetworkErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case InvalidResponse:
		return "invalid_response"
	default:
		return "connection_failed"
	}
}

var (
	// ErrNotArray は応答本文がJSON配列ではないことを表します
	ErrNotArray = errors.New("応答本文がJSON配列ではありません")
	// ErrMissingID は要素にIDが無いことを表します
	ErrMissingID = errors.New("IDがありません")
	// ErrDuplicateID は同じIDが複数回現れたことを表します
	ErrDuplicateID = errors.New("IDが重複しています")
	// ErrMissingField は必須フィールドが無い (または null) ことを表します
	ErrMissingField = errors.New("必須フィールドがありません")
	// ErrKeyCase はキーの大文字小文字が定義と異なることを表します
	ErrKeyCase = errors.New("キーの大文字小文字が異なります")
)

// NetworkError は通信レベルの失敗です。再試行の対象になります
type NetworkError struct {
	Kind NetworkErrorKind
	URL  string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("通信エラー (%s) %s: %v", e.Kind, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError は2xxが必要な場面での2xx以外の応答です
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("HTTPエラー %d %s: %s", e.StatusCode, e.URL, body)
}

// DecodeError はJSONの解析やスキーマ不一致です。Index は問題の要素位置 (配列自体の場合は -1)
type DecodeError struct {
	Index int
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("レスポンス解析エラー: %v", e.Cause)
	}
	return fmt.Sprintf("要素 %d のデコードに失敗しました: %v", e.Index, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// AuthError はサーバーが認証情報を明示的に拒否したことを表します。再試行しません
type AuthError struct {
	StatusCode int
	Reason     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("認証失敗 (HTTP %d): %s", e.StatusCode, e.Reason)
}

// IsRetryable は自動再試行してよいエラーかを返します
func IsRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// classifyTransportError は http.Client.Do のエラーを分類します
func classifyTransportError(url string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("リクエストがキャンセルされました: %w", err)
	}

	kind := ConnectionFailed
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		kind = Timeout
	case errors.Is(err, io.ErrUnexpectedEOF), strings.Contains(err.Error(), "malformed HTTP"):
		kind = InvalidResponse
	}

	return &NetworkError{Kind: kind, URL: url, Err: err}
}
