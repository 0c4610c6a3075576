package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"workdash/config"
	"workdash/models"
	"workdash/utils"
)

// SessionClient はクッキー認証のセッションを保持し、リモートシステムとのやり取りを処理します。
// 1インスタンスにつき1セッションです
type SessionClient struct {
	client  *http.Client
	cookies *CookieStore
	logger  *slog.Logger

	timeout       time.Duration
	maxRetries    int
	retryInterval time.Duration
	requireCookie bool

	mu            sync.RWMutex
	authenticated bool
}

// Option は SessionClient の設定を変更します
type Option func(*SessionClient)

// WithHTTPClient は使用する http.Client を差し替えます (クッキージャーは設定しないこと)
func WithHTTPClient(client *http.Client) Option {
	return func(c *SessionClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger はロガーを差し替えます
func WithLogger(logger *slog.Logger) Option {
	return func(c *SessionClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewSessionClient は新しいセッションクライアントを作成します
func NewSessionClient(cfg *config.Config, opts ...Option) *SessionClient {
	c := &SessionClient{
		client:        &http.Client{},
		cookies:       NewCookieStore(),
		logger:        utils.Logger(),
		timeout:       cfg.RequestTimeout,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInitialInterval,
		requireCookie: cfg.RequireSessionCookie,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cookies はセッションのクッキーストアを返します
func (c *SessionClient) Cookies() *CookieStore {
	return c.cookies
}

// State は現在のセッション状態を返します。クッキーが消去されると未認証に戻ります
func (c *SessionClient) State() models.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.authenticated {
		return models.Anonymous
	}
	if c.requireCookie && c.cookies.Len() == 0 {
		return models.Anonymous
	}
	return models.Authenticated
}

// Logout はクッキーを消去して未認証状態に戻します
func (c *SessionClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cookies.Clear()
	c.authenticated = false
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginOutcome struct {
	statusCode int
	cookies    int
	accepted   bool
	reason     string
}

// Login はログインを行い、応答のクッキーを保存します。
// 認証情報が拒否された場合は (false, nil) を返し、通信エラーの場合のみ error を返します。
// 拒否時はクッキーも状態も変更しないため、認証済みのセッションはそのまま残ります
func (c *SessionClient) Login(ctx context.Context, url, username, password string) (bool, error) {
	outcome, err := c.login(ctx, url, username, password)
	if err != nil {
		return false, err
	}
	return outcome.accepted, nil
}

// Authenticate は Login と同じ処理を行い、拒否された場合は *AuthError を返します
func (c *SessionClient) Authenticate(ctx context.Context, url, username, password string) error {
	outcome, err := c.login(ctx, url, username, password)
	if err != nil {
		return err
	}
	if !outcome.accepted {
		return &AuthError{StatusCode: outcome.statusCode, Reason: outcome.reason}
	}
	return nil
}

func (c *SessionClient) login(ctx context.Context, url, username, password string) (loginOutcome, error) {
	payloadBytes, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return loginOutcome{}, fmt.Errorf("JSONエンコードエラー: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, url, func(req *http.Request) {
		req.Header.Set("Content-Type", "application/json")
	}, payloadBytes)
	if err != nil {
		return loginOutcome{}, err
	}

	outcome := loginOutcome{statusCode: resp.statusCode}
	logger := c.logger.With("url", url, "status", resp.statusCode)

	if !isSuccess(resp.statusCode) {
		outcome.reason = "認証情報が拒否されました"
		logger.Warn("ログイン失敗")
		return outcome, nil
	}

	received := resp.cookies()
	outcome.cookies = len(received)
	if len(received) == 0 && c.requireCookie {
		outcome.reason = "応答にセッションクッキーがありません"
		logger.Warn("ログイン応答にクッキーがありません")
		return outcome, nil
	}

	c.mu.Lock()
	for _, cookie := range received {
		c.cookies.Add(cookie)
	}
	c.authenticated = true
	c.mu.Unlock()

	outcome.accepted = true
	logger.Info("ログイン成功", "cookies", len(received))
	return outcome, nil
}

// LoginResult は非同期ログインの結果です
type LoginResult struct {
	OK  bool
	Err error
}

// LoginAsync は別のgoroutineでログインし、結果をチャネルで返します
func (c *SessionClient) LoginAsync(ctx context.Context, url, username, password string) <-chan LoginResult {
	ch := make(chan LoginResult, 1)
	go func() {
		defer close(ch)
		ok, err := c.Login(ctx, url, username, password)
		ch <- LoginResult{OK: ok, Err: err}
	}()
	return ch
}

// response は本文を読み切った応答です
type response struct {
	statusCode int
	header     http.Header
	body       []byte
}

func (r *response) cookies() []models.Cookie {
	parsed := (&http.Response{Header: r.header}).Cookies()
	result := make([]models.Cookie, 0, len(parsed))
	for _, ck := range parsed {
		path := ck.Path
		if path == "" {
			path = "/"
		}
		result = append(result, models.Cookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: ck.Domain,
			Path:   path,
		})
	}
	return result
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// do はリクエストを送信して本文を読み切ります。通信エラーのみ指数バックオフで再試行します
func (c *SessionClient) do(ctx context.Context, method, url string, prepare func(*http.Request), body []byte) (*response, error) {
	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID, "method", method, "url", url)

	attempt := func() (*response, error) {
		reqCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(reqCtx, method, url, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("リクエスト作成エラー: %w", err))
		}
		req.Header.Set("X-Request-ID", requestID)
		for _, cookie := range c.cookies.All() {
			req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		}
		if prepare != nil {
			prepare(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, backoff.Permanent(fmt.Errorf("リクエスト中断: %w", ctxErr))
			}
			return nil, permanentUnlessRetryable(classifyTransportError(url, err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			// 呼び出し元のキャンセルは通信エラーとして扱わない
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, backoff.Permanent(fmt.Errorf("レスポンス読み込み中断: %w", ctxErr))
			}
			kind := InvalidResponse
			if errors.Is(err, context.DeadlineExceeded) {
				kind = Timeout
			}
			return nil, &NetworkError{Kind: kind, URL: url, Err: fmt.Errorf("レスポンス読み込みエラー: %w", err)}
		}

		return &response{statusCode: resp.StatusCode, header: resp.Header, body: data}, nil
	}

	exp := backoff.NewExponentialBackOff()
	if c.retryInterval > 0 {
		exp.InitialInterval = c.retryInterval
	}

	resp, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Warn("通信エラーのため再試行します", "error", err, "wait", wait)
		}),
	)
	if err != nil {
		err = normalizeRetryError(url, err)
		logger.Error("リクエスト失敗", "error", err)
		return nil, err
	}

	logger.Debug("リクエスト完了", "status", resp.statusCode, "bytes", len(resp.body))
	return resp, nil
}

// permanentUnlessRetryable は通信エラー以外を再試行しないようにします
func permanentUnlessRetryable(err error) error {
	if IsRetryable(err) {
		return err
	}
	return backoff.Permanent(err)
}

// normalizeRetryError は再試行の打ち切り理由を呼び出し元向けのエラーに揃えます
func normalizeRetryError(url string, err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) || errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Kind: Timeout, URL: url, Err: err}
	}
	return err
}
