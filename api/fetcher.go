package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"workdash/models"
)

// FetchCollection は認証済みセッションでGETを送り、JSON配列を T のスライスにデコードします。
// 1つでもデコードできない要素があれば全体を *DecodeError で失敗させます
func FetchCollection[T models.WorkItem](ctx context.Context, c *SessionClient, url string) ([]T, error) {
	resp, err := c.do(ctx, http.MethodGet, url, func(req *http.Request) {
		req.Header.Set("Accept", "application/json")
	}, nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.statusCode) {
		return nil, &HTTPError{StatusCode: resp.statusCode, URL: url, Body: string(resp.body)}
	}

	items, err := decodeCollection[T](resp.body)
	if err != nil {
		c.logger.Warn("レスポンス解析エラー", "url", url, "error", err)
		return nil, err
	}

	c.logger.Info("取得完了", "url", url, "count", len(items))
	return items, nil
}

var errTrailingData = errors.New("配列の後に余分なデータがあります")

func decodeCollection[T models.WorkItem](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &DecodeError{Index: -1, Cause: ErrNotArray}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, &DecodeError{Index: -1, Cause: err}
	}

	var zero T
	schema := zero.Schema()
	items := make([]T, 0)
	seen := make(map[string]struct{})

	// 要素ごとに読み進め、構文エラーも要素の位置で報告する
	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &DecodeError{Index: i, Cause: err}
		}

		item, err := decodeElement[T](raw, schema)
		if err != nil {
			return nil, &DecodeError{Index: i, Cause: err}
		}

		id := item.ItemID()
		if _, dup := seen[id]; dup {
			return nil, &DecodeError{Index: i, Cause: fmt.Errorf("%w: %s", ErrDuplicateID, id)}
		}
		seen[id] = struct{}{}

		items = append(items, item)
	}

	if _, err := dec.Token(); err != nil {
		return nil, &DecodeError{Index: -1, Cause: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Index: -1, Cause: errTrailingData}
	}

	return items, nil
}

func decodeElement[T models.WorkItem](raw json.RawMessage, schema models.Schema) (T, error) {
	var item T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return item, err
	}
	if err := checkKeys(fields, schema); err != nil {
		return item, err
	}

	if err := json.Unmarshal(raw, &item); err != nil {
		return item, err
	}
	if item.ItemID() == "" {
		return item, ErrMissingID
	}
	return item, nil
}

// FetchMergeRequests はマージリクエスト一覧を取得します
func (c *SessionClient) FetchMergeRequests(ctx context.Context, url string) ([]models.MergeRequest, error) {
	return FetchCollection[models.MergeRequest](ctx, c, url)
}

// FetchIssues は問題単一覧を取得します
func (c *SessionClient) FetchIssues(ctx context.Context, url string) ([]models.Issue, error) {
	return FetchCollection[models.Issue](ctx, c, url)
}

// FetchRequirements は要件一覧を取得します
func (c *SessionClient) FetchRequirements(ctx context.Context, url string) ([]models.Requirement, error) {
	return FetchCollection[models.Requirement](ctx, c, url)
}

// FetchTestCases は失敗テストケース一覧を取得します
func (c *SessionClient) FetchTestCases(ctx context.Context, url string) ([]models.TestCase, error) {
	return FetchCollection[models.TestCase](ctx, c, url)
}

// FetchResult は非同期取得の結果です
type FetchResult[T any] struct {
	Items []T
	Err   error
}

// FetchAsync は別のgoroutineで取得し、結果をチャネルで返します
func FetchAsync[T models.WorkItem](ctx context.Context, c *SessionClient, url string) <-chan FetchResult[T] {
	ch := make(chan FetchResult[T], 1)
	go func() {
		defer close(ch)
		items, err := FetchCollection[T](ctx, c, url)
		ch <- FetchResult[T]{Items: items, Err: err}
	}()
	return ch
}
