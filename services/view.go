package services

import (
	"errors"
	"sync"
	"time"

	"workdash/filter"
)

var (
	// ErrInvalidDateRange は開始日が終了日より後であることを表します
	ErrInvalidDateRange = errors.New("開始日が終了日より後になっています")
	// ErrNoDateField は期間フィルタに使う日付フィールドが無いリソースであることを表します
	ErrNoDateField = errors.New("このリソースには期間フィルタ用の日付がありません")
)

// View は取得した全件 (置き換えのみ、フィルタで変更しない) と現在の表示条件を保持します。
// 表示用の部分集合は Visible のたびに全件から作り直します
type View[T any] struct {
	mu        sync.RWMutex
	items     []T
	criteria  filter.Criteria[T]
	fetchedAt time.Time
}

// NewView は検索対象フィールドと日付フィールドを指定してビューを作成します。date は nil でも構いません
func NewView[T any](fields []func(T) string, date filter.DateAccessor[T]) *View[T] {
	return &View[T]{
		criteria: filter.Criteria[T]{Fields: fields, Date: date},
	}
}

// Replace は全件を丸ごと置き換えます
func (v *View[T]) Replace(items []T) {
	copied := append([]T(nil), items...)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = copied
	v.fetchedAt = time.Now()
}

// All は全件のコピーを返します
func (v *View[T]) All() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]T(nil), v.items...)
}

// Len は全件の件数を返します
func (v *View[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

// FetchedAt は最後に全件を置き換えた時刻を返します
func (v *View[T]) FetchedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fetchedAt
}

// SetQuery は検索語を設定します
func (v *View[T]) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Query = query
}

// Query は現在の検索語を返します
func (v *View[T]) Query() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.criteria.Query
}

// SetDateRange は期間条件を設定します
func (v *View[T]) SetDateRange(start, end time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.criteria.Date == nil {
		return ErrNoDateField
	}
	if start.After(end) {
		return ErrInvalidDateRange
	}

	v.criteria.Start = start
	v.criteria.End = end
	return nil
}

// ClearDateRange は期間条件を解除します
func (v *View[T]) ClearDateRange() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Start = time.Time{}
	v.criteria.End = time.Time{}
}

// Visible は全件に現在の条件を適用した結果を返します
func (v *View[T]) Visible() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.criteria.Apply(v.items)
}
