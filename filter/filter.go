// Package filter は取得済みの作業項目に対する検索・期間フィルタを提供します。
// どの関数も入力スライスを変更せず、元の並び順を保った新しいスライスを返します。
package filter

import (
	"strings"
	"time"

	"workdash/models"
)

// DateAccessor は項目の日付を取り出します。解釈できない場合は false を返します
type DateAccessor[T any] func(T) (time.Time, bool)

// TextSearch は選択したフィールドのいずれかに query を含む項目を返します。
// query は前後の空白を除いて小文字化し、空の場合はすべての項目を返します
func TextSearch[T any](items []T, query string, fields ...func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]T, 0, len(items))
	for _, item := range items {
		if q == "" || matchesAny(item, q, fields) {
			result = append(result, item)
		}
	}
	return result
}

func matchesAny[T any](item T, q string, fields []func(T) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), q) {
			return true
		}
	}
	return false
}

// DateRange は日付が [start, end] に入る項目を返します (時刻は無視、両端を含む)。
// 日付を解釈できない項目は除外せずに残します
func DateRange[T any](items []T, start, end time.Time, date DateAccessor[T]) []T {
	from, to := civilDate(start), civilDate(end)

	result := make([]T, 0, len(items))
	for _, item := range items {
		t, ok := date(item)
		if !ok {
			result = append(result, item)
			continue
		}
		if d := civilDate(t); d >= from && d <= to {
			result = append(result, item)
		}
	}
	return result
}

// civilDate は暦日を比較可能な整数 (YYYYMMDD) に変換します
func civilDate(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// DateOf は文字列の日付フィールドを DateAccessor に変換します
func DateOf[T any](field func(T) string) DateAccessor[T] {
	return func(item T) (time.Time, bool) {
		t, err := models.ParseTimestamp(field(item))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// TimestampOf は正規化済みの日時フィールドを DateAccessor に変換します
func TimestampOf[T any](field func(T) models.Timestamp) DateAccessor[T] {
	return func(item T) (time.Time, bool) {
		ts := field(item)
		return ts.Time, ts.Valid
	}
}
