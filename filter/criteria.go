package filter

import "time"

// Criteria は検索条件と期間条件の組です。2つの条件は独立しており適用順に依存しません
type Criteria[T any] struct {
	Query  string
	Fields []func(T) string

	// Start と End のどちらかがゼロ値なら期間フィルタは適用しない
	Start time.Time
	End   time.Time
	Date  DateAccessor[T]
}

// HasDateRange は期間フィルタが有効かを返します
func (c Criteria[T]) HasDateRange() bool {
	return !c.Start.IsZero() && !c.End.IsZero() && c.Date != nil
}

// Apply は元の全件に対して両方の条件を適用した結果を返します
func (c Criteria[T]) Apply(items []T) []T {
	result := TextSearch(items, c.Query, c.Fields...)
	if c.HasDateRange() {
		result = DateRange(result, c.Start, c.End, c.Date)
	}
	return result
}
