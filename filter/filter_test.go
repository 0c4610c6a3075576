package filter

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdash/models"
)

type record struct {
	ID    string
	Title string
	Owner string
	Date  string
}

var (
	byTitle = func(r record) string { return r.Title }
	byOwner = func(r record) string { return r.Owner }
	byDate  = DateOf(func(r record) string { return r.Date })
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func randomRecords(r *rand.Rand, n int) []record {
	titles := []string{"Fix bug", "Add feature", "fix login", "Refactor", "BUGFIX", ""}
	owners := []string{"zhang", "li", "wang"}
	dates := []string{"2026-01-19", "2026-01-20 09:00:00", "2026-01-25T23:59:59Z", "2026-01-26", "not a date", ""}

	out := make([]record, n)
	for i := range out {
		out[i] = record{
			ID:    fmt.Sprint(i),
			Title: titles[r.Intn(len(titles))],
			Owner: owners[r.Intn(len(owners))],
			Date:  dates[r.Intn(len(dates))],
		}
	}
	return out
}

func TestTextSearch_Example(t *testing.T) {
	items := []record{{Title: "Fix bug"}, {Title: "Add feature"}}

	got := TextSearch(items, "fix", byTitle)
	assert.Equal(t, []record{{Title: "Fix bug"}}, got)
}

func TestTextSearch_TrimsAndIgnoresCase(t *testing.T) {
	items := []record{{Title: "Fix bug", Owner: "li"}, {Title: "Add feature", Owner: "LIU"}}

	assert.Equal(t, items[:1], TextSearch(items, "  FIX  ", byTitle))
	assert.Equal(t, items, TextSearch(items, "li", byTitle, byOwner))
	assert.Empty(t, TextSearch(items, "li", byTitle))
}

func TestTextSearch_NoFieldsMatchesNothing(t *testing.T) {
	items := []record{{Title: "Fix bug"}}
	assert.Empty(t, TextSearch(items, "fix"))
}

func TestTextSearch_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for n := 0; n < 50; n++ {
		items := randomRecords(r, r.Intn(20))

		// 空の検索語はすべてを返す
		assert.Equal(t, items, TextSearch(items, "", byTitle, byOwner))
		assert.Equal(t, items, TextSearch(items, "   ", byTitle))

		// 冪等性
		for _, q := range []string{"fix", "bug", "zh", "x"} {
			once := TextSearch(items, q, byTitle, byOwner)
			twice := TextSearch(once, q, byTitle, byOwner)
			assert.Equal(t, once, twice, "query %q", q)
		}
	}
}

func TestTextSearch_DoesNotMutateInput(t *testing.T) {
	items := []record{{Title: "a"}, {Title: "b"}, {Title: "a"}}
	snapshot := append([]record(nil), items...)

	got := TextSearch(items, "b", byTitle)
	require.Len(t, got, 1)
	got[0].Title = "changed"

	assert.Equal(t, snapshot, items)
}

func TestDateRange_Example(t *testing.T) {
	items := []record{{Date: "2026-01-21"}, {Date: "2026-01-30"}}

	got := DateRange(items, day(2026, 1, 20), day(2026, 1, 25), byDate)
	assert.Equal(t, []record{{Date: "2026-01-21"}}, got)
}

func TestDateRange_InclusiveAndIgnoresTimeOfDay(t *testing.T) {
	items := []record{
		{ID: "before", Date: "2026-01-19 23:59:59"},
		{ID: "start", Date: "2026-01-20 00:00:00"},
		{ID: "end-late", Date: "2026-01-25T23:59:59Z"},
		{ID: "after", Date: "2026-01-26"},
	}

	start := time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 25, 1, 0, 0, 0, time.UTC)

	var ids []string
	for _, r := range DateRange(items, start, end, byDate) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"start", "end-late"}, ids)
}

func TestDateRange_FailOpen(t *testing.T) {
	items := []record{
		{ID: "garbage", Date: "sometime next week"},
		{ID: "empty", Date: ""},
		{ID: "outside", Date: "2025-12-31"},
	}

	got := DateRange(items, day(2026, 1, 1), day(2026, 1, 31), byDate)
	require.Len(t, got, 2)
	assert.Equal(t, "garbage", got[0].ID)
	assert.Equal(t, "empty", got[1].ID)
}

func TestDateRange_TimestampAccessor(t *testing.T) {
	items := []models.Issue{
		{ID: "1", CreatedAt: models.NewTimestamp(day(2026, 1, 21))},
		{ID: "2", CreatedAt: models.NewTimestamp(day(2026, 2, 1))},
		{ID: "3"},
	}

	got := DateRange(items, day(2026, 1, 20), day(2026, 1, 25),
		TimestampOf(func(i models.Issue) models.Timestamp { return i.CreatedAt }))

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID, "unset timestamps are retained")
}

func TestDateRange_SubsetLaw(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	start, end := day(2026, 1, 20), day(2026, 1, 25)

	for n := 0; n < 50; n++ {
		items := randomRecords(r, r.Intn(25))
		got := DateRange(items, start, end, byDate)

		assert.LessOrEqual(t, len(got), len(items))
		for _, item := range got {
			assert.Contains(t, items, item)

			d, ok := byDate(item)
			if !ok {
				continue
			}
			assert.False(t, civilDate(d) < civilDate(start) || civilDate(d) > civilDate(end), "item %+v out of range", item)
		}
	}
}

func TestCriteria_Commutes(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	start, end := day(2026, 1, 20), day(2026, 1, 25)

	for n := 0; n < 50; n++ {
		items := randomRecords(r, r.Intn(25))

		searchFirst := DateRange(TextSearch(items, "fix", byTitle), start, end, byDate)
		dateFirst := TextSearch(DateRange(items, start, end, byDate), "fix", byTitle)
		assert.Equal(t, searchFirst, dateFirst)

		c := Criteria[record]{Query: "fix", Fields: []func(record) string{byTitle}, Start: start, End: end, Date: byDate}
		assert.Equal(t, searchFirst, c.Apply(items))
	}
}

func TestCriteria_NoDateRange(t *testing.T) {
	items := []record{{Title: "Fix", Date: "2020-01-01"}, {Title: "Other"}}

	c := Criteria[record]{Query: "fix", Fields: []func(record) string{byTitle}, Date: byDate}
	assert.False(t, c.HasDateRange())
	assert.Equal(t, items[:1], c.Apply(items))

	c.Start = day(2026, 1, 1)
	assert.False(t, c.HasDateRange(), "both bounds are required")
}

func TestFieldSelectors_WorkItems(t *testing.T) {
	mrs := []models.MergeRequest{
		{ID: "1", Title: "添加用户认证功能", Author: "张三"},
		{ID: "2", Title: "修复登录页面 bug", Author: "李四"},
	}
	assert.Len(t, TextSearch(mrs, "BUG", models.MergeRequestFields...), 1)
	assert.Len(t, TextSearch(mrs, "张三", models.MergeRequestFields...), 1)

	reqs := []models.Requirement{{ID: "REQ-1", Version: "v2.1"}, {ID: "REQ-2", Version: "v3.0"}}
	got := TextSearch(reqs, "v2", models.RequirementFields...)
	require.Len(t, got, 1)
	assert.Equal(t, "REQ-1", got[0].ID)

	msg := "connection reset"
	cases := []models.TestCase{{ID: "TC-1", Name: "smoke", ErrorMsg: &msg}, {ID: "TC-2", Name: "regression"}}
	assert.Len(t, TextSearch(cases, "reset", models.TestCaseFields...), 1)
}
