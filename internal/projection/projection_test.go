package projection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgie/internal/models"
)

func title(s string) *string { return &s }

func newLog(ts time.Time, amount string, catType models.CategoryType, catTitle, notes string) *models.Log {
	return &models.Log{
		Timestamp: ts,
		Amount:    decimal.RequireFromString(amount),
		Notes:     notes,
		Category:  &models.Category{Title: title(catTitle), Type: catType},
	}
}

func TestMonthFilter(t *testing.T) {
	loc := time.UTC
	r := MonthFilter(time.Date(2026, time.October, 19, 15, 4, 5, 0, loc), loc)

	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, loc), r.Start)
	assert.Equal(t, time.Date(2026, time.November, 1, 0, 0, 0, 0, loc), r.End)

	assert.True(t, r.Contains(r.Start), "start is inclusive")
	assert.False(t, r.Contains(r.End), "end is exclusive")
	assert.True(t, r.Contains(r.End.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
}

func TestMonthFilterDecemberRollsOverYear(t *testing.T) {
	r := MonthFilter(time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), r.End)
}

func TestMonthFilterUsesViewerLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Oct 31 is already Nov 1 in IST.
	r := MonthFilter(time.Date(2026, time.October, 31, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.November, r.Start.Month())
	assert.Equal(t, loc, r.Start.Location())
}

func TestSearchFilter(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	food := newLog(now, "10", models.CategoryTypeExpense, "Food and Beverage", "")
	taxi := newLog(now, "5", models.CategoryTypeExpense, "Taxi Fares", "late night FOOD run")
	salary := newLog(now, "100", models.CategoryTypeIncome, "Salary", "October")
	uncategorised := &models.Log{Timestamp: now, Notes: "straße"}

	tests := []struct {
		name string
		text string
		log  *models.Log
		want bool
	}{
		{"title match ignores case", "food", food, true},
		{"notes match ignores case", "food", taxi, true},
		{"no match", "food", salary, false},
		{"substring in middle", "ctob", salary, true},
		{"empty text matches everything", "", salary, true},
		{"unicode folding", "STRASSE", uncategorised, true},
		{"nil category searches notes only", "salary", uncategorised, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchFilter(tt.text).Match(tt.log))
		})
	}
}

func TestGroupByDay(t *testing.T) {
	loc := time.UTC
	day1 := time.Date(2026, time.October, 18, 9, 0, 0, 0, loc)
	day2 := time.Date(2026, time.October, 19, 9, 0, 0, 0, loc)

	excluded := newLog(day1.Add(2*time.Hour), "30", models.CategoryTypeExpense, "Travel", "")
	excluded.ExcludedFromReport = true

	logs := []*models.Log{
		newLog(day2.Add(3*time.Hour), "50", models.CategoryTypeIncome, "Salary", ""),
		newLog(day2, "20", models.CategoryTypeExpense, "Transportation", ""),
		excluded,
		newLog(day1, "100", models.CategoryTypeExpense, "Food and Beverage", ""),
	}

	groups := GroupByDay(logs, loc)
	require.Len(t, groups, 2)

	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, loc), groups[0].Date)
	assert.Len(t, groups[0].Logs, 2)
	assert.Same(t, logs[0], groups[0].Logs[0], "input order kept inside a day")
	assert.Equal(t, "30", groups[0].Total.String())
	assert.Equal(t, "+30", groups[0].TotalString())

	assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, loc), groups[1].Date)
	assert.Equal(t, "-130", groups[1].Total.String(), "excluded logs still count toward the day total")
	assert.Equal(t, "-130", groups[1].TotalString())
}

func TestGroupByDayOrdersMostRecentFirst(t *testing.T) {
	loc := time.UTC
	var logs []*models.Log
	for i := 0; i < 5; i++ {
		logs = append(logs, newLog(time.Date(2026, time.October, 1+i*3, 8, 0, 0, 0, loc), "1", models.CategoryTypeExpense, "x", ""))
	}

	groups := GroupByDay(logs, loc)
	require.Len(t, groups, 5)
	for i := 1; i < len(groups); i++ {
		assert.True(t, groups[i-1].Date.After(groups[i].Date))
	}
}

func TestGroupByDayZeroTotal(t *testing.T) {
	ts := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	groups := GroupByDay([]*models.Log{
		newLog(ts, "12.50", models.CategoryTypeIncome, "Gifts", ""),
		newLog(ts, "12.5", models.CategoryTypeExpense, "Gifts", ""),
	}, time.UTC)

	require.Len(t, groups, 1)
	assert.True(t, groups[0].Total.IsZero())
	assert.Equal(t, "0", groups[0].TotalString())
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil, time.UTC))
}

func TestViewSearchSupersedesAndRestoresMonth(t *testing.T) {
	loc := time.UTC
	v := NewView(time.Date(2026, time.October, 19, 0, 0, 0, 0, loc), loc)
	v.PrevMonth()

	monthFilter := v.Filter()
	assert.Equal(t, MonthFilter(time.Date(2026, time.September, 5, 0, 0, 0, 0, loc), loc), monthFilter)

	v.SetSearch("snacks")
	search, ok := v.Filter().(Search)
	require.True(t, ok, "search replaces the month filter")
	assert.Equal(t, "snacks", search.Text)

	v.SetSearch("")
	assert.Equal(t, monthFilter, v.Filter(), "clearing search restores the selected month")

	v.SetSearch("   ")
	assert.Equal(t, monthFilter, v.Filter(), "blank search counts as empty")
}

func TestViewMonthNavigation(t *testing.T) {
	loc := time.UTC
	v := NewView(time.Date(2026, time.January, 31, 10, 0, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, loc), v.Month())

	v.NextMonth()
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, loc), v.Month())

	v.PrevMonth()
	v.PrevMonth()
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, loc), v.Month())

	v.SetMonth(time.Date(2024, time.July, 14, 0, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, loc), v.Month())
}
