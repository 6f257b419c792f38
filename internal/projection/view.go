package projection

import (
	"strings"
	"time"
)

// View holds the log list state: the month being browsed and the search text.
// A non-empty search supersedes the month; clearing it restores the month.
type View struct {
	month  time.Time
	search string
	loc    *time.Location
}

// NewView starts a view on the month containing now.
func NewView(now time.Time, loc *time.Location) *View {
	if loc == nil {
		loc = time.Local
	}
	return &View{month: MonthFilter(now, loc).Start, loc: loc}
}

// Month returns the first instant of the selected month.
func (v *View) Month() time.Time { return v.month }

// Search returns the current search text.
func (v *View) Search() string { return v.search }

// SetMonth selects the month containing t.
func (v *View) SetMonth(t time.Time) {
	v.month = MonthFilter(t, v.loc).Start
}

// NextMonth advances the selected month by one.
func (v *View) NextMonth() { v.month = v.month.AddDate(0, 1, 0) }

// PrevMonth moves the selected month back by one.
func (v *View) PrevMonth() { v.month = v.month.AddDate(0, -1, 0) }

// SetSearch replaces the search text. Whitespace-only text counts as empty.
func (v *View) SetSearch(text string) {
	v.search = strings.TrimSpace(text)
}

// Filter returns the active filter.
func (v *View) Filter() Filter {
	if v.search != "" {
		return SearchFilter(v.search)
	}
	return MonthFilter(v.month, v.loc)
}
