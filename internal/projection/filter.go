// Package projection derives read-only views of the ledger: month ranges,
// text search and per-day groupings with signed totals.
package projection

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"budgie/internal/models"
)

// Filter selects logs for display. Scope narrows a logs query in the store;
// Match applies the same rule to a log already in memory.
type Filter interface {
	Scope() func(db *gorm.DB) *gorm.DB
	Match(log *models.Log) bool
}

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// MonthFilter returns the range covering the calendar month containing month,
// from its first day inclusive to the first day of the next month exclusive,
// evaluated in loc.
func MonthFilter(month time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	m := month.In(loc)
	start := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, loc)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Match implements Filter.
func (r Range) Match(log *models.Log) bool {
	return r.Contains(log.Timestamp)
}

// Scope implements Filter. Bounds are compared in UTC, matching how the
// ledger stores timestamps.
func (r Range) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("logs.timestamp >= ? AND logs.timestamp < ?", r.Start.UTC(), r.End.UTC())
	}
}

// Search matches logs whose category title or notes contain the text,
// ignoring case.
type Search struct {
	Text   string
	folded string
}

// fold applies Unicode case folding. Casers carry state, so each call gets
// its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// SearchFilter builds a case-insensitive substring filter for text.
func SearchFilter(text string) Search {
	return Search{Text: text, folded: fold(text)}
}

// Match implements Filter. The log's category must be loaded for titles to
// be searched.
func (s Search) Match(log *models.Log) bool {
	if s.folded == "" {
		return true
	}
	if strings.Contains(fold(log.Notes), s.folded) {
		return true
	}
	if log.Category != nil && log.Category.Title != nil {
		return strings.Contains(fold(*log.Category.Title), s.folded)
	}
	return false
}

// Scope implements Filter. Unicode case folding is not portable across
// databases, so the search runs over all live logs and Match narrows them.
func (s Search) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db }
}
