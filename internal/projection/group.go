package projection

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budgie/internal/models"
)

// DayGroup is the set of logs recorded on one calendar day.
type DayGroup struct {
	Date  time.Time       `json:"date"`
	Logs  []*models.Log   `json:"logs"`
	Total decimal.Decimal `json:"total"`
}

// TotalString renders the net total with an explicit "+" for positive days.
func (g DayGroup) TotalString() string {
	s := g.Total.String()
	if g.Total.IsPositive() {
		return "+" + s
	}
	return s
}

// GroupByDay buckets logs by calendar day in loc, most recent day first.
// Each bucket's total is income minus expense over all of its logs,
// including those excluded from reports. Logs keep their input order inside
// a bucket; logs without a loaded category do not count toward the total.
func GroupByDay(logs []*models.Log, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}

	index := make(map[time.Time]int)
	var groups []DayGroup
	for _, l := range logs {
		t := l.Timestamp.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)

		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day, Total: decimal.Zero})
		}
		g := &groups[i]
		g.Logs = append(g.Logs, l)
		if l.Category != nil {
			g.Total = g.Total.Add(models.SignedAmount(l.Amount, l.Category.Type))
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date.After(groups[b].Date)
	})
	return groups
}
