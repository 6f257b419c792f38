package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "budgie/internal/errors"
	"budgie/internal/models"
	"budgie/internal/projection"
)

// viewService serves the filtered, day-grouped projections of the ledger.
type viewService struct {
	db  *gorm.DB
	loc *time.Location
}

// NewViewService creates a new ViewServicer that buckets days in loc.
func NewViewService(db *gorm.DB, loc *time.Location) ViewServicer {
	if loc == nil {
		loc = time.Local
	}
	return &viewService{db: db, loc: loc}
}

// Location returns the zone used for month and day boundaries.
func (s *viewService) Location() *time.Location {
	return s.loc
}

// ListLogs returns the logs accepted by filter, newest first. A nil filter
// returns every log.
func (s *viewService) ListLogs(filter projection.Filter) ([]*models.Log, error) {
	q := s.db.Preload("Category").Order("timestamp DESC").Order("id DESC")
	if filter != nil {
		q = q.Scopes(filter.Scope())
	}

	var logs []*models.Log
	if err := q.Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if filter == nil {
		return logs, nil
	}

	matched := logs[:0]
	for _, l := range logs {
		if filter.Match(l) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// Days groups the logs accepted by filter into calendar days.
func (s *viewService) Days(filter projection.Filter) ([]projection.DayGroup, error) {
	logs, err := s.ListLogs(filter)
	if err != nil {
		return nil, err
	}
	return projection.GroupByDay(logs, s.loc), nil
}
