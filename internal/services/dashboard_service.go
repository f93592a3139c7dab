package services

import (
	"context"
	"time"

	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"gorm.io/gorm"
)

type Dashboard struct {
	Total        int64            `json:"total"`
	Interviews   int64            `json:"interviews"`
	Pending      int64            `json:"pending"`
	StatusCounts map[string]int64 `json:"status_counts"`
	// DailyCounts is keyed by creation date, YYYY-MM-DD.
	DailyCounts map[string]int64 `json:"daily_counts"`
}

// DashboardService summarizes the acting user's own jobs. Admin rights do
// not widen it.
type DashboardService struct {
	DB       *gorm.DB
	Location *time.Location
}

func NewDashboardService(db *gorm.DB, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{DB: db, Location: loc}
}

func (s *DashboardService) Summary(ctx context.Context, p *policy.Principal) (*Dashboard, error) {
	if p == nil {
		return nil, apperrors.ErrNotAuthorized
	}

	var rows []struct {
		Status string
		Count  int64
	}
	err := policy.OwnScope(s.DB.WithContext(ctx).Model(&models.Job{}), p).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// grouped in Go so the calendar date follows the configured zone on
	// every driver
	var created []time.Time
	err = policy.OwnScope(s.DB.WithContext(ctx).Model(&models.Job{}), p).
		Pluck("created_at", &created).Error
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	d := &Dashboard{
		StatusCounts: make(map[string]int64, len(rows)),
		DailyCounts:  make(map[string]int64),
	}
	for _, r := range rows {
		d.StatusCounts[r.Status] = r.Count
		d.Total += r.Count
	}
	d.Interviews = d.StatusCounts[models.StatusInterview]
	d.Pending = d.StatusCounts[models.StatusPending]

	for _, t := range created {
		d.DailyCounts[t.In(s.Location).Format(dateLayout)]++
	}
	return d, nil
}
