package services

import (
	"context"
	"testing"
	"time"

	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertJob(t *testing.T, db *gorm.DB, userID uint, status string, created time.Time) {
	t.Helper()
	job := &models.Job{UserID: userID, Title: "Eng", Company: "Acme", Location: "Remote", Status: status, CreatedAt: created}
	require.NoError(t, db.Create(job).Error)
}

func TestDashboardSummary(t *testing.T) {
	db := setupDB(t)
	_, alice := createUser(t, db, "a@example.com", false)
	_, bob := createUser(t, db, "b@example.com", false)

	day1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	insertJob(t, db, alice.UserID, models.StatusApplied, day1)
	insertJob(t, db, alice.UserID, models.StatusApplied, day1.Add(time.Hour))
	insertJob(t, db, alice.UserID, models.StatusInterview, day2)
	insertJob(t, db, bob.UserID, models.StatusPending, day2)

	d, err := NewDashboardService(db, time.UTC).Summary(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"applied": 2, "interview": 1}, d.StatusCounts)
	assert.Equal(t, int64(3), d.Total)
	assert.Equal(t, int64(1), d.Interviews)
	assert.Equal(t, int64(0), d.Pending)
	assert.Equal(t, map[string]int64{"2024-05-01": 2, "2024-05-02": 1}, d.DailyCounts)
}

func TestDashboardAdminSeesOnlyOwnJobs(t *testing.T) {
	db := setupDB(t)
	_, alice := createUser(t, db, "a@example.com", false)
	_, admin := createUser(t, db, "admin@example.com", true)
	insertJob(t, db, alice.UserID, models.StatusPending, time.Now())

	d, err := NewDashboardService(db, time.UTC).Summary(context.Background(), admin)
	require.NoError(t, err)
	assert.Zero(t, d.Total)
	assert.Empty(t, d.StatusCounts)
}

func TestDashboardDatesFollowLocation(t *testing.T) {
	db := setupDB(t)
	_, alice := createUser(t, db, "a@example.com", false)
	insertJob(t, db, alice.UserID, models.StatusApplied, time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC))

	plus2 := time.FixedZone("UTC+2", 2*60*60)
	d, err := NewDashboardService(db, plus2).Summary(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2024-05-02": 1}, d.DailyCounts)
}

func TestDashboardAnonymous(t *testing.T) {
	_, err := NewDashboardService(setupDB(t), nil).Summary(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}
