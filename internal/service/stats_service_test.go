package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-api/internal/models"
)

func TestComputeScholarStats(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		{ScholarID: 1, Hours: 2, ActivityDate: onDate(2024, time.March, 1), Status: models.ActivityStatusApproved},
		{ScholarID: 1, Hours: 3, ActivityDate: onDate(2024, time.March, 2), Status: models.ActivityStatusPending},
		{ScholarID: 1, Hours: 5, ActivityDate: onDate(2024, time.February, 20), Status: models.ActivityStatusApproved},
	}

	stats := computeScholarStats(1, activities, now)
	require.Equal(t, uint(1), stats.ScholarID)
	require.Equal(t, 7.0, stats.TotalHours)
	require.Equal(t, 2.0, stats.CurrentMonthHours)
	require.Equal(t, int64(1), stats.PendingActivities)
	require.Equal(t, int64(2), stats.ApprovedActivities)
	require.Zero(t, stats.RejectedActivities)
	require.Equal(t, int64(len(activities)), stats.PendingActivities+stats.ApprovedActivities+stats.RejectedActivities)
}

func TestComputeScholarStatsEmpty(t *testing.T) {
	stats := computeScholarStats(9, nil, time.Now())
	require.Equal(t, uint(9), stats.ScholarID)
	require.Zero(t, stats.TotalHours)
	require.Zero(t, stats.CurrentMonthHours)
}

func TestCurrentMonthMatchesMonthNumberOnly(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		{ScholarID: 1, Hours: 4, ActivityDate: onDate(2022, time.March, 3), Status: models.ActivityStatusApproved},
		{ScholarID: 1, Hours: 1, ActivityDate: onDate(2024, time.April, 3), Status: models.ActivityStatusApproved},
	}

	stats := computeScholarStats(1, activities, now)
	require.Equal(t, 4.0, stats.CurrentMonthHours)
	require.Equal(t, 5.0, stats.TotalHours)
}

func TestComputeFleetStats(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		{ScholarID: 1, Hours: 2, ActivityDate: onDate(2024, time.March, 1), Status: models.ActivityStatusApproved},
		{ScholarID: 1, Hours: 6, ActivityDate: onDate(2024, time.March, 4), Status: models.ActivityStatusRejected},
		{ScholarID: 2, Hours: 3, ActivityDate: onDate(2024, time.March, 2), Status: models.ActivityStatusPending},
		{ScholarID: 3, Hours: 8, ActivityDate: onDate(2024, time.January, 2), Status: models.ActivityStatusApproved},
	}

	stats := computeFleetStats(3, activities, now)
	require.Equal(t, int64(3), stats.TotalScholars)
	require.Equal(t, int64(2), stats.ActiveThisMonth)
	require.Equal(t, int64(1), stats.PendingApprovals)
	require.Equal(t, 2.0, stats.HoursThisMonth)
	require.LessOrEqual(t, stats.ActiveThisMonth, stats.TotalScholars)
}

func TestBuildMonthlyReport(t *testing.T) {
	scholars := []models.Scholar{
		{ID: 1, Level: "A", RequiredHoursPerMonth: 5, User: models.User{FirstName: "Ana", LastName: "Silva"}},
		{ID: 2, Level: "B", RequiredHoursPerMonth: 10, User: models.User{Username: "ben"}},
	}
	activities := []models.Activity{
		{ScholarID: 1, Hours: 3, Status: models.ActivityStatusApproved},
		{ScholarID: 1, Hours: 2, Status: models.ActivityStatusApproved},
		{ScholarID: 2, Hours: 4, Status: models.ActivityStatusPending},
		{ScholarID: 2, Hours: 1, Status: models.ActivityStatusRejected},
		{ScholarID: 7, Hours: 9, Status: models.ActivityStatusApproved},
	}

	rows := buildMonthlyReport(scholars, activities)
	require.Len(t, rows, 2)

	require.Equal(t, "Ana Silva", rows[0].ScholarName)
	require.Equal(t, 5.0, rows[0].CompletedHours)
	require.Equal(t, int64(2), rows[0].ApprovedActivities)
	require.True(t, rows[0].IsCompliant)

	require.Equal(t, "ben", rows[1].ScholarName)
	require.Zero(t, rows[1].CompletedHours)
	require.Equal(t, 4.0, rows[1].PendingHours)
	require.Equal(t, int64(1), rows[1].RejectedActivities)
	require.False(t, rows[1].IsCompliant)
}

func TestStatsServiceAgainstStore(t *testing.T) {
	env := newTestEnv(t)
	ana := env.seedScholar(t, "ana", 5)
	ben := env.seedScholar(t, "ben", 5)
	cai := env.seedScholar(t, "cai", 5)

	env.seedActivity(t, ana.ID, 2, onDate(2024, time.March, 1), models.ActivityStatusApproved)
	env.seedActivity(t, ana.ID, 3, onDate(2024, time.March, 2), models.ActivityStatusPending)
	env.seedActivity(t, ana.ID, 5, onDate(2024, time.March, 3), models.ActivityStatusApproved)
	env.seedActivity(t, ben.ID, 1, onDate(2024, time.March, 4), models.ActivityStatusPending)
	env.seedActivity(t, ben.ID, 6, onDate(2023, time.March, 9), models.ActivityStatusApproved)
	env.seedActivity(t, cai.ID, 4, onDate(2024, time.February, 9), models.ActivityStatusApproved)

	svc := NewStatsService(env.activities, env.scholars, testLogger())
	svc.(*statsService).now = func() time.Time { return time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC) }

	scholarStats, err := svc.ScholarStats(context.Background(), ana.ID)
	require.NoError(t, err)
	require.Equal(t, 7.0, scholarStats.TotalHours)
	require.Equal(t, 7.0, scholarStats.CurrentMonthHours)
	require.Equal(t, int64(1), scholarStats.PendingActivities)
	require.Equal(t, int64(2), scholarStats.ApprovedActivities)

	self, err := svc.ScholarStatsForUser(context.Background(), ana.UserID)
	require.NoError(t, err)
	require.Equal(t, scholarStats, self)

	fleet, err := svc.FleetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), fleet.TotalScholars)
	require.Equal(t, int64(2), fleet.ActiveThisMonth)
	require.Equal(t, int64(2), fleet.PendingApprovals)
	require.Equal(t, 13.0, fleet.HoursThisMonth)

	index, err := svc.ScholarStatsIndex(context.Background())
	require.NoError(t, err)
	require.Len(t, index, 3)
	require.Equal(t, scholarStats, index[ana.ID])
	require.Equal(t, 6.0, index[ben.ID].TotalHours)
	require.Zero(t, index[cai.ID].CurrentMonthHours)

	_, err = svc.ScholarStats(context.Background(), 9999)
	require.ErrorIs(t, err, ErrScholarNotFound)

	_, err = svc.ScholarStatsForUser(context.Background(), 9999)
	require.ErrorIs(t, err, ErrScholarNotFound)
}

func TestMonthlyReport(t *testing.T) {
	env := newTestEnv(t)
	ana := env.seedScholar(t, "ana", 4)
	env.seedActivity(t, ana.ID, 4, onDate(2024, time.March, 31), models.ActivityStatusApproved)
	env.seedActivity(t, ana.ID, 9, onDate(2024, time.April, 1), models.ActivityStatusApproved)
	env.seedActivity(t, ana.ID, 9, onDate(2023, time.March, 10), models.ActivityStatusApproved)

	svc := NewStatsService(env.activities, env.scholars, testLogger())

	report, err := svc.MonthlyReport(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Equal(t, "2024-03", report.Month)
	require.Len(t, report.Scholars, 1)
	require.Equal(t, 4.0, report.Scholars[0].CompletedHours)
	require.True(t, report.Scholars[0].IsCompliant)

	_, err = svc.MonthlyReport(context.Background(), "2024-3")
	require.ErrorIs(t, err, ErrInvalidReportMonth)

	_, err = svc.MonthlyReport(context.Background(), "2024-13")
	require.ErrorIs(t, err, ErrInvalidReportMonth)
}
