package service

import (
	"time"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
)

// sameCalendarMonth compares the month number only. Activities from any year
// in the current month count towards "this month" figures.
// TODO: compare year as well once the program confirms the intended window.
func sameCalendarMonth(date, now time.Time) bool {
	return date.Month() == now.Month()
}

func computeScholarStats(scholarID uint, activities []models.Activity, now time.Time) dto.ScholarStatsResponse {
	stats := dto.ScholarStatsResponse{ScholarID: scholarID}
	for _, activity := range activities {
		switch activity.Status {
		case models.ActivityStatusApproved:
			stats.ApprovedActivities++
			stats.TotalHours += activity.Hours
			if sameCalendarMonth(activity.ActivityDate, now) {
				stats.CurrentMonthHours += activity.Hours
			}
		case models.ActivityStatusPending:
			stats.PendingActivities++
		case models.ActivityStatusRejected:
			stats.RejectedActivities++
		}
	}
	return stats
}

func computeFleetStats(totalScholars int64, activities []models.Activity, now time.Time) dto.FleetStatsResponse {
	stats := dto.FleetStatsResponse{TotalScholars: totalScholars}
	active := make(map[uint]struct{})
	for _, activity := range activities {
		if !sameCalendarMonth(activity.ActivityDate, now) {
			continue
		}
		active[activity.ScholarID] = struct{}{}
		switch activity.Status {
		case models.ActivityStatusPending:
			stats.PendingApprovals++
		case models.ActivityStatusApproved:
			stats.HoursThisMonth += activity.Hours
		}
	}
	stats.ActiveThisMonth = int64(len(active))
	return stats
}

func buildMonthlyReport(scholars []models.Scholar, activities []models.Activity) []dto.MonthlyReportRow {
	rows := make([]dto.MonthlyReportRow, 0, len(scholars))
	index := make(map[uint]int, len(scholars))
	for i, scholar := range scholars {
		index[scholar.ID] = i
		rows = append(rows, dto.MonthlyReportRow{
			ScholarID:     scholar.ID,
			ScholarName:   scholar.User.DisplayName(),
			ScholarLevel:  scholar.Level,
			RequiredHours: scholar.RequiredHoursPerMonth,
		})
	}

	for _, activity := range activities {
		i, ok := index[activity.ScholarID]
		if !ok {
			continue
		}
		row := &rows[i]
		switch activity.Status {
		case models.ActivityStatusApproved:
			row.ApprovedActivities++
			row.CompletedHours += activity.Hours
		case models.ActivityStatusPending:
			row.PendingActivities++
			row.PendingHours += activity.Hours
		case models.ActivityStatusRejected:
			row.RejectedActivities++
		}
	}

	for i := range rows {
		rows[i].IsCompliant = rows[i].CompletedHours >= float64(rows[i].RequiredHours)
	}
	return rows
}
