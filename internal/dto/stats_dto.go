package dto

import "time"

// ScholarStatsResponse aggregates the activity log of one scholar.
type ScholarStatsResponse struct {
	ScholarID          uint    `json:"scholar_id"`
	TotalHours         float64 `json:"total_hours"`
	CurrentMonthHours  float64 `json:"current_month_hours"`
	PendingActivities  int64   `json:"pending_activities"`
	ApprovedActivities int64   `json:"approved_activities"`
	RejectedActivities int64   `json:"rejected_activities"`
}

// FleetStatsResponse aggregates the current month across every scholar.
type FleetStatsResponse struct {
	TotalScholars    int64   `json:"total_scholars"`
	ActiveThisMonth  int64   `json:"active_this_month"`
	PendingApprovals int64   `json:"pending_approvals"`
	HoursThisMonth   float64 `json:"hours_this_month"`
}

// MonthlyReportRow summarises one scholar for a calendar month.
type MonthlyReportRow struct {
	ScholarID          uint    `json:"scholar_id"`
	ScholarName        string  `json:"scholar_name"`
	ScholarLevel       string  `json:"scholar_level"`
	RequiredHours      uint    `json:"required_hours"`
	CompletedHours     float64 `json:"completed_hours"`
	PendingHours       float64 `json:"pending_hours"`
	ApprovedActivities int64   `json:"approved_activities"`
	PendingActivities  int64   `json:"pending_activities"`
	RejectedActivities int64   `json:"rejected_activities"`
	IsCompliant        bool    `json:"is_compliant"`
}

// MonthlyReportResponse is the compliance report for a calendar month.
type MonthlyReportResponse struct {
	Month       string             `json:"month"`
	Scholars    []MonthlyReportRow `json:"scholars"`
	GeneratedAt time.Time          `json:"generated_at"`
}
