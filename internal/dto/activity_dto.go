package dto

import (
	"time"

	"github.com/noah-isme/scholarship-api/internal/models"
)

// ActivityCreateRequest is submitted by a scholar to log service hours.
type ActivityCreateRequest struct {
	Description  string  `json:"description" validate:"required,max=5000"`
	Hours        float64 `json:"hours" validate:"gte=0,lte=744"`
	ActivityDate string  `json:"activity_date" validate:"required,datetime=2006-01-02"`
	CategoryID   *uint   `json:"category_id" validate:"omitempty,gt=0"`
}

// ActivityReviewRequest carries the optional reviewer comment.
type ActivityReviewRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// ActivityScholarView is the scholar block of an enriched activity.
type ActivityScholarView struct {
	ID                    uint         `json:"id"`
	Level                 string       `json:"level"`
	RequiredHoursPerMonth uint         `json:"required_hours_per_month"`
	User                  UserResponse `json:"user"`
}

// ActivityResponse serializes an activity. Scholar, category and reviewer are
// present only when they were loaded and exist.
type ActivityResponse struct {
	ID            uint                  `json:"id"`
	ScholarID     uint                  `json:"scholar_id"`
	Scholar       *ActivityScholarView  `json:"scholar,omitempty"`
	Category      *CategoryResponse     `json:"category"`
	Description   string                `json:"description"`
	Hours         float64               `json:"hours"`
	ActivityDate  string                `json:"activity_date"`
	Status        models.ActivityStatus `json:"status"`
	Reviewer      *UserSummary          `json:"reviewer"`
	ReviewComment *string               `json:"review_comment"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	ReviewedAt    *time.Time            `json:"reviewed_at"`
}

// NewActivityResponse converts an activity model into its DTO.
func NewActivityResponse(activity models.Activity) ActivityResponse {
	response := ActivityResponse{
		ID:            activity.ID,
		ScholarID:     activity.ScholarID,
		Description:   activity.Description,
		Hours:         activity.Hours,
		ActivityDate:  activity.ActivityDate.Format(DateLayout),
		Status:        activity.Status,
		ReviewComment: activity.ReviewComment,
		CreatedAt:     activity.CreatedAt,
		UpdatedAt:     activity.UpdatedAt,
		ReviewedAt:    activity.ReviewedAt,
	}

	if activity.Scholar.ID != 0 {
		response.Scholar = &ActivityScholarView{
			ID:                    activity.Scholar.ID,
			Level:                 activity.Scholar.Level,
			RequiredHoursPerMonth: activity.Scholar.RequiredHoursPerMonth,
			User:                  NewUserResponse(activity.Scholar.User),
		}
	}
	if activity.Category != nil {
		category := NewCategoryResponse(*activity.Category)
		response.Category = &category
	}
	if activity.Reviewer != nil {
		response.Reviewer = &UserSummary{ID: activity.Reviewer.ID, Username: activity.Reviewer.Username}
	}

	return response
}

// NewActivityResponses converts a slice of activities.
func NewActivityResponses(activities []models.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, NewActivityResponse(activity))
	}
	return responses
}
