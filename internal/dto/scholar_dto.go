package dto

import (
	"time"

	"github.com/noah-isme/scholarship-api/internal/models"
)

// ScholarCreateRequest registers a scholar together with the backing user.
// Password is optional; a temporary one is generated when it is left empty.
type ScholarCreateRequest struct {
	Username              string `json:"username" validate:"required,min=3,max=150"`
	Email                 string `json:"email" validate:"required,email"`
	Password              string `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName             string `json:"first_name" validate:"omitempty,max=150"`
	LastName              string `json:"last_name" validate:"omitempty,max=150"`
	Level                 string `json:"level" validate:"omitempty,max=50"`
	RequiredHoursPerMonth *int   `json:"required_hours_per_month" validate:"omitempty,gte=0"`
}

// ScholarUpdateRequest changes scholarship attributes.
type ScholarUpdateRequest struct {
	Level                 *string `json:"level" validate:"omitempty,max=50"`
	RequiredHoursPerMonth *int    `json:"required_hours_per_month" validate:"omitempty,gte=0"`
}

// ScholarCreatedResponse is returned once after registration. TemporaryPassword
// is never persisted or returned again; the user must change it at first login.
type ScholarCreatedResponse struct {
	ScholarID          uint   `json:"scholar_id"`
	UserID             uint   `json:"user_id"`
	Username           string `json:"username"`
	TemporaryPassword  string `json:"temporary_password"`
	MustChangePassword bool   `json:"must_change_password"`
}

// ScholarResponse serializes a scholar with its user.
type ScholarResponse struct {
	ID                    uint         `json:"id"`
	User                  UserResponse `json:"user"`
	Level                 string       `json:"level"`
	RequiredHoursPerMonth uint         `json:"required_hours_per_month"`
	CreatedAt             time.Time    `json:"created_at"`
}

// ScholarWithStatsResponse pairs a scholar with live statistics.
type ScholarWithStatsResponse struct {
	ScholarResponse
	Stats ScholarStatsResponse `json:"stats"`
}

// NewScholarResponse converts a scholar model into its DTO.
func NewScholarResponse(scholar models.Scholar) ScholarResponse {
	return ScholarResponse{
		ID:                    scholar.ID,
		User:                  NewUserResponse(scholar.User),
		Level:                 scholar.Level,
		RequiredHoursPerMonth: scholar.RequiredHoursPerMonth,
		CreatedAt:             scholar.CreatedAt,
	}
}
