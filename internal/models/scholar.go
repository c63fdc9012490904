package models

import "time"

// Scholar extends a scholar user with the attributes of their scholarship.
type Scholar struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Level                 string    `gorm:"size:50" json:"level"`
	RequiredHoursPerMonth uint      `gorm:"not null;default:0" json:"required_hours_per_month"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	User                  User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}
