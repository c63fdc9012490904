package models

import "time"

// ActivityStatus is the review state of a logged activity.
type ActivityStatus string

const (
	// ActivityStatusPending marks an activity waiting for review.
	ActivityStatusPending ActivityStatus = "pending"
	// ActivityStatusApproved marks an activity accepted by an administrator.
	ActivityStatusApproved ActivityStatus = "approved"
	// ActivityStatusRejected marks an activity declined by an administrator.
	ActivityStatusRejected ActivityStatus = "rejected"
)

// IsReviewDecision reports whether the status is a terminal review outcome.
func (s ActivityStatus) IsReviewDecision() bool {
	return s == ActivityStatusApproved || s == ActivityStatusRejected
}

// Activity is a block of community service hours logged by a scholar.
type Activity struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ScholarID     uint              `gorm:"not null;index" json:"scholar_id"`
	CategoryID    *uint             `gorm:"index" json:"category_id"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	Hours         float64           `gorm:"not null" json:"hours"`
	ActivityDate  time.Time         `gorm:"type:date;not null;index" json:"activity_date"`
	Status        ActivityStatus    `gorm:"size:20;not null;default:pending;index" json:"status"`
	ReviewedBy    *uint             `json:"reviewed_by"`
	ReviewComment *string           `gorm:"type:text" json:"review_comment"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ReviewedAt    *time.Time        `json:"reviewed_at"`
	Scholar       Scholar           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"scholar"`
	Category      *ActivityCategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category"`
	Reviewer      *User             `gorm:"foreignKey:ReviewedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"reviewer"`
}

// IsReviewed reports whether a review decision has been recorded.
func (a Activity) IsReviewed() bool {
	return a.ReviewedAt != nil
}
