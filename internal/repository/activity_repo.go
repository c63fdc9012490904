package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholarship-api/internal/models"
)

// ErrActivityReviewed is returned by ApplyReview when RequirePending is set
// and a decision was already recorded.
var ErrActivityReviewed = errors.New("activity already reviewed")

// ActivityReview holds the fields written together by a review decision.
type ActivityReview struct {
	Status     models.ActivityStatus
	ReviewerID uint
	Comment    string
	ReviewedAt time.Time

	// RequirePending restricts the update to activities with no recorded review.
	RequirePending bool
}

// ActivityRepository persists logged activities and their reviews.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (models.Activity, error)
	ListByScholar(ctx context.Context, scholarID uint, limit int) ([]models.Activity, error)
	ListWithDetails(ctx context.Context, limit int) ([]models.Activity, error)
	ApplyReview(ctx context.Context, id uint, review ActivityReview) (models.Activity, error)
	ListForStats(ctx context.Context, scholarID *uint) ([]models.Activity, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error)
	ListInCalendarMonth(ctx context.Context, month time.Month) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.withDetails(ctx).First(&activity, id).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

// ListByScholar returns the scholar's activities, most recent activity date first.
// A non-positive limit returns every activity.
func (r *activityRepository) ListByScholar(ctx context.Context, scholarID uint, limit int) ([]models.Activity, error) {
	query := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Reviewer").
		Where("scholar_id = ?", scholarID).
		Order("activity_date DESC").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var activities []models.Activity
	err := query.Find(&activities).Error
	return activities, err
}

// ListWithDetails returns activities joined with scholar, user, category and
// reviewer, newest submission first.
func (r *activityRepository) ListWithDetails(ctx context.Context, limit int) ([]models.Activity, error) {
	query := r.withDetails(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var activities []models.Activity
	err := query.Find(&activities).Error
	return activities, err
}

// ApplyReview writes status, reviewer, comment and timestamp in a single
// statement. Without RequirePending concurrent reviews are last-write-wins.
func (r *activityRepository) ApplyReview(ctx context.Context, id uint, review ActivityReview) (models.Activity, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Where("id = ?", id)
	if review.RequirePending {
		query = query.Where("reviewed_at IS NULL")
	}
	result := query.
		Updates(map[string]interface{}{
			"status":         review.Status,
			"reviewed_by":    review.ReviewerID,
			"review_comment": review.Comment,
			"reviewed_at":    review.ReviewedAt,
		})
	if result.Error != nil {
		return models.Activity{}, result.Error
	}
	if result.RowsAffected == 0 {
		if !review.RequirePending {
			return models.Activity{}, gorm.ErrRecordNotFound
		}
		if _, err := r.GetByID(ctx, id); err != nil {
			return models.Activity{}, err
		}
		return models.Activity{}, ErrActivityReviewed
	}

	return r.GetByID(ctx, id)
}

// ListForStats loads the columns needed for aggregation, optionally scoped to one scholar.
func (r *activityRepository) ListForStats(ctx context.Context, scholarID *uint) ([]models.Activity, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("id", "scholar_id", "hours", "activity_date", "status")
	if scholarID != nil {
		query = query.Where("scholar_id = ?", *scholarID)
	}

	var activities []models.Activity
	err := query.Find(&activities).Error
	return activities, err
}

// ListBetween returns activities dated in [from, to).
func (r *activityRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("id", "scholar_id", "hours", "activity_date", "status").
		Where("activity_date >= ? AND activity_date < ?", from, to).
		Find(&activities).Error
	return activities, err
}

// ListInCalendarMonth returns activities dated in the given month of any year.
func (r *activityRepository) ListInCalendarMonth(ctx context.Context, month time.Month) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("id", "scholar_id", "hours", "activity_date", "status").
		Where(monthOf(r.db, "activity_date")+" = ?", int(month)).
		Find(&activities).Error
	return activities, err
}

func monthOf(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', " + column + ") AS INTEGER)"
	}
	return "EXTRACT(MONTH FROM " + column + ")"
}

func (r *activityRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Scholar").
		Preload("Scholar.User").
		Preload("Category").
		Preload("Reviewer")
}
