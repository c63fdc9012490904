package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholarship-api/internal/models"
)

// ScholarRepository persists scholars and their backing users.
type ScholarRepository interface {
	CreateWithUser(ctx context.Context, user *models.User, scholar *models.Scholar) error
	GetByID(ctx context.Context, id uint) (models.Scholar, error)
	GetByUserID(ctx context.Context, userID uint) (models.Scholar, error)
	ListWithUsers(ctx context.Context) ([]models.Scholar, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Scholar, error)
}

type scholarRepository struct {
	db *gorm.DB
}

// NewScholarRepository constructs the scholar repository.
func NewScholarRepository(db *gorm.DB) ScholarRepository {
	return &scholarRepository{db: db}
}

// CreateWithUser inserts the user and the scholar in one transaction; a
// failure on either row leaves neither behind.
func (r *scholarRepository) CreateWithUser(ctx context.Context, user *models.User, scholar *models.Scholar) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return gorm.ErrDuplicatedKey
		}

		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}

		scholar.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(scholar).Error; err != nil {
			return err
		}
		scholar.User = *user
		return nil
	})
}

func (r *scholarRepository) GetByID(ctx context.Context, id uint) (models.Scholar, error) {
	var scholar models.Scholar
	if err := r.db.WithContext(ctx).Preload("User").First(&scholar, id).Error; err != nil {
		return models.Scholar{}, err
	}
	return scholar, nil
}

func (r *scholarRepository) GetByUserID(ctx context.Context, userID uint) (models.Scholar, error) {
	var scholar models.Scholar
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&scholar).Error; err != nil {
		return models.Scholar{}, err
	}
	return scholar, nil
}

func (r *scholarRepository) ListWithUsers(ctx context.Context) ([]models.Scholar, error) {
	var scholars []models.Scholar
	err := r.db.WithContext(ctx).
		Joins("User").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Table: "User", Name: "first_name"}},
			{Column: clause.Column{Table: "User", Name: "last_name"}},
			{Column: clause.Column{Table: "User", Name: "username"}},
		}}).
		Find(&scholars).Error
	return scholars, err
}

func (r *scholarRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Scholar{}).Count(&count).Error
	return count, err
}

func (r *scholarRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Scholar, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Scholar{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return models.Scholar{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.Scholar{}, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(ctx, id)
}
