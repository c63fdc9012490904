package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/scholarship-api/internal/models"
)

// CategoryRepository persists the activity category catalog.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.ActivityCategory, error)
	GetByID(ctx context.Context, id uint) (models.ActivityCategory, error)
	Create(ctx context.Context, category *models.ActivityCategory) error
	Delete(ctx context.Context, id uint) error
	UpsertBatch(ctx context.Context, categories []models.ActivityCategory) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs the category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.ActivityCategory, error) {
	var categories []models.ActivityCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (models.ActivityCategory, error) {
	var category models.ActivityCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return models.ActivityCategory{}, err
	}
	return category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.ActivityCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Delete detaches the category from every activity before removing it, so
// activities survive with no category regardless of the store's FK support.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Activity{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.ActivityCategory{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpsertBatch inserts categories whose name is not taken yet.
func (r *categoryRepository) UpsertBatch(ctx context.Context, categories []models.ActivityCategory) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&categories)
	return result.RowsAffected, result.Error
}
