package dto

import "github.com/noah-isme/scholarship-api/internal/models"

// CategoryCreateRequest creates an activity category.
type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// CategoryResponse serializes an activity category.
type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewCategoryResponse converts a category model into its DTO.
func NewCategoryResponse(category models.ActivityCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}
