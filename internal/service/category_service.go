package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/observability"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

const categoryCacheKey = "categories:all:v1"

// CategoryService manages activity categories.
type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, payload dto.CategoryCreateRequest, actor Actor) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	Invalidate(ctx context.Context)
}

type categoryService struct {
	repo      repository.CategoryRepository
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCategoryService constructs the category service. A nil cache disables caching.
func NewCategoryService(repo repository.CategoryRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) CategoryService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &categoryService{
		repo:      repo,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "category_service").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, categoryCacheKey).Result()
		switch {
		case err == nil && cached != "":
			var response []dto.CategoryResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				observability.CategoryCacheRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		case err != nil && !errors.Is(err, redis.Nil):
			observability.CategoryCacheRequests().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Msg("failed to read category cache")
		}
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, dto.NewCategoryResponse(category))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, categoryCacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache categories")
			}
		}
		observability.CategoryCacheRequests().WithLabelValues("miss").Inc()
	}

	return response, nil
}

func (s *categoryService) Create(ctx context.Context, payload dto.CategoryCreateRequest, actor Actor) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.ActivityCategory{
		Name:        sanitizeText(s.sanitizer, payload.Name),
		Description: sanitizeText(s.sanitizer, payload.Description),
	}
	if category.Name == "" {
		return dto.CategoryResponse{}, errEmptyAfterSanitize("name")
	}

	if err := s.repo.Create(ctx, &category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CategoryResponse{}, ErrCategoryConflict
		}
		return dto.CategoryResponse{}, err
	}
	s.Invalidate(ctx)

	categoryID := category.ID
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "category.created",
		EntityType: "activity_category",
		EntityID:   &categoryID,
		Metadata:   map[string]interface{}{"name": category.Name},
	})

	return dto.NewCategoryResponse(category), nil
}

// Delete removes a category. Activities that referenced it keep existing
// with no category.
func (s *categoryService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.Invalidate(ctx)

	categoryID := id
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "category.deleted",
		EntityType: "activity_category",
		EntityID:   &categoryID,
	})
	return nil
}

// Invalidate drops the cached category list.
func (s *categoryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, categoryCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate category cache")
	}
}
