package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

const temporaryPasswordLength = 16

// ScholarService manages the scholar registry.
type ScholarService interface {
	Register(ctx context.Context, payload dto.ScholarCreateRequest, actor Actor) (dto.ScholarCreatedResponse, error)
	GetByUser(ctx context.Context, userID uint) (dto.ScholarResponse, error)
	Get(ctx context.Context, id uint) (dto.ScholarResponse, error)
	Update(ctx context.Context, id uint, payload dto.ScholarUpdateRequest, actor Actor) (dto.ScholarResponse, error)
	ListWithStats(ctx context.Context) ([]dto.ScholarWithStatsResponse, error)
}

type scholarService struct {
	scholars   repository.ScholarRepository
	stats      StatsService
	validator  *validator.Validate
	audit      AuditRecorder
	bcryptCost int
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewScholarService constructs the scholar registry service.
func NewScholarService(scholars repository.ScholarRepository, stats StatsService, validate *validator.Validate, audit AuditRecorder, bcryptCost int, logger zerolog.Logger) ScholarService {
	return &scholarService{
		scholars:   scholars,
		stats:      stats,
		validator:  validate,
		audit:      audit,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "scholar_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/scholarship-api/internal/service/scholar"),
	}
}

// Register creates the scholar user and profile together. The password, given
// or generated, is returned exactly once and must be changed at first login.
func (s *scholarService) Register(ctx context.Context, payload dto.ScholarCreateRequest, actor Actor) (dto.ScholarCreatedResponse, error) {
	ctx, span := s.tracer.Start(ctx, "scholar.register", trace.WithAttributes(attribute.Int64("scholar.actor_id", int64(actor.ID))))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ScholarCreatedResponse{}, err
	}
	if err := checkPasswordBytes("password", payload.Password); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ScholarCreatedResponse{}, err
	}

	password := payload.Password
	if password == "" {
		generated, err := auth.GenerateTemporaryPassword(temporaryPasswordLength)
		if err != nil {
			span.RecordError(err)
			return dto.ScholarCreatedResponse{}, err
		}
		password = generated
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		return dto.ScholarCreatedResponse{}, err
	}

	requiredHours := 0
	if payload.RequiredHoursPerMonth != nil {
		requiredHours = *payload.RequiredHoursPerMonth
	}

	user := models.User{
		Username:           strings.TrimSpace(payload.Username),
		Email:              strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash:       hash,
		FirstName:          strings.TrimSpace(payload.FirstName),
		LastName:           strings.TrimSpace(payload.LastName),
		Role:               models.RoleScholar,
		MustChangePassword: true,
	}
	scholar := models.Scholar{
		Level:                 strings.TrimSpace(payload.Level),
		RequiredHoursPerMonth: uint(requiredHours),
	}

	if err := s.scholars.CreateWithUser(ctx, &user, &scholar); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "scholar_conflict")
			return dto.ScholarCreatedResponse{}, ErrScholarConflict
		}
		span.SetStatus(codes.Error, "scholar_create_failed")
		return dto.ScholarCreatedResponse{}, err
	}

	scholarID := scholar.ID
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "scholar.registered",
		EntityType: "scholar",
		EntityID:   &scholarID,
		Metadata: map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
			"email":    user.Email,
			"level":    scholar.Level,
		},
	})

	return dto.ScholarCreatedResponse{
		ScholarID:          scholar.ID,
		UserID:             user.ID,
		Username:           user.Username,
		TemporaryPassword:  password,
		MustChangePassword: true,
	}, nil
}

func (s *scholarService) GetByUser(ctx context.Context, userID uint) (dto.ScholarResponse, error) {
	scholar, err := s.scholars.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScholarResponse{}, ErrScholarNotFound
		}
		return dto.ScholarResponse{}, err
	}
	return dto.NewScholarResponse(scholar), nil
}

func (s *scholarService) Get(ctx context.Context, id uint) (dto.ScholarResponse, error) {
	scholar, err := s.scholars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScholarResponse{}, ErrScholarNotFound
		}
		return dto.ScholarResponse{}, err
	}
	return dto.NewScholarResponse(scholar), nil
}

func (s *scholarService) Update(ctx context.Context, id uint, payload dto.ScholarUpdateRequest, actor Actor) (dto.ScholarResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScholarResponse{}, err
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0, 2)
	if payload.Level != nil {
		updates["level"] = strings.TrimSpace(*payload.Level)
		changed = append(changed, "level")
	}
	if payload.RequiredHoursPerMonth != nil {
		updates["required_hours_per_month"] = uint(*payload.RequiredHoursPerMonth)
		changed = append(changed, "required_hours_per_month")
	}

	scholar, err := s.scholars.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScholarResponse{}, ErrScholarNotFound
		}
		return dto.ScholarResponse{}, err
	}

	if len(changed) > 0 {
		scholarID := scholar.ID
		recordAudit(ctx, s.audit, s.logger, AuditEntry{
			Actor:      actor,
			Action:     "scholar.updated",
			EntityType: "scholar",
			EntityID:   &scholarID,
			Metadata:   map[string]interface{}{"fields": changed},
		})
	}

	return dto.NewScholarResponse(scholar), nil
}

// ListWithStats returns every scholar with live statistics, ordered by name.
func (s *scholarService) ListWithStats(ctx context.Context) ([]dto.ScholarWithStatsResponse, error) {
	scholars, err := s.scholars.ListWithUsers(ctx)
	if err != nil {
		return nil, err
	}

	index, err := s.stats.ScholarStatsIndex(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ScholarWithStatsResponse, 0, len(scholars))
	for _, scholar := range scholars {
		stats, ok := index[scholar.ID]
		if !ok {
			stats = dto.ScholarStatsResponse{ScholarID: scholar.ID}
		}
		result = append(result, dto.ScholarWithStatsResponse{
			ScholarResponse: dto.NewScholarResponse(scholar),
			Stats:           stats,
		})
	}
	return result, nil
}
