package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/observability"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

// RecentActivityLimit bounds the "recent activity" feeds.
const RecentActivityLimit = 10

// Reviewer is a verified administrator identity. It can only be obtained from
// ActivityService.AuthorizeReviewer, so a raw user id is never trusted.
type Reviewer struct {
	id       uint
	username string
}

// ID returns the reviewing user's id.
func (r Reviewer) ID() uint { return r.id }

// Username returns the reviewing user's username.
func (r Reviewer) Username() string { return r.username }

// ActivityServiceOptions tunes the review workflow.
type ActivityServiceOptions struct {
	// AllowReReview permits overwriting an earlier approve/reject decision.
	AllowReReview bool
}

// ActivityService owns logged activities and their review workflow.
type ActivityService interface {
	Submit(ctx context.Context, userID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	AuthorizeReviewer(ctx context.Context, actor Actor) (Reviewer, error)
	Review(ctx context.Context, activityID uint, decision models.ActivityStatus, reviewer Reviewer, payload dto.ActivityReviewRequest) (dto.ActivityResponse, error)
	ListForUser(ctx context.Context, userID uint, limit int) ([]dto.ActivityResponse, error)
	ListWithDetails(ctx context.Context, limit int) ([]dto.ActivityResponse, error)
}

type activityService struct {
	activities repository.ActivityRepository
	scholars   repository.ScholarRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	validator  *validator.Validate
	audit      AuditRecorder
	events     ActivityEventPublisher
	sanitizer  *bluemonday.Policy
	options    ActivityServiceOptions
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewActivityService constructs the activity service.
func NewActivityService(
	activities repository.ActivityRepository,
	scholars repository.ScholarRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	audit AuditRecorder,
	events ActivityEventPublisher,
	options ActivityServiceOptions,
	logger zerolog.Logger,
) ActivityService {
	return &activityService{
		activities: activities,
		scholars:   scholars,
		categories: categories,
		users:      users,
		validator:  validate,
		audit:      audit,
		events:     events,
		sanitizer:  bluemonday.StrictPolicy(),
		options:    options,
		logger:     logger.With().Str("component", "activity_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/scholarship-api/internal/service/activity"),
		now:        time.Now,
	}
}

func (s *activityService) Submit(ctx context.Context, userID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	scholar, err := s.scholars.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrScholarNotFound
		}
		return dto.ActivityResponse{}, err
	}

	activityDate, err := time.Parse(dto.DateLayout, payload.ActivityDate)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	var category *models.ActivityCategory
	if payload.CategoryID != nil {
		found, err := s.categories.GetByID(ctx, *payload.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ActivityResponse{}, ErrCategoryNotFound
			}
			return dto.ActivityResponse{}, err
		}
		category = &found
	}

	activity := models.Activity{
		ScholarID:    scholar.ID,
		CategoryID:   payload.CategoryID,
		Description:  sanitizeText(s.sanitizer, payload.Description),
		Hours:        payload.Hours,
		ActivityDate: activityDate,
		Status:       models.ActivityStatusPending,
	}
	if activity.Description == "" {
		return dto.ActivityResponse{}, errEmptyAfterSanitize("description")
	}

	if err := s.activities.Create(ctx, &activity); err != nil {
		s.logger.Error().Err(err).Uint("scholar_id", scholar.ID).Msg("failed to create activity")
		return dto.ActivityResponse{}, err
	}
	activity.Category = category

	observability.ActivitySubmissions().Inc()
	publishActivityEvent(ctx, s.events, s.logger, newActivityEvent(EventActivitySubmitted, activity))

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) AuthorizeReviewer(ctx context.Context, actor Actor) (Reviewer, error) {
	if actor.ID == 0 {
		return Reviewer{}, ErrReviewForbidden
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Reviewer{}, ErrReviewForbidden
		}
		return Reviewer{}, err
	}
	if !user.IsAdmin() {
		return Reviewer{}, ErrReviewForbidden
	}

	return Reviewer{id: user.ID, username: user.Username}, nil
}

func (s *activityService) Review(ctx context.Context, activityID uint, decision models.ActivityStatus, reviewer Reviewer, payload dto.ActivityReviewRequest) (dto.ActivityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity.review", trace.WithAttributes(
		attribute.Int64("review.activity_id", int64(activityID)),
		attribute.Int64("review.reviewer_id", int64(reviewer.id)),
		attribute.String("review.decision", string(decision)),
	))
	defer span.End()

	if reviewer.id == 0 {
		span.SetStatus(codes.Error, "reviewer_not_verified")
		return dto.ActivityResponse{}, ErrReviewForbidden
	}
	if !decision.IsReviewDecision() {
		span.SetStatus(codes.Error, "invalid_decision")
		return dto.ActivityResponse{}, ErrInvalidReviewDecision
	}
	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ActivityResponse{}, err
	}

	activity, err := s.activities.ApplyReview(ctx, activityID, repository.ActivityReview{
		Status:         decision,
		ReviewerID:     reviewer.id,
		Comment:        sanitizeText(s.sanitizer, payload.Comment),
		ReviewedAt:     s.now().UTC(),
		RequirePending: !s.options.AllowReReview,
	})
	if err != nil {
		return dto.ActivityResponse{}, s.reviewLookupError(span, err)
	}

	observability.ActivityReviews().WithLabelValues(string(decision)).Inc()
	activityID = activity.ID
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      Actor{ID: reviewer.id, Role: models.RoleAdmin},
		Action:     "activity.reviewed",
		EntityType: "activity",
		EntityID:   &activityID,
		Metadata: map[string]interface{}{
			"decision":   string(decision),
			"scholar_id": activity.ScholarID,
			"hours":      activity.Hours,
		},
	})
	publishActivityEvent(ctx, s.events, s.logger, newActivityEvent(EventActivityReviewed, activity))

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) reviewLookupError(span trace.Span, err error) error {
	span.RecordError(err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		span.SetStatus(codes.Error, "activity_not_found")
		return ErrActivityNotFound
	case errors.Is(err, repository.ErrActivityReviewed):
		span.SetStatus(codes.Error, "already_reviewed")
		return ErrActivityAlreadyReviewed
	}
	span.SetStatus(codes.Error, "activity_update_failed")
	return err
}

// ListForUser returns the activity log of the scholar linked to userID.
func (s *activityService) ListForUser(ctx context.Context, userID uint, limit int) ([]dto.ActivityResponse, error) {
	scholar, err := s.scholars.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScholarNotFound
		}
		return nil, err
	}

	activities, err := s.activities.ListByScholar(ctx, scholar.ID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponses(activities), nil
}

// ListWithDetails returns the admin activity feed, newest first.
func (s *activityService) ListWithDetails(ctx context.Context, limit int) ([]dto.ActivityResponse, error) {
	activities, err := s.activities.ListWithDetails(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponses(activities), nil
}

// sanitizeText strips markup and stores the remaining text unescaped, so
// "Food bank & shelter" round-trips unchanged.
func sanitizeText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

type emptyFieldError string

func (e emptyFieldError) Error() string {
	return string(e) + " is empty after sanitization"
}

func errEmptyAfterSanitize(field string) error {
	return emptyFieldError(field)
}

// IsEmptyFieldError reports whether err was caused by a field that sanitized to nothing.
func IsEmptyFieldError(err error) bool {
	var target emptyFieldError
	return errors.As(err, &target)
}
