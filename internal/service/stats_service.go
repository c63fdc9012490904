package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

// ErrInvalidReportMonth indicates the report month is not in YYYY-MM form.
var ErrInvalidReportMonth = errors.New("invalid month parameter, expected YYYY-MM")

// StatsService computes live activity statistics. Results are never cached.
type StatsService interface {
	ScholarStats(ctx context.Context, scholarID uint) (dto.ScholarStatsResponse, error)
	ScholarStatsForUser(ctx context.Context, userID uint) (dto.ScholarStatsResponse, error)
	ScholarStatsIndex(ctx context.Context) (map[uint]dto.ScholarStatsResponse, error)
	FleetStats(ctx context.Context) (dto.FleetStatsResponse, error)
	MonthlyReport(ctx context.Context, month string) (dto.MonthlyReportResponse, error)
}

type statsService struct {
	activities repository.ActivityRepository
	scholars   repository.ScholarRepository
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewStatsService constructs the statistics service.
func NewStatsService(activities repository.ActivityRepository, scholars repository.ScholarRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		activities: activities,
		scholars:   scholars,
		logger:     logger.With().Str("component", "stats_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/scholarship-api/internal/service/stats"),
		now:        time.Now,
	}
}

func (s *statsService) ScholarStats(ctx context.Context, scholarID uint) (dto.ScholarStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stats.scholar", trace.WithAttributes(attribute.Int64("stats.scholar_id", int64(scholarID))))
	defer span.End()

	if _, err := s.scholars.GetByID(ctx, scholarID); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "scholar_not_found")
			return dto.ScholarStatsResponse{}, ErrScholarNotFound
		}
		span.SetStatus(codes.Error, "scholar_lookup_failed")
		return dto.ScholarStatsResponse{}, err
	}

	return s.aggregateScholar(ctx, span, scholarID)
}

func (s *statsService) ScholarStatsForUser(ctx context.Context, userID uint) (dto.ScholarStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stats.scholar_self", trace.WithAttributes(attribute.Int64("stats.user_id", int64(userID))))
	defer span.End()

	scholar, err := s.scholars.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "scholar_not_found")
			return dto.ScholarStatsResponse{}, ErrScholarNotFound
		}
		span.SetStatus(codes.Error, "scholar_lookup_failed")
		return dto.ScholarStatsResponse{}, err
	}

	return s.aggregateScholar(ctx, span, scholar.ID)
}

func (s *statsService) aggregateScholar(ctx context.Context, span trace.Span, scholarID uint) (dto.ScholarStatsResponse, error) {
	activities, err := s.activities.ListForStats(ctx, &scholarID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_activities_failed")
		return dto.ScholarStatsResponse{}, err
	}

	stats := computeScholarStats(scholarID, activities, s.now())
	span.SetAttributes(
		attribute.Int("stats.activity_count", len(activities)),
		attribute.Float64("stats.total_hours", stats.TotalHours),
	)
	return stats, nil
}

// ScholarStatsIndex aggregates every scholar's activities from one query.
// Scholars without activities are absent from the map.
func (s *statsService) ScholarStatsIndex(ctx context.Context) (map[uint]dto.ScholarStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stats.scholar_index")
	defer span.End()

	activities, err := s.activities.ListForStats(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_activities_failed")
		return nil, err
	}

	grouped := make(map[uint][]models.Activity)
	for _, activity := range activities {
		grouped[activity.ScholarID] = append(grouped[activity.ScholarID], activity)
	}

	now := s.now()
	index := make(map[uint]dto.ScholarStatsResponse, len(grouped))
	for scholarID, items := range grouped {
		index[scholarID] = computeScholarStats(scholarID, items, now)
	}
	span.SetAttributes(attribute.Int("stats.scholar_count", len(index)))
	return index, nil
}

func (s *statsService) FleetStats(ctx context.Context) (dto.FleetStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stats.fleet")
	defer span.End()

	total, err := s.scholars.Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_scholars_failed")
		return dto.FleetStatsResponse{}, err
	}

	now := s.now()
	activities, err := s.activities.ListInCalendarMonth(ctx, now.Month())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_activities_failed")
		return dto.FleetStatsResponse{}, err
	}

	stats := computeFleetStats(total, activities, now)
	span.SetAttributes(
		attribute.Int64("stats.total_scholars", stats.TotalScholars),
		attribute.Int64("stats.active_this_month", stats.ActiveThisMonth),
	)
	return stats, nil
}

func (s *statsService) MonthlyReport(ctx context.Context, month string) (dto.MonthlyReportResponse, error) {
	start, err := parseReportMonth(month)
	if err != nil {
		return dto.MonthlyReportResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "stats.monthly_report", trace.WithAttributes(attribute.String("stats.month", month)))
	defer span.End()

	scholars, err := s.scholars.ListWithUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_scholars_failed")
		return dto.MonthlyReportResponse{}, err
	}

	activities, err := s.activities.ListBetween(ctx, start, start.AddDate(0, 1, 0))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_activities_failed")
		return dto.MonthlyReportResponse{}, err
	}

	return dto.MonthlyReportResponse{
		Month:       start.Format("2006-01"),
		Scholars:    buildMonthlyReport(scholars, activities),
		GeneratedAt: s.now().UTC(),
	}, nil
}

func parseReportMonth(month string) (time.Time, error) {
	if len(month) != len("2006-01") {
		return time.Time{}, ErrInvalidReportMonth
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidReportMonth, err)
	}
	return start, nil
}
