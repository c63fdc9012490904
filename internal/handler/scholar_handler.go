package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/service"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

// ScholarHandler serves the signed-in scholar's own profile, statistics and log.
type ScholarHandler struct {
	scholars   service.ScholarService
	stats      service.StatsService
	activities service.ActivityService
	logger     zerolog.Logger
}

// NewScholarHandler constructs the handler.
func NewScholarHandler(scholars service.ScholarService, stats service.StatsService, activities service.ActivityService, logger zerolog.Logger) *ScholarHandler {
	return &ScholarHandler{
		scholars:   scholars,
		stats:      stats,
		activities: activities,
		logger:     logger.With().Str("component", "scholar_handler").Logger(),
	}
}

// Register attaches self-service routes.
func (h *ScholarHandler) Register(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Get("/stats", h.statsForSelf)
	router.Get("/activities", h.activityLog)
	router.Get("/activities/recent", h.recentActivities)
}

func (h *ScholarHandler) profile(c *fiber.Ctx) error {
	profile, err := h.scholars.GetByUser(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.fail(c, err, "failed to load scholar profile")
	}
	return utils.SendSuccess(c, "scholar profile", profile)
}

func (h *ScholarHandler) statsForSelf(c *fiber.Ctx) error {
	stats, err := h.stats.ScholarStatsForUser(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.fail(c, err, "failed to compute statistics")
	}
	return utils.SendSuccess(c, "scholar statistics", stats)
}

func (h *ScholarHandler) activityLog(c *fiber.Ctx) error {
	items, err := h.activities.ListForUser(c.UserContext(), userIDFromContext(c), 0)
	if err != nil {
		return h.fail(c, err, "failed to list activities")
	}
	return utils.SendSuccess(c, "activities", items)
}

func (h *ScholarHandler) recentActivities(c *fiber.Ctx) error {
	items, err := h.activities.ListForUser(c.UserContext(), userIDFromContext(c), service.RecentActivityLimit)
	if err != nil {
		return h.fail(c, err, "failed to list activities")
	}
	return utils.SendSuccess(c, "recent activities", items)
}

func (h *ScholarHandler) fail(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, service.ErrScholarNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "scholar profile not found")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
