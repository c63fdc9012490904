package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/service"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

const maxActivityFeedLimit = 500

// AdminActivityHandler exposes the activity feed and review endpoints.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/recent", h.recent)
	router.Post("/:id/approve", h.review(models.ActivityStatusApproved))
	router.Post("/:id/reject", h.review(models.ActivityStatusRejected))
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit > maxActivityFeedLimit {
		limit = maxActivityFeedLimit
	}

	items, err := h.service.ListWithDetails(c.UserContext(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities", items)
}

func (h *AdminActivityHandler) recent(c *fiber.Ctx) error {
	items, err := h.service.ListWithDetails(c.UserContext(), service.RecentActivityLimit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list recent activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.SendSuccess(c, "recent activities", items)
}

func (h *AdminActivityHandler) review(decision models.ActivityStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		activityID, err := parseUintParam(c, "id")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
		}

		var payload dto.ActivityReviewRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&payload); err != nil {
				return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
			}
		}

		reviewer, err := h.service.AuthorizeReviewer(c.UserContext(), actorFromContext(c))
		if err != nil {
			if errors.Is(err, service.ErrReviewForbidden) {
				return utils.SendError(c, fiber.StatusForbidden, "only administrators can review activities")
			}
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to verify reviewer")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to review activity")
		}

		activity, err := h.service.Review(c.UserContext(), activityID, decision, reviewer, payload)
		if err != nil {
			switch {
			case isValidationError(err):
				return validationFailure(c, err)
			case errors.Is(err, service.ErrActivityNotFound):
				return utils.SendError(c, fiber.StatusNotFound, "activity not found")
			case errors.Is(err, service.ErrActivityAlreadyReviewed):
				return utils.SendError(c, fiber.StatusConflict, "activity already reviewed")
			case errors.Is(err, service.ErrReviewForbidden):
				return utils.SendError(c, fiber.StatusForbidden, "only administrators can review activities")
			default:
				requestLogger(h.logger, c).Error().Err(err).Uint("activity_id", activityID).Msg("failed to review activity")
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to review activity")
			}
		}

		message := "activity approved"
		if decision == models.ActivityStatusRejected {
			message = "activity rejected"
		}
		return utils.SendSuccess(c, message, activity)
	}
}
