package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/service"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

// ActivityHandler accepts activity submissions from scholars.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches submission routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("/", h.submit)
}

func (h *ActivityHandler) submit(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	activity, err := h.service.Submit(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailure(c, err)
		case service.IsEmptyFieldError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusBadRequest, "category not found")
		case errors.Is(err, service.ErrScholarNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "scholar profile not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit activity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit activity")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity submitted", activity)
}
