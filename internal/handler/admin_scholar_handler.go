package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/service"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

// AdminScholarHandler manages the scholar registry.
type AdminScholarHandler struct {
	scholars service.ScholarService
	stats    service.StatsService
	logger   zerolog.Logger
}

// NewAdminScholarHandler constructs the handler.
func NewAdminScholarHandler(scholars service.ScholarService, stats service.StatsService, logger zerolog.Logger) *AdminScholarHandler {
	return &AdminScholarHandler{
		scholars: scholars,
		stats:    stats,
		logger:   logger.With().Str("component", "admin_scholar_handler").Logger(),
	}
}

// Register attaches scholar management routes.
func (h *AdminScholarHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Get("/:id/stats", h.scholarStats)
}

func (h *AdminScholarHandler) list(c *fiber.Ctx) error {
	items, err := h.scholars.ListWithStats(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list scholars")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list scholars")
	}
	return utils.SendSuccess(c, "scholars", items)
}

func (h *AdminScholarHandler) create(c *fiber.Ctx) error {
	var payload dto.ScholarCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	created, err := h.scholars.Register(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailure(c, err)
		case errors.Is(err, service.ErrScholarConflict):
			return utils.SendError(c, fiber.StatusConflict, "username or email already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to register scholar")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register scholar")
		}
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "scholar registered", created)
}

func (h *AdminScholarHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scholar id")
	}

	scholar, err := h.scholars.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "failed to load scholar")
	}
	return utils.SendSuccess(c, "scholar", scholar)
}

func (h *AdminScholarHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scholar id")
	}

	var payload dto.ScholarUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	scholar, err := h.scholars.Update(c.UserContext(), id, payload, actorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return validationFailure(c, err)
		}
		return h.fail(c, err, "failed to update scholar")
	}
	return utils.SendSuccess(c, "scholar updated", scholar)
}

func (h *AdminScholarHandler) scholarStats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scholar id")
	}

	stats, err := h.stats.ScholarStats(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "failed to compute statistics")
	}
	return utils.SendSuccess(c, "scholar statistics", stats)
}

func (h *AdminScholarHandler) fail(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, service.ErrScholarNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "scholar not found")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
