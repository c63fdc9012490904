package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/service"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

// CategoryHandler exposes the activity category catalog.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "category_handler").Logger(),
	}
}

// Register attaches the read route available to every signed-in user.
func (h *CategoryHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

// RegisterAdmin attaches catalog management routes.
func (h *CategoryHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/", h.create)
	router.Delete("/:id", h.delete)
}

func (h *CategoryHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list categories")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list categories")
	}
	return utils.SendSuccess(c, "categories", items)
}

func (h *CategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.CategoryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	category, err := h.service.Create(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailure(c, err)
		case service.IsEmptyFieldError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryConflict):
			return utils.SendError(c, fiber.StatusConflict, "category already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create category")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "category created", category)
}

func (h *CategoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.service.Delete(c.UserContext(), id, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("category_id", id).Msg("failed to delete category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete category")
	}

	return utils.SendSuccess(c, "category deleted", nil)
}
