package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/service"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

// AdminStatsHandler serves program-wide statistics and compliance reports.
type AdminStatsHandler struct {
	service service.StatsService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAdminStatsHandler constructs the handler.
func NewAdminStatsHandler(service service.StatsService, logger zerolog.Logger) *AdminStatsHandler {
	return &AdminStatsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_stats_handler").Logger(),
		now:     time.Now,
	}
}

// Register attaches statistics routes to the admin group.
func (h *AdminStatsHandler) Register(router fiber.Router) {
	router.Get("/stats", h.fleet)
	router.Get("/reports/monthly", h.monthly)
}

func (h *AdminStatsHandler) fleet(c *fiber.Ctx) error {
	stats, err := h.service.FleetStats(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute fleet statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute statistics")
	}
	return utils.SendSuccess(c, "program statistics", stats)
}

func (h *AdminStatsHandler) monthly(c *fiber.Ctx) error {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = h.now().Format("2006-01")
	}

	report, err := h.service.MonthlyReport(c.UserContext(), month)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReportMonth) {
			return utils.SendError(c, fiber.StatusBadRequest, service.ErrInvalidReportMonth.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Str("month", month).Msg("failed to build monthly report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build report")
	}
	return utils.SendSuccess(c, "monthly report", report)
}
