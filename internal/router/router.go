package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scholarship-api/internal/config"
	"github.com/noah-isme/scholarship-api/internal/handler"
	"github.com/noah-isme/scholarship-api/internal/middleware"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	ScholarHandler       *handler.ScholarHandler
	ActivityHandler      *handler.ActivityHandler
	CategoryHandler      *handler.CategoryHandler
	AdminActivityHandler *handler.AdminActivityHandler
	AdminScholarHandler  *handler.AdminScholarHandler
	AdminStatsHandler    *handler.AdminStatsHandler
	AuditHandler         *handler.AuditHandler
	SeedHandler          *handler.SeedHandler
	HealthProbes         map[string]handler.HealthProbe
	JWTMiddleware        fiber.Handler
	LoginLimiter         fiber.Handler
	EnableMetrics        bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	if deps.EnableMetrics {
		api.Get("/metrics", observability.MetricsHandler())
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication unavailable")
		}
	}
	passwordGuard := middleware.RequirePasswordChanged()

	// Public and token-only routes are registered before any group middleware
	// on overlapping prefixes so they are matched first.
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api.Group("/auth"), deps.LoginLimiter)
		deps.AuthHandler.RegisterAuthenticated(api.Group("/auth", jwtMiddleware))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/admin/seed"))
	}

	if deps.ScholarHandler != nil {
		scholar := api.Group("/scholar", jwtMiddleware, passwordGuard, middleware.RequireRole(models.RoleScholar))
		deps.ScholarHandler.Register(scholar)
	}
	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware, passwordGuard, middleware.RequireRole(models.RoleScholar))
		deps.ActivityHandler.Register(activities)
	}
	if deps.CategoryHandler != nil {
		categories := api.Group("/categories", jwtMiddleware, passwordGuard, middleware.RequireRole(models.RoleScholar, models.RoleAdmin))
		deps.CategoryHandler.Register(categories)
	}

	admin := api.Group("/admin", jwtMiddleware, passwordGuard, middleware.RequireRole(models.RoleAdmin))
	if deps.AdminStatsHandler != nil {
		deps.AdminStatsHandler.Register(admin)
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activities"))
	}
	if deps.AdminScholarHandler != nil {
		deps.AdminScholarHandler.Register(admin.Group("/scholars"))
	}
	if deps.CategoryHandler != nil {
		deps.CategoryHandler.RegisterAdmin(admin.Group("/categories"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(admin.Group("/audit-logs"))
	}
}
