package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/handler"
	"github.com/scantrack/attendance-api/internal/middleware"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AttendanceHandler   *handler.AttendanceHandler
	NotificationHandler *handler.NotificationHandler
	QuarterHandler      *handler.QuarterHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Scans come from kiosk devices holding a staff credential; QR printing
	// is an admin concern. The limiter caps a runaway kiosk, not students:
	// per-student pacing is the dedupe guard's job.
	if deps.AttendanceHandler != nil {
		attendance := app.Group("/api/v1", jwtMiddleware,
			middleware.RateLimit("attendance", 120, time.Minute))
		deps.AttendanceHandler.Register(attendance)
	}

	// Notification feed for homeroom teachers; the absence sweep trigger is
	// admin-only.
	if deps.NotificationHandler != nil {
		notifications := app.Group("/api/v1/notifications", jwtMiddleware,
			middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.NotificationHandler.Register(notifications)
	}

	if deps.QuarterHandler != nil {
		quarters := app.Group("/api/v1/quarters", jwtMiddleware,
			middleware.RequireRole(models.RoleAdmin, models.RoleTeacher, models.RoleStaff))
		deps.QuarterHandler.Register(quarters)
	}
}
