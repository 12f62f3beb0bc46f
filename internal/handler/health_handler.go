package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/utils"
)

// HealthResponse is the payload kiosks poll before opening the gate queue.
// SchoolTime lets an operator spot a drifted kiosk clock at a glance.
type HealthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	SchoolTime  time.Time `json:"school_time"`
}

// HealthCheck reports liveness and the server's view of local school time.
func HealthCheck(cfg config.Config) fiber.Handler {
	loc, err := time.LoadLocation(cfg.SchoolTimezone)
	if err != nil {
		loc = time.UTC
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			SchoolTime:  time.Now().In(loc),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
