package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scantrack/attendance-api/internal/dto"
	"github.com/scantrack/attendance-api/internal/middleware"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/service"
	"github.com/scantrack/attendance-api/internal/utils"
)

// QuarterHandler exposes the active grading period.
type QuarterHandler struct {
	service service.QuarterService
	logger  zerolog.Logger
}

// NewQuarterHandler constructs a quarter handler.
func NewQuarterHandler(service service.QuarterService, logger zerolog.Logger) *QuarterHandler {
	return &QuarterHandler{
		service: service,
		logger:  logger.With().Str("component", "quarter_handler").Logger(),
	}
}

// Register wires quarter routes. Moving the start time is an admin action.
func (h *QuarterHandler) Register(router fiber.Router) {
	router.Get("/current", h.current)
	router.Patch("/current/start-time", middleware.RequireRole(models.RoleAdmin), h.updateStartTime)
}

func (h *QuarterHandler) current(c *fiber.Ctx) error {
	quarter, err := h.service.Current(c.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveQuarter) {
			return utils.SendError(c, fiber.StatusNotFound, "no active quarter configured")
		}
		h.logger.Error().Err(err).Msg("failed to load active quarter")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load active quarter")
	}

	return utils.SendSuccess(c, "active quarter retrieved", quarter)
}

func (h *QuarterHandler) updateStartTime(c *fiber.Ctx) error {
	var payload dto.UpdateStartTimeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quarter, err := h.service.UpdateStartTime(c.UserContext(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid start time, expected HH:MM or HH:MM:SS")
		case errors.Is(err, service.ErrNoActiveQuarter):
			return utils.SendError(c, fiber.StatusNotFound, "no active quarter configured")
		default:
			h.logger.Error().Err(err).Msg("failed to update quarter start time")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update quarter start time")
		}
	}

	return utils.SendSuccess(c, "quarter start time updated", quarter)
}
