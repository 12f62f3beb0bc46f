package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scantrack/attendance-api/internal/middleware"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/service"
	"github.com/scantrack/attendance-api/internal/utils"
)

// NotificationHandler serves a teacher's notification feed.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register wires notification routes. Forcing a sweep outside the scheduled
// cadence is an admin action.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/read", h.markRead)
	router.Post("/absence-check", middleware.RequireRole(models.RoleAdmin), h.absenceCheck)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	teacherID := middleware.UserIDFromContext(c)
	if teacherID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(c.UserContext(), teacherID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Str("teacher_id", teacherID).Msg("failed to list notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	teacherID := middleware.UserIDFromContext(c)
	if teacherID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.service.MarkRead(c.UserContext(), uint(id), teacherID)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		h.logger.Error().Err(err).Uint64("notification_id", id).Msg("failed to mark notification read")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update notification")
	}

	return utils.SendSuccess(c, "notification marked as read", notification)
}

func (h *NotificationHandler) absenceCheck(c *fiber.Ctx) error {
	summary, err := h.service.CheckConsecutiveAbsences(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("absence check failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "absence check failed")
	}

	return utils.SendSuccess(c, "absence check completed", summary)
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
