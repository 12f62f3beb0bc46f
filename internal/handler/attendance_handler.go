package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scantrack/attendance-api/internal/dto"
	"github.com/scantrack/attendance-api/internal/middleware"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/service"
	"github.com/scantrack/attendance-api/internal/utils"
)

// AttendanceHandler exposes the scan endpoint and printable QR generation.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register wires attendance routes. Scanning is open to any authenticated
// kiosk credential; QR printing and the SMS audit trail are admin views.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Post("/attendance/scan", h.scan)
	router.Get("/students/:id/qr-code", middleware.RequireRole(models.RoleAdmin), h.printableCode)
	router.Get("/students/:id/sms-logs", middleware.RequireRole(models.RoleAdmin), h.smsHistory)
}

func (h *AttendanceHandler) scan(c *fiber.Ctx) error {
	var payload dto.ScanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.ProcessScan(c.UserContext(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQR):
			// One generic message for every integrity failure, so a probing
			// client learns nothing about which check tripped.
			return utils.SendError(c, fiber.StatusBadRequest, "invalid qr code")
		case errors.Is(err, service.ErrDuplicateScan):
			return utils.SendError(c, fiber.StatusTooManyRequests, "duplicate scan, please wait a moment")
		case errors.Is(err, service.ErrAlreadyCompleted):
			return utils.SendError(c, fiber.StatusConflict, "attendance already completed for today")
		case errors.Is(err, service.ErrNoActiveQuarter):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "no active quarter configured")
		default:
			h.logger.Error().Err(err).Msg("failed to process scan")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to process scan")
		}
	}

	message := "time in recorded"
	if result.Action == dto.ScanActionTimeOut {
		message = "time out recorded"
	}

	return utils.SendSuccess(c, message, result)
}

func (h *AttendanceHandler) printableCode(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || studentID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	result, err := h.service.GeneratePrintableCode(c.UserContext(), uint(studentID))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		h.logger.Error().Err(err).Uint64("student_id", studentID).Msg("failed to generate qr code")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to generate qr code")
	}

	return utils.SendSuccess(c, "qr code generated", result)
}

func (h *AttendanceHandler) smsHistory(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || studentID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	limit := c.QueryInt("limit")
	logs, err := h.service.SMSHistory(c.UserContext(), uint(studentID), limit)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		h.logger.Error().Err(err).Uint64("student_id", studentID).Msg("failed to list sms logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sms logs")
	}

	return utils.SendSuccess(c, "sms logs retrieved", logs)
}
