package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/dto"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/observability"
	"github.com/scantrack/attendance-api/internal/repository"
)

// NotificationService creates and serves teacher notifications. It implements
// Notifier for the attendance core.
type NotificationService interface {
	Notifier
	List(ctx context.Context, teacherID string, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id uint, teacherID string) (dto.NotificationResponse, error)
	CheckConsecutiveAbsences(ctx context.Context) (dto.AbsenceSweepResponse, error)
	StartAbsenceSweep(ctx context.Context)
}

type notificationService struct {
	notifications repository.NotificationRepository
	students      repository.StudentRepository
	attendance    repository.AttendanceRepository
	clock         *clock.SchoolClock
	policy        config.LatePolicy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewNotificationService constructs the dispatcher.
func NewNotificationService(
	notifications repository.NotificationRepository,
	students repository.StudentRepository,
	attendance repository.AttendanceRepository,
	schoolClock *clock.SchoolClock,
	policy config.LatePolicy,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		students:      students,
		attendance:    attendance,
		clock:         schoolClock,
		policy:        policy,
		logger:        logger.With().Str("component", "notification_service").Logger(),
		tracer:        otel.Tracer("github.com/scantrack/attendance-api/internal/service/notification"),
	}
}

// NotifyLateThreshold persists the one in-app alert a threshold crossing
// produces. The caller has already claimed the per-quarter flag, so this
// method is only ever invoked once per (student, quarter).
func (s *notificationService) NotifyLateThreshold(ctx context.Context, student models.Student, totalLateMinutes int) error {
	ctx, span := s.tracer.Start(ctx, "notifications.late_threshold",
		trace.WithAttributes(attribute.Int("student.id", int(student.ID))))
	defer span.End()

	if student.AdviserID == "" {
		s.logger.Warn().Uint("student_id", student.ID).Msg("student has no adviser, skipping threshold notification")
		return nil
	}

	notification := models.Notification{
		StudentID: student.ID,
		TeacherID: student.AdviserID,
		Type:      models.NotificationTypeAlert,
		Message: fmt.Sprintf("%s has exceeded the %d-minute late threshold with %d minutes of tardiness this quarter.",
			student.FullName(), s.policy.ThresholdMinutes, totalLateMinutes),
		Status: models.NotificationStatusSent,
		SentAt: s.clock.Now(),
	}

	if err := s.notifications.Create(ctx, &notification); err != nil {
		span.RecordError(err)
		return fmt.Errorf("persist threshold notification: %w", err)
	}

	observability.Notifications().WithLabelValues(string(models.NotificationTypeAlert)).Inc()
	s.logger.Info().Uint("student_id", student.ID).Str("teacher_id", student.AdviserID).
		Int("total_late_minutes", totalLateMinutes).Msg("late threshold notification created")

	return nil
}

func (s *notificationService) List(ctx context.Context, teacherID string, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.notifications.ListByTeacher(ctx, teacherID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, teacherID string) (dto.NotificationResponse, error) {
	notification, err := s.notifications.MarkRead(ctx, id, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}
	return dto.NewNotificationResponse(notification), nil
}

// CheckConsecutiveAbsences emits one Absence notification per advisee who has
// no attendance record on every one of the last N school days. Weekends and
// calendar holidays never count as absences.
func (s *notificationService) CheckConsecutiveAbsences(ctx context.Context) (dto.AbsenceSweepResponse, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.absence_sweep")
	defer span.End()

	window, err := s.clock.PreviousSchoolDays(ctx, s.clock.BusinessDate(), s.policy.AbsenceWindowDays)
	if err != nil {
		return dto.AbsenceSweepResponse{}, fmt.Errorf("resolve school-day window: %w", err)
	}
	if len(window) < s.policy.AbsenceWindowDays {
		return dto.AbsenceSweepResponse{}, nil
	}
	windowStart := window[len(window)-1]

	students, err := s.students.ListActive(ctx)
	if err != nil {
		return dto.AbsenceSweepResponse{}, fmt.Errorf("list students: %w", err)
	}

	summary := dto.AbsenceSweepResponse{StudentsChecked: len(students)}

	for _, student := range students {
		if student.AdviserID == "" {
			continue
		}

		present, err := s.attendance.ExistsForDates(ctx, student.ID, window)
		if err != nil {
			return summary, fmt.Errorf("check attendance window for student %d: %w", student.ID, err)
		}
		if present {
			continue
		}

		alreadyNotified, err := s.notifications.ExistsSince(ctx, student.ID, models.NotificationTypeAbsence, windowStart)
		if err != nil {
			return summary, fmt.Errorf("check existing absence notification: %w", err)
		}
		if alreadyNotified {
			continue
		}

		notification := models.Notification{
			StudentID: student.ID,
			TeacherID: student.AdviserID,
			Type:      models.NotificationTypeAbsence,
			Message: fmt.Sprintf("%s has been absent for the last %d school days.",
				student.FullName(), s.policy.AbsenceWindowDays),
			Status: models.NotificationStatusSent,
			SentAt: s.clock.Now(),
		}
		if err := s.notifications.Create(ctx, &notification); err != nil {
			return summary, fmt.Errorf("persist absence notification: %w", err)
		}

		observability.Notifications().WithLabelValues(string(models.NotificationTypeAbsence)).Inc()
		summary.NotificationsCreated++
	}

	span.SetAttributes(attribute.Int("notifications.created", summary.NotificationsCreated))
	return summary, nil
}

// StartAbsenceSweep runs the consecutive-absence check on a fixed period
// until the context is cancelled. Sweeps are skipped on non-school days.
func (s *notificationService) StartAbsenceSweep(ctx context.Context) {
	if s.policy.AbsenceSweepPeriod <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(s.policy.AbsenceSweepPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				schoolDay, err := s.clock.IsSchoolDay(ctx, s.clock.BusinessDate())
				if err != nil {
					s.logger.Error().Err(err).Msg("absence sweep calendar check failed")
					continue
				}
				if !schoolDay {
					continue
				}

				if _, err := s.CheckConsecutiveAbsences(ctx); err != nil {
					s.logger.Error().Err(err).Msg("absence sweep failed")
				}
			}
		}
	}()
}
