package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/dto"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/observability"
	"github.com/scantrack/attendance-api/internal/qr"
	"github.com/scantrack/attendance-api/internal/repository"
)

// Notifier is the capability the attendance core needs from the notification
// tier. It is injected explicitly; there is no process-wide event bus.
type Notifier interface {
	NotifyLateThreshold(ctx context.Context, student models.Student, totalLateMinutes int) error
}

// TimeInEvent carries everything the SMS leg needs, so it never re-reads the
// ledger after the scan response has gone out.
type TimeInEvent struct {
	AttendanceLogID  uint
	Student          models.Student
	Date             time.Time
	TimeIn           clock.TimeOfDay
	IsLate           bool
	LateMinutes      int
	TotalLateMinutes int
}

// TimeInDispatcher receives time-in events for asynchronous SMS handling.
// Implementations must return immediately; delivery happens off the scan path.
type TimeInDispatcher interface {
	DispatchTimeIn(event TimeInEvent)
}

// AttendanceService owns the scan state machine and the lateness computation.
type AttendanceService interface {
	ProcessScan(ctx context.Context, req dto.ScanRequest) (dto.ScanResult, error)
	GeneratePrintableCode(ctx context.Context, studentID uint) (dto.PrintableCodeResponse, error)
	SMSHistory(ctx context.Context, studentID uint, limit int) ([]dto.SMSLogResponse, error)
}

type attendanceService struct {
	students     repository.StudentRepository
	attendance   repository.AttendanceRepository
	quarters     repository.QuarterRepository
	lateTracking repository.LateTrackingRepository
	smsLogs      repository.SMSLogRepository
	codec        *qr.Codec
	clock        *clock.SchoolClock
	notifier     Notifier
	dispatcher   TimeInDispatcher
	cache        *redis.Client
	dedupeTTL    time.Duration
	policy       config.LatePolicy
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// AttendanceServiceDeps groups the constructor dependencies.
type AttendanceServiceDeps struct {
	Students     repository.StudentRepository
	Attendance   repository.AttendanceRepository
	Quarters     repository.QuarterRepository
	LateTracking repository.LateTrackingRepository
	SMSLogs      repository.SMSLogRepository
	Codec        *qr.Codec
	Clock        *clock.SchoolClock
	Notifier     Notifier
	Dispatcher   TimeInDispatcher
	Cache        *redis.Client
	DedupeTTL    time.Duration
	Policy       config.LatePolicy
	Validator    *validator.Validate
	Logger       zerolog.Logger
}

// NewAttendanceService constructs the scan-processing service.
func NewAttendanceService(deps AttendanceServiceDeps) AttendanceService {
	return &attendanceService{
		students:     deps.Students,
		attendance:   deps.Attendance,
		quarters:     deps.Quarters,
		lateTracking: deps.LateTracking,
		smsLogs:      deps.SMSLogs,
		codec:        deps.Codec,
		clock:        deps.Clock,
		notifier:     deps.Notifier,
		dispatcher:   deps.Dispatcher,
		cache:        deps.Cache,
		dedupeTTL:    deps.DedupeTTL,
		policy:       deps.Policy,
		validator:    deps.Validator,
		logger:       deps.Logger.With().Str("component", "attendance_service").Logger(),
		tracer:       otel.Tracer("github.com/scantrack/attendance-api/internal/service/attendance"),
	}
}

func (s *attendanceService) ProcessScan(ctx context.Context, req dto.ScanRequest) (dto.ScanResult, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "attendance.scan")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		observability.Scans().WithLabelValues("none", "invalid_qr").Inc()
		return dto.ScanResult{}, ErrInvalidQR
	}

	student, err := s.resolveStudent(ctx, req.QRPayload)
	if err != nil {
		span.SetStatus(codes.Error, "qr resolution failed")
		observability.Scans().WithLabelValues("none", "invalid_qr").Inc()
		return dto.ScanResult{}, err
	}
	span.SetAttributes(attribute.Int("student.id", int(student.ID)))

	if err := s.guardDuplicateTap(ctx, student.ID); err != nil {
		observability.Scans().WithLabelValues("none", "duplicate").Inc()
		return dto.ScanResult{}, err
	}

	businessDate := s.clock.BusinessDate()
	existing, err := s.attendance.FindForDate(ctx, student.ID, businessDate)
	switch {
	case err == nil && existing.Completed():
		observability.Scans().WithLabelValues("none", "already_completed").Inc()
		return dto.ScanResult{}, ErrAlreadyCompleted
	case err == nil:
		result, err := s.processTimeOut(ctx, student, existing)
		s.recordScanOutcome("time_out", err, start)
		return result, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		result, err := s.processTimeIn(ctx, student, businessDate)
		s.recordScanOutcome("time_in", err, start)
		return result, err
	default:
		span.RecordError(err)
		observability.Scans().WithLabelValues("none", "error").Inc()
		return dto.ScanResult{}, fmt.Errorf("load attendance log: %w", err)
	}
}

// resolveStudent maps a scanned payload back to an active student. The hash
// is one-way, so resolution compares the encoded token against every active
// student's stored secret. O(n) per scan, inherited from the trust model:
// the printed artifact must not be reversible to the database secret.
func (s *attendanceService) resolveStudent(ctx context.Context, payload string) (models.Student, error) {
	encoded, ok := s.codec.Decode(payload)
	if !ok {
		return models.Student{}, ErrInvalidQR
	}

	secrets, err := s.students.ListActiveSecrets(ctx)
	if err != nil {
		return models.Student{}, fmt.Errorf("list student secrets: %w", err)
	}

	for _, candidate := range secrets {
		if s.codec.MatchesSecret(candidate.QRSecret, encoded) {
			student, err := s.students.FindByID(ctx, candidate.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.Student{}, ErrInvalidQR
				}
				return models.Student{}, fmt.Errorf("load student: %w", err)
			}
			return student, nil
		}
	}

	return models.Student{}, ErrInvalidQR
}

// guardDuplicateTap rejects repeat taps inside the dedupe window. The window
// only smooths out kiosk double-reads; correctness against true races lives
// in the storage layer, so a missing cache simply skips the guard.
func (s *attendanceService) guardDuplicateTap(ctx context.Context, studentID uint) error {
	if s.cache == nil || s.dedupeTTL <= 0 {
		return nil
	}

	key := fmt.Sprintf("scan:dedupe:%d", studentID)
	ok, err := s.cache.SetNX(ctx, key, 1, s.dedupeTTL).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("scan dedupe cache unavailable, continuing without guard")
		return nil
	}
	if !ok {
		return ErrDuplicateScan
	}
	return nil
}

func (s *attendanceService) processTimeIn(ctx context.Context, student models.Student, businessDate time.Time) (dto.ScanResult, error) {
	quarter, err := s.quarters.FindActive(ctx, businessDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScanResult{}, ErrNoActiveQuarter
		}
		return dto.ScanResult{}, fmt.Errorf("find active quarter: %w", err)
	}

	timeIn := s.clock.BusinessTime()
	isLate, lateMinutes := s.lateness(timeIn, quarter.SchoolStartTime)

	log := models.AttendanceLog{
		StudentID:      student.ID,
		AttendanceDate: businessDate,
		TimeIn:         &timeIn,
		IsLate:         isLate,
		LateMinutes:    lateMinutes,
	}
	if err := s.attendance.Create(ctx, &log); err != nil {
		return dto.ScanResult{}, fmt.Errorf("create attendance log: %w", err)
	}

	result := dto.ScanResult{
		Student:       dto.NewStudentSummary(student),
		AttendanceLog: dto.NewAttendanceLogResponse(log),
		Action:        dto.ScanActionTimeIn,
		IsLate:        isLate,
		LateMinutes:   lateMinutes,
	}

	if isLate {
		// The accumulator update is on the critical path: if it fails the
		// whole scan fails, so late minutes are never silently dropped.
		tracking, err := s.lateTracking.AddLateMinutes(ctx, student.ID, quarter.ID, lateMinutes, s.policy.ThresholdMinutes)
		if err != nil {
			return dto.ScanResult{}, fmt.Errorf("update late tracking: %w", err)
		}
		result.TotalLateMinutes = tracking.TotalLateMinutes

		if tracking.CrossedThreshold {
			if err := s.notifier.NotifyLateThreshold(ctx, student, tracking.TotalLateMinutes); err != nil {
				// The claim is already persisted; the notification tier
				// failing must not fail the attendance of record.
				s.logger.Error().Err(err).Uint("student_id", student.ID).
					Msg("late threshold notification failed")
			} else {
				result.NotificationTriggered = true
			}
		}
	}

	s.dispatcher.DispatchTimeIn(TimeInEvent{
		AttendanceLogID:  log.ID,
		Student:          student,
		Date:             businessDate,
		TimeIn:           timeIn,
		IsLate:           isLate,
		LateMinutes:      lateMinutes,
		TotalLateMinutes: result.TotalLateMinutes,
	})

	return result, nil
}

func (s *attendanceService) processTimeOut(ctx context.Context, student models.Student, existing models.AttendanceLog) (dto.ScanResult, error) {
	timeOut := s.clock.BusinessTime()

	updated, err := s.attendance.SetTimeOut(ctx, existing.ID, timeOut)
	if err != nil {
		return dto.ScanResult{}, fmt.Errorf("set time out: %w", err)
	}

	return dto.ScanResult{
		Student:       dto.NewStudentSummary(student),
		AttendanceLog: dto.NewAttendanceLogResponse(updated),
		Action:        dto.ScanActionTimeOut,
		IsLate:        updated.IsLate,
	}, nil
}

// lateness classifies a time-in against the quarter's start time. The grace
// period gates only the boolean; once late, minutes count from the bell.
func (s *attendanceService) lateness(timeIn, schoolStart clock.TimeOfDay) (bool, int) {
	cutoff := schoolStart.Add(s.policy.GracePeriod)
	if !timeIn.After(cutoff) {
		return false, 0
	}

	lateMinutes := (timeIn.Seconds() - schoolStart.Seconds()) / 60
	if lateMinutes < 0 {
		lateMinutes = 0
	}
	return true, lateMinutes
}

func (s *attendanceService) recordScanOutcome(action string, err error, start time.Time) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.Scans().WithLabelValues(action, result).Inc()
	observability.ScanLatency().WithLabelValues(action).Observe(time.Since(start).Seconds())
}

func (s *attendanceService) GeneratePrintableCode(ctx context.Context, studentID uint) (dto.PrintableCodeResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PrintableCodeResponse{}, ErrStudentNotFound
		}
		return dto.PrintableCodeResponse{}, fmt.Errorf("load student: %w", err)
	}

	return dto.PrintableCodeResponse{
		StudentID:   student.ID,
		StudentCode: student.StudentCode,
		Payload:     s.codec.EncodeForPrint(student.QRSecret),
		GeneratedAt: s.clock.Now(),
	}, nil
}

// SMSHistory returns the delivery audit trail for one student, newest first.
func (s *attendanceService) SMSHistory(ctx context.Context, studentID uint, limit int) ([]dto.SMSLogResponse, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("load student: %w", err)
	}

	logs, err := s.smsLogs.ListByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sms logs: %w", err)
	}
	return dto.NewSMSLogResponseSlice(logs), nil
}
