package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/repository"
)

func newNotificationService(t *testing.T, db *gorm.DB, now time.Time, policy config.LatePolicy) NotificationService {
	t.Helper()

	schoolClock, err := clock.NewSchoolClock("UTC", repository.NewCalendarRepository(db))
	require.NoError(t, err)
	schoolClock = schoolClock.WithNow(func() time.Time { return now })

	return NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewStudentRepository(db),
		repository.NewAttendanceRepository(db),
		schoolClock,
		policy,
		testLogger(),
	)
}

func TestNotifyLateThresholdCreatesAdviserAlert(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	svc := newNotificationService(t, db, now, config.LatePolicy{ThresholdMinutes: 70})

	student := models.Student{StudentCode: "S-001", QRSecret: "s1", FirstName: "Ana", LastName: "Cruz", AdviserID: "t-1"}
	require.NoError(t, db.Create(&student).Error)

	require.NoError(t, svc.NotifyLateThreshold(context.Background(), student, 75))

	notifications, err := svc.List(context.Background(), "t-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationTypeAlert, notifications[0].Type)
	require.Equal(t, student.ID, notifications[0].StudentID)
	require.Contains(t, notifications[0].Message, "Ana Cruz")
	require.Contains(t, notifications[0].Message, "70-minute")
	require.Contains(t, notifications[0].Message, "75 minutes")
}

func TestNotifyLateThresholdSkipsStudentWithoutAdviser(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	svc := newNotificationService(t, db, now, config.LatePolicy{ThresholdMinutes: 70})

	student := models.Student{StudentCode: "S-001", QRSecret: "s1", FirstName: "Ana", LastName: "Cruz"}
	require.NoError(t, db.Create(&student).Error)

	require.NoError(t, svc.NotifyLateThreshold(context.Background(), student, 75))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	svc := newNotificationService(t, db, now, config.LatePolicy{})

	_, err := svc.MarkRead(context.Background(), 42, "t-1")
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestCheckConsecutiveAbsences(t *testing.T) {
	db := openTestDB(t)
	// Thursday; the previous three school days are Wed, Tue, Mon.
	now := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	policy := config.LatePolicy{AbsenceWindowDays: 3}
	svc := newNotificationService(t, db, now, policy)

	absent := models.Student{StudentCode: "S-001", QRSecret: "s1", FirstName: "Ana", LastName: "Cruz", AdviserID: "t-1"}
	present := models.Student{StudentCode: "S-002", QRSecret: "s2", FirstName: "Ben", LastName: "Reyes", AdviserID: "t-1"}
	require.NoError(t, db.Create(&absent).Error)
	require.NoError(t, db.Create(&present).Error)

	timeIn := parseTOD(t, "07:20:00")
	require.NoError(t, db.Create(&models.AttendanceLog{
		StudentID:      present.ID,
		AttendanceDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		TimeIn:         &timeIn,
	}).Error)

	summary, err := svc.CheckConsecutiveAbsences(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.StudentsChecked)
	require.Equal(t, 1, summary.NotificationsCreated)

	notifications, err := svc.List(context.Background(), "t-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, absent.ID, notifications[0].StudentID)
	require.Equal(t, models.NotificationTypeAbsence, notifications[0].Type)

	// A second sweep inside the same window must not duplicate the alert.
	summary, err = svc.CheckConsecutiveAbsences(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.NotificationsCreated)
}

func TestCheckConsecutiveAbsencesSkipsHolidaysInWindow(t *testing.T) {
	db := openTestDB(t)
	// Tuesday; with Monday marked as a holiday the two-day window reaches
	// back to Friday and Thursday of the previous week.
	now := time.Date(2026, time.September, 8, 9, 0, 0, 0, time.UTC)
	policy := config.LatePolicy{AbsenceWindowDays: 2}
	svc := newNotificationService(t, db, now, policy)

	require.NoError(t, db.Create(&models.CalendarOverride{
		Date: time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC), IsSchoolDay: false, Reason: "Holiday",
	}).Error)

	student := models.Student{StudentCode: "S-001", QRSecret: "s1", FirstName: "Ana", LastName: "Cruz", AdviserID: "t-1"}
	require.NoError(t, db.Create(&student).Error)

	// Present on Friday Sep 4, so not absent across the effective window.
	timeIn := parseTOD(t, "07:20:00")
	require.NoError(t, db.Create(&models.AttendanceLog{
		StudentID:      student.ID,
		AttendanceDate: time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC),
		TimeIn:         &timeIn,
	}).Error)

	summary, err := svc.CheckConsecutiveAbsences(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.NotificationsCreated)
}
