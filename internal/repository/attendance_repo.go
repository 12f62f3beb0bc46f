package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/models"
)

// AttendanceRepository persists the per-student daily ledger.
type AttendanceRepository interface {
	FindForDate(ctx context.Context, studentID uint, date time.Time) (models.AttendanceLog, error)
	Create(ctx context.Context, log *models.AttendanceLog) error
	SetTimeOut(ctx context.Context, logID uint, timeOut clock.TimeOfDay) (models.AttendanceLog, error)
	ExistsForDates(ctx context.Context, studentID uint, dates []time.Time) (bool, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs a repository backed by GORM.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) FindForDate(ctx context.Context, studentID uint, date time.Time) (models.AttendanceLog, error) {
	var log models.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND attendance_date = ?", studentID, date).
		First(&log).Error
	if err != nil {
		return models.AttendanceLog{}, err
	}
	return log, nil
}

func (r *attendanceRepository) Create(ctx context.Context, log *models.AttendanceLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *attendanceRepository) SetTimeOut(ctx context.Context, logID uint, timeOut clock.TimeOfDay) (models.AttendanceLog, error) {
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("id = ?", logID).
		Update("time_out", timeOut).Error
	if err != nil {
		return models.AttendanceLog{}, err
	}

	var log models.AttendanceLog
	if err := r.db.WithContext(ctx).First(&log, logID).Error; err != nil {
		return models.AttendanceLog{}, err
	}
	return log, nil
}

func (r *attendanceRepository) ExistsForDates(ctx context.Context, studentID uint, dates []time.Time) (bool, error) {
	if len(dates) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("student_id = ? AND attendance_date IN ?", studentID, dates).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
