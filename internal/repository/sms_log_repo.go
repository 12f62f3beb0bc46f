package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/models"
)

// SMSLogRepository appends delivery audit rows. SMS logs are never updated.
type SMSLogRepository interface {
	Create(ctx context.Context, log *models.SMSLog) error
	ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.SMSLog, error)
}

type smsLogRepository struct {
	db *gorm.DB
}

// NewSMSLogRepository constructs a repository backed by GORM.
func NewSMSLogRepository(db *gorm.DB) SMSLogRepository {
	return &smsLogRepository{db: db}
}

func (r *smsLogRepository) Create(ctx context.Context, log *models.SMSLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *smsLogRepository) ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.SMSLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var logs []models.SMSLog
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
