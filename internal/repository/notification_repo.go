package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/models"
)

// NotificationRepository handles persistence for teacher notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, teacherID string) (models.Notification, error)
	ExistsSince(ctx context.Context, studentID uint, kind models.NotificationType, since time.Time) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("sent_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint, teacherID string) (models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&notification).Error
	if err != nil {
		return models.Notification{}, err
	}

	if notification.Status == models.NotificationStatusRead {
		return notification, nil
	}

	notification.Status = models.NotificationStatusRead
	if err := r.db.WithContext(ctx).Save(&notification).Error; err != nil {
		return models.Notification{}, err
	}

	return notification, nil
}

func (r *notificationRepository) ExistsSince(ctx context.Context, studentID uint, kind models.NotificationType, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("student_id = ? AND type = ? AND sent_at >= ?", studentID, kind, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
