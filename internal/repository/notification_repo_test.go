package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scantrack/attendance-api/internal/models"
)

func TestNotificationRepositoryListByTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	now := time.Now()
	older := models.Notification{StudentID: 1, TeacherID: "t-1", Type: models.NotificationTypeAlert,
		Message: "older", Status: models.NotificationStatusSent, SentAt: now.Add(-2 * time.Hour)}
	newer := models.Notification{StudentID: 2, TeacherID: "t-1", Type: models.NotificationTypeAbsence,
		Message: "newer", Status: models.NotificationStatusSent, SentAt: now.Add(-1 * time.Hour)}
	foreign := models.Notification{StudentID: 3, TeacherID: "t-2", Type: models.NotificationTypeAlert,
		Message: "foreign", Status: models.NotificationStatusSent, SentAt: now}
	require.NoError(t, repo.Create(context.Background(), &older))
	require.NoError(t, repo.Create(context.Background(), &newer))
	require.NoError(t, repo.Create(context.Background(), &foreign))

	notifications, err := repo.ListByTeacher(context.Background(), "t-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	require.Equal(t, "newer", notifications[0].Message, "expected newest first")
	require.Equal(t, "older", notifications[1].Message)
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	notification := models.Notification{StudentID: 1, TeacherID: "t-1", Type: models.NotificationTypeAlert,
		Message: "alert", Status: models.NotificationStatusSent, SentAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &notification))

	read, err := repo.MarkRead(context.Background(), notification.ID, "t-1")
	require.NoError(t, err)
	require.Equal(t, models.NotificationStatusRead, read.Status)

	// Idempotent on repeat.
	read, err = repo.MarkRead(context.Background(), notification.ID, "t-1")
	require.NoError(t, err)
	require.Equal(t, models.NotificationStatusRead, read.Status)
}

func TestNotificationRepositoryMarkReadForeignTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	notification := models.Notification{StudentID: 1, TeacherID: "t-1", Type: models.NotificationTypeAlert,
		Message: "alert", Status: models.NotificationStatusSent, SentAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &notification))

	_, err := repo.MarkRead(context.Background(), notification.ID, "t-2")
	require.Error(t, err, "another teacher's notification must stay untouchable")
}

func TestNotificationRepositoryExistsSince(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	sentAt := time.Now().Add(-24 * time.Hour)
	require.NoError(t, repo.Create(context.Background(), &models.Notification{
		StudentID: 1, TeacherID: "t-1", Type: models.NotificationTypeAbsence,
		Message: "absent", Status: models.NotificationStatusSent, SentAt: sentAt,
	}))

	exists, err := repo.ExistsSince(context.Background(), 1, models.NotificationTypeAbsence, sentAt.Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsSince(context.Background(), 1, models.NotificationTypeAbsence, sentAt.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = repo.ExistsSince(context.Background(), 1, models.NotificationTypeAlert, sentAt.Add(-time.Hour))
	require.NoError(t, err)
	require.False(t, exists)
}
