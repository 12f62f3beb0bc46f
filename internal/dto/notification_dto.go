package dto

import (
	"time"

	"github.com/scantrack/attendance-api/internal/models"
)

// NotificationResponse represents notification data returned to teachers.
type NotificationResponse struct {
	ID        uint                      `json:"id"`
	StudentID uint                      `json:"student_id"`
	TeacherID string                    `json:"teacher_id"`
	Type      models.NotificationType   `json:"type"`
	Message   string                    `json:"message"`
	Status    models.NotificationStatus `json:"status"`
	SentAt    time.Time                 `json:"sent_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		TeacherID: model.TeacherID,
		Type:      model.Type,
		Message:   model.Message,
		Status:    model.Status,
		SentAt:    model.SentAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// AbsenceSweepResponse summarises one consecutive-absence check run.
type AbsenceSweepResponse struct {
	StudentsChecked      int `json:"students_checked"`
	NotificationsCreated int `json:"notifications_created"`
}

// UpdateStartTimeRequest moves the active quarter's school start time.
type UpdateStartTimeRequest struct {
	SchoolStartTime string `json:"school_start_time" validate:"required"`
}

// QuarterResponse is the serialized grading period.
type QuarterResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	SchoolStartTime string `json:"school_start_time"`
}

// NewQuarterResponse converts a model into a DTO.
func NewQuarterResponse(quarter models.Quarter) QuarterResponse {
	return QuarterResponse{
		ID:              quarter.ID,
		Name:            quarter.Name,
		StartDate:       quarter.StartDate.Format("2006-01-02"),
		EndDate:         quarter.EndDate.Format("2006-01-02"),
		SchoolStartTime: quarter.SchoolStartTime.String(),
	}
}
