package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType discriminates the alert kinds emitted by the dispatcher.
type NotificationType string

const (
	NotificationTypeAlert   NotificationType = "Alert"
	NotificationTypeAbsence NotificationType = "Absence"
)

// NotificationStatus tracks whether a teacher has read a notification.
type NotificationStatus string

const (
	NotificationStatusSent NotificationStatus = "Sent"
	NotificationStatusRead NotificationStatus = "Read"
)

// Notification is an append-only in-app alert addressed to a homeroom
// teacher about one of their advisees. Only the status moves, Sent -> Read.
type Notification struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	StudentID uint               `gorm:"not null;index" json:"student_id"`
	TeacherID string             `gorm:"size:64;not null;index" json:"teacher_id"`
	Type      NotificationType   `gorm:"size:32;not null" json:"type"`
	Message   string             `gorm:"type:text;not null" json:"message"`
	Status    NotificationStatus `gorm:"size:16;not null;default:Sent" json:"status"`
	SentAt    time.Time          `gorm:"not null" json:"sent_at"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SMSStatus is the terminal outcome of a delivery attempt.
type SMSStatus string

const (
	SMSStatusPending SMSStatus = "pending"
	SMSStatusSent    SMSStatus = "sent"
	SMSStatusFailed  SMSStatus = "failed"
	SMSStatusSkipped SMSStatus = "skipped"
	SMSStatusMock    SMSStatus = "mock"
)

// SMSLog is the append-only audit row written after every SMS attempt,
// whether it succeeded, fell back to mock mode, or exhausted its retries.
type SMSLog struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	AttendanceLogID   *uint             `gorm:"index" json:"attendance_log_id,omitempty"`
	StudentID         uint              `gorm:"not null;index" json:"student_id"`
	MobileNumber      string            `gorm:"size:16;not null" json:"mobile_number"`
	Message           string            `gorm:"type:text;not null" json:"message"`
	MessageType       string            `gorm:"size:32" json:"message_type"`
	Status            SMSStatus         `gorm:"size:16;not null" json:"status"`
	ProviderResponse  datatypes.JSONMap `gorm:"type:json" json:"provider_response,omitempty"`
	ProviderMessageID string            `gorm:"size:128" json:"provider_message_id,omitempty"`
	ErrorMessage      string            `gorm:"type:text" json:"error_message,omitempty"`
	RetryCount        int               `gorm:"not null;default:0" json:"retry_count"`
	SentAt            *time.Time        `json:"sent_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
