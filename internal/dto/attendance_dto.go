package dto

import (
	"time"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/models"
)

// ScanAction names the state transition a scan performed.
type ScanAction string

const (
	ScanActionTimeIn  ScanAction = "time_in"
	ScanActionTimeOut ScanAction = "time_out"
)

// ScanRequest is the payload from the QR scanner kiosk.
type ScanRequest struct {
	QRPayload string `json:"qr_payload" validate:"required,min=16,max=512"`
}

// StudentSummary is the student projection returned with scan results.
type StudentSummary struct {
	ID          uint   `json:"id"`
	StudentCode string `json:"student_code"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	MiddleName  string `json:"middle_name,omitempty"`
}

// NewStudentSummary converts a model into the scan projection.
func NewStudentSummary(student models.Student) StudentSummary {
	return StudentSummary{
		ID:          student.ID,
		StudentCode: student.StudentCode,
		FirstName:   student.FirstName,
		LastName:    student.LastName,
		MiddleName:  student.MiddleName,
	}
}

// AttendanceLogResponse is the serialized daily record.
type AttendanceLogResponse struct {
	ID             uint             `json:"id"`
	StudentID      uint             `json:"student_id"`
	AttendanceDate string           `json:"attendance_date"`
	TimeIn         *clock.TimeOfDay `json:"time_in,omitempty"`
	TimeOut        *clock.TimeOfDay `json:"time_out,omitempty"`
	IsLate         bool             `json:"is_late"`
	LateMinutes    int              `json:"late_minutes"`
}

// NewAttendanceLogResponse converts a model into a DTO.
func NewAttendanceLogResponse(log models.AttendanceLog) AttendanceLogResponse {
	return AttendanceLogResponse{
		ID:             log.ID,
		StudentID:      log.StudentID,
		AttendanceDate: log.AttendanceDate.Format("2006-01-02"),
		TimeIn:         log.TimeIn,
		TimeOut:        log.TimeOut,
		IsLate:         log.IsLate,
		LateMinutes:    log.LateMinutes,
	}
}

// ScanResult is returned to the scan caller. Late-tracking fields are only
// populated on a late time-in.
type ScanResult struct {
	Student               StudentSummary        `json:"student"`
	AttendanceLog         AttendanceLogResponse `json:"attendance_log"`
	Action                ScanAction            `json:"action"`
	IsLate                bool                  `json:"is_late"`
	LateMinutes           int                   `json:"late_minutes,omitempty"`
	TotalLateMinutes      int                   `json:"total_late_minutes,omitempty"`
	NotificationTriggered bool                  `json:"notification_triggered"`
}

// PrintableCodeResponse carries a generated QR payload for printing.
type PrintableCodeResponse struct {
	StudentID   uint      `json:"student_id"`
	StudentCode string    `json:"student_code"`
	Payload     string    `json:"payload"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SMSLogResponse is one delivery audit entry for a student.
type SMSLogResponse struct {
	ID           uint             `json:"id"`
	MobileNumber string           `json:"mobile_number"`
	Message      string           `json:"message"`
	MessageType  string           `json:"message_type"`
	Status       models.SMSStatus `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
	RetryCount   int              `json:"retry_count"`
	SentAt       *time.Time       `json:"sent_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewSMSLogResponseSlice converts audit rows to DTOs.
func NewSMSLogResponseSlice(items []models.SMSLog) []SMSLogResponse {
	out := make([]SMSLogResponse, 0, len(items))
	for _, item := range items {
		out = append(out, SMSLogResponse{
			ID:           item.ID,
			MobileNumber: item.MobileNumber,
			Message:      item.Message,
			MessageType:  item.MessageType,
			Status:       item.Status,
			ErrorMessage: item.ErrorMessage,
			RetryCount:   item.RetryCount,
			SentAt:       item.SentAt,
			CreatedAt:    item.CreatedAt,
		})
	}
	return out
}
