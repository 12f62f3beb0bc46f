package sms

import (
	"fmt"
	"time"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/models"
)

// MessageType labels the rendered message for the audit log.
type MessageType string

const (
	MessageTimeInSuccess      MessageType = "TIME_IN_SUCCESS"
	MessageTimeInLate         MessageType = "TIME_IN_LATE"
	MessageTimeInLateCritical MessageType = "TIME_IN_LATE_CRITICAL"
)

// MessageResult is the outcome of template rendering. ShouldSend false with a
// Reason is a normal short-circuit, not an error.
type MessageResult struct {
	Message     string
	MessageType MessageType
	ShouldSend  bool
	Reason      string
}

// AttendanceFacts carries the day's record into the template.
type AttendanceFacts struct {
	Date        time.Time
	TimeIn      clock.TimeOfDay
	IsLate      bool
	LateMinutes int
}

// LateTrackingFacts carries the quarter ledger into the template.
type LateTrackingFacts struct {
	TotalLateMinutes int
	QuarterLimit     int
}

// TemplateThresholds configures the warning bands. Remaining minutes at or
// below Critical get the strongest wording; at or below Moderate a softer
// note; above both, the message stays informational.
type TemplateThresholds struct {
	Critical int
	Moderate int
}

// TemplateBuilder renders time-in SMS messages from attendance data.
type TemplateBuilder struct {
	thresholds TemplateThresholds
}

// NewTemplateBuilder constructs a builder with the configured warning bands.
func NewTemplateBuilder(thresholds TemplateThresholds) *TemplateBuilder {
	return &TemplateBuilder{thresholds: thresholds}
}

// BuildTimeInMessage renders the message for a recorded time-in.
func (b *TemplateBuilder) BuildTimeInMessage(student models.Student, attendance AttendanceFacts, tracking LateTrackingFacts) MessageResult {
	if student.MobileNumber == nil || *student.MobileNumber == "" {
		return MessageResult{
			MessageType: MessageTimeInSuccess,
			ShouldSend:  false,
			Reason:      "student has no mobile number",
		}
	}

	formattedTime := formatTime(attendance.TimeIn)
	formattedDate := attendance.Date.Format("Jan 2, 2006")

	if !attendance.IsLate {
		return MessageResult{
			Message: fmt.Sprintf("Hi %s! Time-in recorded at %s on %s. Have a great day!",
				student.FirstName, formattedTime, formattedDate),
			MessageType: MessageTimeInSuccess,
			ShouldSend:  true,
		}
	}

	remaining := tracking.QuarterLimit - tracking.TotalLateMinutes

	message := fmt.Sprintf("Hi %s! Time-in recorded at %s on %s. You are %d min late today. Total late this quarter: %d/%d min.",
		student.FirstName, formattedTime, formattedDate,
		attendance.LateMinutes, tracking.TotalLateMinutes, tracking.QuarterLimit)

	messageType := MessageTimeInLate
	switch {
	case remaining <= b.thresholds.Critical:
		message += fmt.Sprintf(" WARNING: Only %d min remaining!", remaining)
		messageType = MessageTimeInLateCritical
	case remaining <= b.thresholds.Moderate:
		message += fmt.Sprintf(" Note: %d min remaining this quarter.", remaining)
	}

	return MessageResult{
		Message:     message,
		MessageType: messageType,
		ShouldSend:  true,
	}
}

// formatTime renders a 12-hour clock reading, e.g. "7:45 AM".
func formatTime(t clock.TimeOfDay) string {
	hour := t.Hour()
	meridiem := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		hour -= 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), meridiem)
}
