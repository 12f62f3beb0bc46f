package sms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/models"
)

func testBuilder() *TemplateBuilder {
	return NewTemplateBuilder(TemplateThresholds{Critical: 15, Moderate: 30})
}

func testStudent(mobile string) models.Student {
	student := models.Student{FirstName: "Juan", LastName: "Dela Cruz"}
	if mobile != "" {
		student.MobileNumber = &mobile
	}
	return student
}

func timeInAt(t *testing.T, s string) clock.TimeOfDay {
	t.Helper()
	tod, err := clock.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func TestBuildTimeInMessageNoMobileNumber(t *testing.T) {
	result := testBuilder().BuildTimeInMessage(testStudent(""), AttendanceFacts{}, LateTrackingFacts{})

	require.False(t, result.ShouldSend)
	require.NotEmpty(t, result.Reason)
	require.Empty(t, result.Message)
}

func TestBuildTimeInMessageOnTime(t *testing.T) {
	facts := AttendanceFacts{
		Date:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		TimeIn: timeInAt(t, "07:25:00"),
	}

	result := testBuilder().BuildTimeInMessage(testStudent("639171234567"), facts, LateTrackingFacts{})

	require.True(t, result.ShouldSend)
	require.Equal(t, MessageTimeInSuccess, result.MessageType)
	require.Contains(t, result.Message, "Juan")
	require.Contains(t, result.Message, "7:25 AM")
	require.Contains(t, result.Message, "Jan 6, 2025")
	require.NotContains(t, result.Message, "late")
}

func TestBuildTimeInMessageLateInformational(t *testing.T) {
	facts := AttendanceFacts{
		Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		TimeIn:      timeInAt(t, "07:40:00"),
		IsLate:      true,
		LateMinutes: 10,
	}
	tracking := LateTrackingFacts{TotalLateMinutes: 10, QuarterLimit: 70}

	result := testBuilder().BuildTimeInMessage(testStudent("639171234567"), facts, tracking)

	require.True(t, result.ShouldSend)
	require.Equal(t, MessageTimeInLate, result.MessageType)
	require.Contains(t, result.Message, "10 min late today")
	require.Contains(t, result.Message, "10/70 min")
	require.NotContains(t, result.Message, "remaining")
}

func TestBuildTimeInMessageLateModerateBand(t *testing.T) {
	tracking := LateTrackingFacts{TotalLateMinutes: 45, QuarterLimit: 70}
	facts := AttendanceFacts{
		Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		TimeIn:      timeInAt(t, "08:00:00"),
		IsLate:      true,
		LateMinutes: 30,
	}

	result := testBuilder().BuildTimeInMessage(testStudent("639171234567"), facts, tracking)

	require.Equal(t, MessageTimeInLate, result.MessageType)
	require.Contains(t, result.Message, "Note: 25 min remaining this quarter.")
}

func TestBuildTimeInMessageLateCriticalBand(t *testing.T) {
	tracking := LateTrackingFacts{TotalLateMinutes: 60, QuarterLimit: 70}
	facts := AttendanceFacts{
		Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		TimeIn:      timeInAt(t, "13:05:00"),
		IsLate:      true,
		LateMinutes: 20,
	}

	result := testBuilder().BuildTimeInMessage(testStudent("639171234567"), facts, tracking)

	require.Equal(t, MessageTimeInLateCritical, result.MessageType)
	require.Contains(t, result.Message, "WARNING: Only 10 min remaining!")
	require.Contains(t, result.Message, "1:05 PM")
}
