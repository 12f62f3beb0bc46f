package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
)

// Quarter is a grading period with its own school start time. At most one
// quarter covers any calendar date; attendance processing fails when none does.
type Quarter struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:64;not null" json:"name"`
	StartDate       time.Time       `gorm:"type:date;not null;index" json:"start_date"`
	EndDate         time.Time       `gorm:"type:date;not null;index" json:"end_date"`
	SchoolStartTime clock.TimeOfDay `gorm:"type:time;not null" json:"school_start_time"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// AttendanceLog is the per-student daily record. One row per
// (student, attendance_date); time_in is set on the first scan of the day and
// time_out on the second, after which the day is complete.
type AttendanceLog struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	StudentID      uint             `gorm:"not null;uniqueIndex:idx_attendance_student_date" json:"student_id"`
	AttendanceDate time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_date" json:"attendance_date"`
	TimeIn         *clock.TimeOfDay `gorm:"type:time" json:"time_in,omitempty"`
	TimeOut        *clock.TimeOfDay `gorm:"type:time" json:"time_out,omitempty"`
	IsLate         bool             `gorm:"not null;default:false" json:"is_late"`
	LateMinutes    int              `gorm:"not null;default:0" json:"late_minutes"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Completed reports whether both scans of the day have happened.
func (a AttendanceLog) Completed() bool {
	return a.TimeIn != nil && a.TimeOut != nil
}

// QuarterLateTracking accumulates late minutes per (student, quarter).
// TotalLateMinutes only ever grows within a quarter, and NotificationSent
// flips to true exactly once, on the scan that first reaches the threshold.
type QuarterLateTracking struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StudentID        uint      `gorm:"not null;uniqueIndex:idx_late_student_quarter" json:"student_id"`
	QuarterID        uint      `gorm:"not null;uniqueIndex:idx_late_student_quarter" json:"quarter_id"`
	TotalLateMinutes int       `gorm:"not null;default:0" json:"total_late_minutes"`
	NotificationSent bool      `gorm:"not null;default:false" json:"notification_sent"`
	LastUpdated      time.Time `json:"last_updated"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CalendarOverride marks a date as a holiday or a special working day,
// overriding the default Mon-Fri school-day rule.
type CalendarOverride struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	IsSchoolDay bool      `gorm:"not null" json:"is_school_day"`
	Reason      string    `gorm:"size:255" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
