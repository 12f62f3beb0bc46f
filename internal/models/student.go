package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Student is the read-only reference record for an enrolled learner. The
// attendance core never mutates students; they are owned by the admin
// subsystem and soft-deleted rather than removed.
type Student struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	StudentCode      string         `gorm:"size:32;uniqueIndex;not null" json:"student_code"`
	QRSecret         string         `gorm:"size:128;uniqueIndex;not null" json:"-"`
	FirstName        string         `gorm:"size:128;not null" json:"first_name"`
	LastName         string         `gorm:"size:128;not null" json:"last_name"`
	MiddleName       string         `gorm:"size:128" json:"middle_name,omitempty"`
	LevelID          uint           `json:"level_id"`
	SpecializationID uint           `json:"specialization_id"`
	SectionID        uint           `json:"section_id"`
	AdviserID        string         `gorm:"size:64;index" json:"adviser_id"`
	MobileNumber     *string        `gorm:"size:16" json:"mobile_number,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName returns "First Last" for message rendering.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
