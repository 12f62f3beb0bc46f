package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/models"
)

// Migrate applies the schema for every attendance-core table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Student{},
		&models.Quarter{},
		&models.AttendanceLog{},
		&models.QuarterLateTracking{},
		&models.Notification{},
		&models.SMSLog{},
		&models.CalendarOverride{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}
