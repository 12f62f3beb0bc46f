package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/models"
)

// CalendarRepository reads school-calendar exception rows. It satisfies
// clock.CalendarLookup.
type CalendarRepository struct {
	db *gorm.DB
}

// NewCalendarRepository constructs a repository backed by GORM.
func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// OverrideFor returns the explicit school-day flag for a date, if any.
func (r *CalendarRepository) OverrideFor(ctx context.Context, date time.Time) (bool, bool, error) {
	var override models.CalendarOverride
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	return override.IsSchoolDay, true, nil
}
