package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/models"
)

// QuarterRepository resolves grading periods by date and supports the single
// admin mutation the core allows: moving the active quarter's start time.
type QuarterRepository interface {
	FindActive(ctx context.Context, date time.Time) (models.Quarter, error)
	UpdateStartTime(ctx context.Context, quarterID uint, startTime clock.TimeOfDay) error
}

type quarterRepository struct {
	db *gorm.DB
}

// NewQuarterRepository constructs a repository backed by GORM.
func NewQuarterRepository(db *gorm.DB) QuarterRepository {
	return &quarterRepository{db: db}
}

func (r *quarterRepository) FindActive(ctx context.Context, date time.Time) (models.Quarter, error) {
	var quarter models.Quarter
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		First(&quarter).Error
	if err != nil {
		return models.Quarter{}, err
	}
	return quarter, nil
}

func (r *quarterRepository) UpdateStartTime(ctx context.Context, quarterID uint, startTime clock.TimeOfDay) error {
	return r.db.WithContext(ctx).
		Model(&models.Quarter{}).
		Where("id = ?", quarterID).
		Update("school_start_time", startTime).Error
}
