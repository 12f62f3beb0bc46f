package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scantrack/attendance-api/internal/models"
)

// LateTrackingResult reports the accumulator state after one update.
// CrossedThreshold is true for exactly one call per (student, quarter): the
// one whose increment first reached the threshold and won the claim.
type LateTrackingResult struct {
	TotalLateMinutes int
	CrossedThreshold bool
}

// LateTrackingRepository owns the per-quarter late-minute ledger.
type LateTrackingRepository interface {
	// AddLateMinutes atomically adds minutes to the (student, quarter) row,
	// creating it if absent, and claims the one-shot notification flag when
	// the new total first reaches the threshold. The increment and the claim
	// run in a single transaction so concurrent duplicate scans cannot lose
	// an update or double-fire the notification.
	AddLateMinutes(ctx context.Context, studentID, quarterID uint, minutes, threshold int) (LateTrackingResult, error)
	Find(ctx context.Context, studentID, quarterID uint) (models.QuarterLateTracking, error)
}

type lateTrackingRepository struct {
	db *gorm.DB
}

// NewLateTrackingRepository constructs a repository backed by GORM.
func NewLateTrackingRepository(db *gorm.DB) LateTrackingRepository {
	return &lateTrackingRepository{db: db}
}

func (r *lateTrackingRepository) AddLateMinutes(ctx context.Context, studentID, quarterID uint, minutes, threshold int) (LateTrackingResult, error) {
	var result LateTrackingResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		row := models.QuarterLateTracking{
			StudentID:        studentID,
			QuarterID:        quarterID,
			TotalLateMinutes: minutes,
			LastUpdated:      now,
		}

		// Upsert-increment in one statement. The row lock it takes serializes
		// concurrent scans for the same (student, quarter) until commit.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "quarter_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_late_minutes": gorm.Expr("total_late_minutes + ?", minutes),
				"last_updated":       now,
				"updated_at":         now,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var current models.QuarterLateTracking
		err = tx.Where("student_id = ? AND quarter_id = ?", studentID, quarterID).
			First(&current).Error
		if err != nil {
			return err
		}
		result.TotalLateMinutes = current.TotalLateMinutes

		if current.TotalLateMinutes < threshold || current.NotificationSent {
			return nil
		}

		// Conditional claim: only one caller can flip the flag.
		claim := tx.Model(&models.QuarterLateTracking{}).
			Where("student_id = ? AND quarter_id = ? AND notification_sent = ? AND total_late_minutes >= ?",
				studentID, quarterID, false, threshold).
			Update("notification_sent", true)
		if claim.Error != nil {
			return claim.Error
		}
		result.CrossedThreshold = claim.RowsAffected == 1

		return nil
	})
	if err != nil {
		return LateTrackingResult{}, err
	}

	return result, nil
}

func (r *lateTrackingRepository) Find(ctx context.Context, studentID, quarterID uint) (models.QuarterLateTracking, error) {
	var tracking models.QuarterLateTracking
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND quarter_id = ?", studentID, quarterID).
		First(&tracking).Error
	if err != nil {
		return models.QuarterLateTracking{}, err
	}
	return tracking, nil
}
