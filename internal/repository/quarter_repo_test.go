package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/models"
)

func TestQuarterRepositoryFindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuarterRepository(db)

	quarter := models.Quarter{
		Name:            "Q1",
		StartDate:       schoolDate(2026, time.August, 1),
		EndDate:         schoolDate(2026, time.October, 15),
		SchoolStartTime: mustTimeOfDay(t, "07:30:00"),
	}
	require.NoError(t, db.Create(&quarter).Error)

	found, err := repo.FindActive(context.Background(), schoolDate(2026, time.September, 1))
	require.NoError(t, err)
	require.Equal(t, "Q1", found.Name)
	require.Equal(t, "07:30:00", found.SchoolStartTime.String())

	// Boundaries are inclusive on both ends.
	_, err = repo.FindActive(context.Background(), schoolDate(2026, time.August, 1))
	require.NoError(t, err)
	_, err = repo.FindActive(context.Background(), schoolDate(2026, time.October, 15))
	require.NoError(t, err)

	_, err = repo.FindActive(context.Background(), schoolDate(2026, time.October, 16))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuarterRepositoryUpdateStartTime(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuarterRepository(db)

	quarter := models.Quarter{
		Name:            "Q2",
		StartDate:       schoolDate(2026, time.October, 16),
		EndDate:         schoolDate(2026, time.December, 20),
		SchoolStartTime: mustTimeOfDay(t, "07:30:00"),
	}
	require.NoError(t, db.Create(&quarter).Error)

	require.NoError(t, repo.UpdateStartTime(context.Background(), quarter.ID, mustTimeOfDay(t, "08:00:00")))

	found, err := repo.FindActive(context.Background(), schoolDate(2026, time.November, 2))
	require.NoError(t, err)
	require.Equal(t, "08:00:00", found.SchoolStartTime.String())
}
