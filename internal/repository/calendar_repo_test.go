package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scantrack/attendance-api/internal/models"
)

func TestCalendarRepositoryOverrideFor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCalendarRepository(db)

	holiday := schoolDate(2026, time.August, 31)
	require.NoError(t, db.Create(&models.CalendarOverride{
		Date: holiday, IsSchoolDay: false, Reason: "National Heroes Day",
	}).Error)

	isSchoolDay, found, err := repo.OverrideFor(context.Background(), holiday)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, isSchoolDay)

	_, found, err = repo.OverrideFor(context.Background(), schoolDate(2026, time.September, 1))
	require.NoError(t, err)
	require.False(t, found)
}

func TestCalendarRepositoryWorkingSaturday(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCalendarRepository(db)

	saturday := schoolDate(2026, time.September, 5)
	require.NoError(t, db.Create(&models.CalendarOverride{
		Date: saturday, IsSchoolDay: true, Reason: "Make-up class day",
	}).Error)

	isSchoolDay, found, err := repo.OverrideFor(context.Background(), saturday)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, isSchoolDay)
}
