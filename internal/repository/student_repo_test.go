package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scantrack/attendance-api/internal/models"
)

func TestStudentRepositoryExcludesSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	active := models.Student{StudentCode: "S-001", QRSecret: "secret-1", FirstName: "Ana", LastName: "Cruz", AdviserID: "t-1"}
	dropped := models.Student{StudentCode: "S-002", QRSecret: "secret-2", FirstName: "Ben", LastName: "Reyes", AdviserID: "t-1"}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&dropped).Error)
	require.NoError(t, db.Delete(&dropped).Error)

	students, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "S-001", students[0].StudentCode)

	secrets, err := repo.ListActiveSecrets(context.Background())
	require.NoError(t, err)
	require.Len(t, secrets, 1)
	require.Equal(t, "secret-1", secrets[0].QRSecret)

	_, err = repo.FindByID(context.Background(), dropped.ID)
	require.Error(t, err, "a withdrawn student's QR must stop resolving")
}

func TestStudentRepositoryListByAdviser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	require.NoError(t, db.Create(&models.Student{StudentCode: "S-001", QRSecret: "s1", FirstName: "Ana", LastName: "Cruz", AdviserID: "t-1"}).Error)
	require.NoError(t, db.Create(&models.Student{StudentCode: "S-002", QRSecret: "s2", FirstName: "Ben", LastName: "Reyes", AdviserID: "t-2"}).Error)

	students, err := repo.ListByAdviser(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "S-001", students[0].StudentCode)
}
