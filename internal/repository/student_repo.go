package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/models"
)

// StudentSecret pairs a student id with its stored QR secret for the
// exhaustive one-way token resolution scan.
type StudentSecret struct {
	ID       uint
	QRSecret string
}

// StudentRepository reads student reference data. The attendance core never
// writes students.
type StudentRepository interface {
	FindByID(ctx context.Context, id uint) (models.Student, error)
	ListActive(ctx context.Context) ([]models.Student, error)
	ListActiveSecrets(ctx context.Context) ([]StudentSecret, error)
	ListByAdviser(ctx context.Context, adviserID string) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) ListActiveSecrets(ctx context.Context) ([]StudentSecret, error) {
	var secrets []StudentSecret
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Select("id", "qr_secret").
		Find(&secrets).Error
	if err != nil {
		return nil, err
	}
	return secrets, nil
}

func (r *studentRepository) ListByAdviser(ctx context.Context, adviserID string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("adviser_id = ?", adviserID).
		Order("last_name, first_name").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
