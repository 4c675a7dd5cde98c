package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

// CourseRepository exposes courses and their enrollment rosters.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetWithStudents(ctx context.Context, id uint) (models.Course, error)
	Enroll(ctx context.Context, courseID uint, studentIDs ...uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetWithStudents(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Students", func(db *gorm.DB) *gorm.DB {
			return db.Order("students.name ASC, students.id ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Enroll(ctx context.Context, courseID uint, studentIDs ...uint) error {
	if len(studentIDs) == 0 {
		return nil
	}

	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		return err
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).Find(&students, studentIDs).Error; err != nil {
		return err
	}
	if len(students) != len(studentIDs) {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).Model(&course).Association("Students").Append(&students)
}
