package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Status       *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	Save(ctx context.Context, submission *models.Submission) (bool, error)
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("submission_attachments.position ASC")
		})
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("created_at ASC, id ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// Save stores the submission, replacing the student's previous attempt for the same assignment
// in place. The returned flag reports whether an existing submission was replaced.
func (r *submissionRepository) Save(ctx context.Context, submission *models.Submission) (bool, error) {
	replaced := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Submission
		err := tx.Where("assignment_id = ? AND student_id = ?", submission.AssignmentID, submission.StudentID).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Omit("Assignment", "Student").Create(submission).Error
		case err != nil:
			return err
		}

		replaced = true
		if err := tx.Where("submission_id = ?", existing.ID).Delete(&models.SubmissionAttachment{}).Error; err != nil {
			return err
		}

		submission.ID = existing.ID
		submission.CreatedAt = existing.CreatedAt
		for i := range submission.Attachments {
			submission.Attachments[i].ID = 0
			submission.Attachments[i].SubmissionID = existing.ID
		}

		if err := tx.Omit("Assignment", "Student", "Attachments").Save(submission).Error; err != nil {
			return err
		}
		if len(submission.Attachments) == 0 {
			return nil
		}
		return tx.Create(&submission.Attachments).Error
	})

	return replaced, err
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Assignment", "Student", "Attachments").Save(submission).Error
}
