package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

// AssignmentFilter describes pagination & search options.
type AssignmentFilter struct {
	CourseID *uint
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListWithFilter(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	GetWithSubmissions(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListWithFilter(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(assignmentOrder(filter.Sort))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

// GetWithSubmissions loads the assignment together with its submissions in submission order,
// each with its student and ordered attachments.
func (r *assignmentRepository) GetWithSubmissions(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submissions.created_at ASC, submissions.id ASC")
		}).
		Preload("Submissions.Student").
		Preload("Submissions.Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("submission_attachments.position ASC")
		}).
		First(&assignment, id).Error
	if err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("Submissions", "Course").Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("Submissions", "Course").Save(assignment).Error
}

// Delete removes the assignment along with its submissions and their attachments.
func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := tx.Model(&models.Submission{}).Select("id").Where("assignment_id = ?", id)
		if err := tx.Where("submission_id IN (?)", submissions).Delete(&models.SubmissionAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Assignment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

var assignmentSortColumns = map[string]string{
	"due_date":   "due_date",
	"updated_at": "updated_at",
	"created_at": "created_at",
	"title":      "title",
}

// assignmentOrder maps "field", "-field", "field:desc" or "field.desc" onto an ORDER BY clause.
// Unknown fields fall back to the nearest deadline first. Ties break on id.
func assignmentOrder(sort string) string {
	sort = strings.ToLower(strings.TrimSpace(sort))
	direction := "ASC"
	if strings.HasPrefix(sort, "-") {
		sort, direction = sort[1:], "DESC"
	}
	if field, dir, ok := strings.Cut(strings.ReplaceAll(sort, ".", ":"), ":"); ok {
		sort = field
		if dir == "desc" {
			direction = "DESC"
		}
	}

	column, ok := assignmentSortColumns[sort]
	if !ok {
		column, direction = "due_date", "ASC"
	}
	return column + " " + direction + ", id ASC"
}
