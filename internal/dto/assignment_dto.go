package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	CourseID    uint   `form:"course_id" json:"course_id" validate:"required,gt=0"`
	Title       string `form:"title" json:"title" validate:"required,min=3"`
	Description string `form:"description" json:"description" validate:"required,min=10"`
	DueDate     string `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title       *string `form:"title" json:"title" validate:"omitempty,min=3"`
	Description *string `form:"description" json:"description" validate:"omitempty,min=10"`
	DueDate     *string `form:"due_date" json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentListRequest captures list filters from the query string.
type AssignmentListRequest struct {
	CourseID *uint  `query:"course_id"`
	Search   string `query:"search" validate:"omitempty,max=100"`
	Sort     string `query:"sort"`
	Page     int    `query:"page" validate:"omitempty,gte=0"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=0,lte=100"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	FileURL     string    `json:"file_url"`
	Closed      bool      `json:"closed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssignmentListResponse wraps a page of assignments.
type AssignmentListResponse struct {
	Items      []AssignmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
	Search     string               `json:"search,omitempty"`
}

// NewAssignmentResponse converts a model into a DTO. Closed reports whether the deadline has
// passed and new submissions are refused.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		FileURL:     model.FileURL,
		Closed:      model.IsPastDue(time.Now().UTC()),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentListResponse builds one page of assignments with its pagination metadata.
func NewAssignmentListResponse(assignments []models.Assignment, meta PaginationMeta, search string) AssignmentListResponse {
	items := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, NewAssignmentResponse(assignment))
	}

	return AssignmentListResponse{Items: items, Pagination: meta, Search: search}
}
