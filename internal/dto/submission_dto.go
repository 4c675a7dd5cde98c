package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for a submission upload.
type SubmissionCreateRequest struct {
	AssignmentID uint   `form:"assignment_id" validate:"required,gt=0"`
	StudentID    uint   `form:"student_id" validate:"required,gt=0"`
	Notes        string `form:"notes" validate:"omitempty,max=2000"`
}

// SubmissionUpdateRequest is used to grade or update a submission.
type SubmissionUpdateRequest struct {
	Status   *string  `json:"status" validate:"omitempty,oneof=submitted graded"`
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Feedback *string  `json:"feedback" validate:"omitempty,min=3"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted graded"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                 `json:"id"`
	AssignmentID uint                 `json:"assignment_id"`
	StudentID    uint                 `json:"student_id"`
	Notes        string               `json:"notes"`
	Status       string               `json:"status"`
	Grade        *float64             `json:"grade"`
	Feedback     string               `json:"feedback"`
	SubmittedAt  time.Time            `json:"submitted_at"`
	Attachments  []AttachmentResponse `json:"attachments"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Assignment   AssignmentLite       `json:"assignment"`
	Student      StudentLite          `json:"student"`
}

// AttachmentResponse describes one uploaded file.
type AttachmentResponse struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID            uint   `json:"id"`
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// NewStudentLite converts a student model.
func NewStudentLite(model models.Student) StudentLite {
	return StudentLite{
		ID:            model.ID,
		StudentNumber: model.StudentNumber,
		Name:          model.Name,
		Email:         model.Email,
	}
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Notes:        model.Notes,
		Status:       model.Status,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		SubmittedAt:  model.SubmittedAt,
		Attachments:  make([]AttachmentResponse, 0, len(model.Attachments)),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	for _, attachment := range model.Attachments {
		response.Attachments = append(response.Attachments, AttachmentResponse{
			Name:     attachment.Name,
			URL:      attachment.URL,
			MimeType: attachment.MimeType,
			Size:     attachment.Size,
		})
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
		}
	}

	if model.Student.ID != 0 {
		response.Student = NewStudentLite(model.Student)
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
